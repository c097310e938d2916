package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	canvasWidth  = 800
	canvasHeight = 600
	jpegQuality  = 85

	titleFontSize    = 42
	brandingFontSize = 24
	titleMaxWidth    = canvasWidth - 80
	titleMaxLines    = 2
	titleLineSpacing = 14
	shadowOffset     = 2
	brandingBarH     = 60

	fontDPI = 72
)

var (
	scrimColor    = color.NRGBA{R: 0, G: 0, B: 0, A: 90}
	shadowColor   = color.NRGBA{R: 0, G: 0, B: 0, A: 200}
	textColor     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	brandingBarBG = color.NRGBA{R: 13, G: 71, B: 161, A: 255}
)

// Compositor renders the post title and branding bar onto a base photo.
type Compositor struct {
	titleFace    font.Face
	brandingFace font.Face
	branding     string
}

// NewCompositor loads the TTF at fontPath and prepares the render faces.
// The branding line is "<business name> <phone>".
func NewCompositor(fontPath, businessName, businessPhone string) (*Compositor, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	titleFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    titleFontSize,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create title face: %w", err)
	}

	brandingFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    brandingFontSize,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create branding face: %w", err)
	}

	return &Compositor{
		titleFace:    titleFace,
		brandingFace: brandingFace,
		branding:     strings.TrimSpace(businessName + " " + businessPhone),
	}, nil
}

// Composite renders the final JPEG: cover-resized base, dark scrim,
// shadowed centered title, branding bar.
func (c *Compositor) Composite(base image.Image, title string) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))

	coverScale(canvas, base)

	// Scrim keeps white text readable on bright photos.
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(scrimColor), image.Point{}, draw.Over)

	lines := c.wrapTitle(title)
	c.drawTitle(canvas, lines)
	c.drawBrandingBar(canvas)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// coverScale scales src to fill dst completely, cropping the overflow.
func coverScale(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()

	scale := float64(dw) / float64(sb.Dx())
	if s := float64(dh) / float64(sb.Dy()); s > scale {
		scale = s
	}

	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)

	offX := (dw - w) / 2
	offY := (dh - h) / 2

	target := image.Rect(offX, offY, offX+w, offY+h)
	draw.CatmullRom.Scale(dst, target, src, sb, draw.Over, nil)
}

// wrapTitle greedily packs words into lines bounded by titleMaxWidth,
// keeping at most titleMaxLines lines.
func (c *Compositor) wrapTitle(title string) []string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return nil
	}

	measurer := &font.Drawer{Face: c.titleFace}

	var (
		lines   []string
		current string
	)

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if measurer.MeasureString(candidate).Ceil() <= titleMaxWidth || current == "" {
			current = candidate

			continue
		}

		lines = append(lines, current)
		current = word

		if len(lines) == titleMaxLines {
			return lines
		}
	}

	if current != "" && len(lines) < titleMaxLines {
		lines = append(lines, current)
	}

	return lines
}

func (c *Compositor) drawTitle(canvas *image.RGBA, lines []string) {
	if len(lines) == 0 {
		return
	}

	metrics := c.titleFace.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil() + titleLineSpacing
	blockHeight := lineHeight * len(lines)

	top := (canvasHeight-brandingBarH)/2 - blockHeight/2 + metrics.Ascent.Ceil()

	for i, line := range lines {
		c.drawCenteredLine(canvas, c.titleFace, line, top+i*lineHeight)
	}
}

func (c *Compositor) drawBrandingBar(canvas *image.RGBA) {
	bar := image.Rect(0, canvasHeight-brandingBarH, canvasWidth, canvasHeight)
	draw.Draw(canvas, bar, image.NewUniform(brandingBarBG), image.Point{}, draw.Src)

	metrics := c.brandingFace.Metrics()
	baseline := canvasHeight - brandingBarH/2 + metrics.Ascent.Ceil()/2 - metrics.Descent.Ceil()/2

	c.drawCenteredLine(canvas, c.brandingFace, c.branding, baseline)
}

// drawCenteredLine draws one shadowed line centered horizontally with its
// baseline at y.
func (c *Compositor) drawCenteredLine(canvas *image.RGBA, face font.Face, text string, y int) {
	measurer := &font.Drawer{Face: face}
	width := measurer.MeasureString(text).Ceil()
	x := (canvasWidth - width) / 2

	shadow := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(shadowColor),
		Face: face,
		Dot:  fixed.P(x+shadowOffset, y+shadowOffset),
	}
	shadow.DrawString(text)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
