// Package assemble builds the final published HTML from the generated and
// sanitized parts: header image, body, CTA footer, hidden hashtag block.
package assemble

import (
	"fmt"
	"html"
	"strings"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// naverPlaceURLs maps a service to its map listing. Services without their
// own listing share the default one.
var naverPlaceURLs = map[string]string{
	"변기막힘":   "https://naver.me/FjCEaKcf",
	"하수구막힘": "https://naver.me/xenVtpVr",
}

const defaultNaverPlaceURL = "https://naver.me/xenVtpVr"

// Assembler renders the publish-ready post content.
type Assembler struct {
	businessName  string
	businessPhone string
}

// New creates an Assembler with the branding used in the CTA footer.
func New(businessName, businessPhone string) *Assembler {
	return &Assembler{businessName: businessName, businessPhone: businessPhone}
}

// Input carries the sanitized parts of one post.
type Input struct {
	Target   domain.Target
	Title    string
	AltText  string
	Body     string
	Hashtags string
	ImageURL string
}

// Assemble returns the final HTML: image, body, footer, hidden hashtags,
// in that order.
func (a *Assembler) Assemble(in Input) string {
	var b strings.Builder

	b.WriteString(a.headerImage(in))
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(in.Body))
	b.WriteString("\n")
	b.WriteString(a.footer(in.Target))

	if tags := strings.TrimSpace(in.Hashtags); tags != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(`<div style="display:none;">%s</div>`, html.EscapeString(tags)))
	}

	return b.String()
}

func (a *Assembler) headerImage(in Input) string {
	return fmt.Sprintf(`<img src="%s" alt="%s" style="width:100%%; border-radius:8px;" />`,
		html.EscapeString(in.ImageURL), html.EscapeString(in.AltText))
}

func (a *Assembler) footer(target domain.Target) string {
	placeURL := naverPlaceURLs[target.Service]
	if placeURL == "" {
		placeURL = defaultNaverPlaceURL
	}

	return fmt.Sprintf(`<hr style="margin: 40px 0;" />
<h3>📍 %s %s %s 해결 전문!</h3>
<p><strong>%s | %s</strong></p>
<p><strong>전북 전 지역 30분 내 긴급 출동!</strong></p>
<p>더 많은 시공 사례와 정확한 위치는 아래 지도에서 확인해주세요.</p>
<p style="text-align: center; margin-top: 20px;">
<a href="%s" target="_blank" style="background-color: #03C75A; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-weight: bold; font-size: 1.1em;">%s 네이버 지도 보기 🚀</a>
</p>`,
		target.City, target.District, target.Service,
		a.businessName, a.businessPhone,
		placeURL, a.businessName)
}
