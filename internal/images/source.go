// Package images acquires base photos, composites the post title and
// branding onto them, and publishes the result. Every failure path resolves
// to a static fallback URL so image trouble never fails a post.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
)

// Source yields a base photo for compositing.
type Source interface {
	NextBase(ctx context.Context) (image.Image, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// LocalSource picks a random image file from a directory.
type LocalSource struct {
	dir string
	rng *rand.Rand
}

// NewLocalSource creates a directory-backed source.
func NewLocalSource(dir string, rng *rand.Rand) *LocalSource {
	return &LocalSource{dir: dir, rng: rng}
}

func (s *LocalSource) NextBase(_ context.Context) (image.Image, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	var candidates []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			candidates = append(candidates, e.Name())
		}
	}

	if len(candidates) == 0 {
		return nil, apperrors.ErrNoBaseImage
	}

	name := candidates[s.rng.Intn(len(candidates))]

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read base image %s: %w", name, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode base image %s: %w", name, err)
	}

	return img, nil
}

// RemoteSource picks a random object from a Supabase Storage prefix. A
// failed download is retried once against a fresh pick before giving up.
type RemoteSource struct {
	client *SupabaseClient
	prefix string
	rng    *rand.Rand
	logger *zerolog.Logger
}

// NewRemoteSource creates a bucket-backed source.
func NewRemoteSource(client *SupabaseClient, prefix string, rng *rand.Rand, logger *zerolog.Logger) *RemoteSource {
	return &RemoteSource{client: client, prefix: prefix, rng: rng, logger: logger}
}

func (s *RemoteSource) NextBase(ctx context.Context) (image.Image, error) {
	names, err := s.client.List(ctx, s.prefix)
	if err != nil {
		s.logger.Warn().Err(err).Msg("base image listing failed, retrying once")

		names, err = s.client.List(ctx, s.prefix)
		if err != nil {
			return nil, fmt.Errorf("list base images: %w", err)
		}
	}

	var candidates []string

	for _, name := range names {
		if imageExtensions[strings.ToLower(filepath.Ext(name))] {
			candidates = append(candidates, name)
		}
	}

	if len(candidates) == 0 {
		return nil, apperrors.ErrNoBaseImage
	}

	img, err := s.downloadRandom(ctx, candidates)
	if err == nil {
		return img, nil
	}

	s.logger.Warn().Err(err).Msg("base image download failed, retrying once")

	return s.downloadRandom(ctx, candidates)
}

func (s *RemoteSource) downloadRandom(ctx context.Context, candidates []string) (image.Image, error) {
	name := candidates[s.rng.Intn(len(candidates))]

	path := name
	if s.prefix != "" {
		path = strings.TrimSuffix(s.prefix, "/") + "/" + name
	}

	data, err := s.client.Download(ctx, path)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode base image %s: %w", name, err)
	}

	return img, nil
}
