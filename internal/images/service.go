package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jbplumbing/autopost/internal/platform/observability"
)

const jpegContentType = "image/jpeg"

// Store publishes a composited image and returns its public URL.
type Store interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// LocalStore writes images to a directory served under a public prefix.
type LocalStore struct {
	dir          string
	publicPrefix string
}

// NewLocalStore creates a filesystem-backed store.
func NewLocalStore(dir, publicPrefix string) *LocalStore {
	return &LocalStore{dir: dir, publicPrefix: strings.TrimSuffix(publicPrefix, "/")}
}

func (s *LocalStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image output dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return s.publicPrefix + "/" + filename, nil
}

// SupabaseStore uploads images to a public Supabase Storage bucket.
type SupabaseStore struct {
	client *SupabaseClient
	prefix string
}

// NewSupabaseStore creates a bucket-backed store. prefix is the object key
// prefix for generated images.
func NewSupabaseStore(client *SupabaseClient, prefix string) *SupabaseStore {
	return &SupabaseStore{client: client, prefix: strings.Trim(prefix, "/")}
}

func (s *SupabaseStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	path := filename
	if s.prefix != "" {
		path = s.prefix + "/" + filename
	}

	if err := s.client.Upload(ctx, path, data, jpegContentType); err != nil {
		return "", err
	}

	return s.client.PublicURL(path), nil
}

// Service runs the acquire-composite-publish chain for one post image.
type Service struct {
	source      Source
	store       Store
	compositor  *Compositor
	fallbackURL string
	logger      *zerolog.Logger
}

// NewService creates the image service. compositor may be nil when no font
// is configured; every call then resolves to the fallback URL.
func NewService(source Source, store Store, compositor *Compositor, fallbackURL string, logger *zerolog.Logger) *Service {
	return &Service{
		source:      source,
		store:       store,
		compositor:  compositor,
		fallbackURL: fallbackURL,
		logger:      logger,
	}
}

// PrepareImage returns the public URL of a composited title image. Any
// failure in the chain logs and returns the fallback URL; the caller never
// sees an error.
func (s *Service) PrepareImage(ctx context.Context, title string) string {
	url, err := s.prepare(ctx, title)
	if err != nil {
		observability.ImageComposited.WithLabelValues("fallback").Inc()

		s.logger.Warn().Err(err).Str("title", title).Msg("image pipeline failed, using fallback")

		return s.fallbackURL
	}

	observability.ImageComposited.WithLabelValues("success").Inc()

	return url
}

func (s *Service) prepare(ctx context.Context, title string) (string, error) {
	if s.compositor == nil {
		return "", fmt.Errorf("no compositor configured")
	}

	base, err := s.source.NextBase(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire base image: %w", err)
	}

	data, err := s.compositor.Composite(base, title)
	if err != nil {
		return "", fmt.Errorf("composite image: %w", err)
	}

	filename := uuid.NewString() + ".jpg"

	url, err := s.store.Save(ctx, filename, data)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	return url, nil
}
