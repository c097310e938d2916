// Package pipeline runs the full post generation job: target selection,
// sequential content generation, sanitization, safety gating, image
// preparation, assembly and publishing. One job log row is written per
// run, success or failure.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jbplumbing/autopost/internal/assemble"
	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
	"github.com/jbplumbing/autopost/internal/gen"
	"github.com/jbplumbing/autopost/internal/platform/observability"
	"github.com/jbplumbing/autopost/internal/sanitize"
)

const (
	titleMinRunes = 5
	titleMaxRunes = 70

	defaultCategory = "시공사례"
)

// TargetSelector resolves the next post target.
type TargetSelector interface {
	SelectTarget(ctx context.Context) (domain.Target, error)
}

// Generator produces text for one content class.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// ImagePreparer returns a public image URL for a title. It never fails;
// trouble resolves to a fallback URL.
type ImagePreparer interface {
	PrepareImage(ctx context.Context, title string) string
}

// Store persists posts and job logs.
type Store interface {
	InsertPost(ctx context.Context, post domain.Post) (string, error)
	InsertJobLog(ctx context.Context, log domain.JobLog) error
}

// Pipeline wires the generation stages together.
type Pipeline struct {
	selector    TargetSelector
	generator   Generator
	prompts     *gen.PromptBuilder
	images      ImagePreparer
	assembler   *assemble.Assembler
	store       Store
	temperature float32
	logger      *zerolog.Logger
}

// New creates a Pipeline.
func New(
	selector TargetSelector,
	generator Generator,
	prompts *gen.PromptBuilder,
	images ImagePreparer,
	assembler *assemble.Assembler,
	store Store,
	temperature float32,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		selector:    selector,
		generator:   generator,
		prompts:     prompts,
		images:      images,
		assembler:   assembler,
		store:       store,
		temperature: temperature,
		logger:      logger,
	}
}

// GeneratePost runs one job end to end. It never returns an error; failure
// is reported through the Result and a failure job log.
func (p *Pipeline) GeneratePost(ctx context.Context, jobType domain.JobType) domain.Result {
	start := time.Now()

	defer func() {
		observability.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	run := &jobRun{jobType: jobType}

	result, err := p.run(ctx, run)
	if err != nil {
		p.recordFailure(ctx, run, err)

		observability.PostsPublished.WithLabelValues(domain.JobStatusFailure, string(jobType)).Inc()

		p.logger.Error().Err(err).
			Str("job_type", string(jobType)).
			Str("keyword", run.keyword).
			Msg("post generation failed")

		return domain.Result{Success: false, Keyword: run.keyword, Error: err.Error()}
	}

	observability.PostsPublished.WithLabelValues(domain.JobStatusSuccess, string(jobType)).Inc()

	p.logger.Info().
		Str("job_type", string(jobType)).
		Str("keyword", result.Keyword).
		Str("title", result.Title).
		Msg("post published")

	return result
}

// jobRun accumulates state the failure handler needs.
type jobRun struct {
	jobType domain.JobType
	keyword string
	title   string
	models  []string
}

// addModel records a backend model in first-use order, once.
func (r *jobRun) addModel(model string) {
	for _, m := range r.models {
		if m == model {
			return
		}
	}

	r.models = append(r.models, model)
}

func (r *jobRun) modelUsed() string {
	if len(r.models) == 0 {
		return "none"
	}

	return strings.Join(r.models, ",")
}

func (p *Pipeline) run(ctx context.Context, run *jobRun) (domain.Result, error) {
	target, err := p.selector.SelectTarget(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("select target: %w", err)
	}

	run.keyword = target.Keyword

	title, err := p.generateTitle(ctx, run, target)
	if err != nil {
		return domain.Result{}, fmt.Errorf("generate title: %w", err)
	}

	run.title = title

	altText := p.generateAlt(ctx, run, target, title)

	body, err := p.generateBody(ctx, run, target, title)
	if err != nil {
		return domain.Result{}, fmt.Errorf("generate body: %w", err)
	}

	hashtags := p.generateTags(ctx, run, target)

	imageURL := p.images.PrepareImage(ctx, title)

	content := p.assembler.Assemble(assemble.Input{
		Target:   target,
		Title:    title,
		AltText:  altText,
		Body:     body,
		Hashtags: hashtags,
		ImageURL: imageURL,
	})

	// The gate runs on the final assembled markup so denylisted terms in
	// any generated field (alt text, hashtags) are caught, not just the
	// title and body.
	if !sanitize.IsSafeContent(title + "\n" + content) {
		observability.ContentRejected.WithLabelValues("denylist").Inc()

		return domain.Result{}, apperrors.ErrUnsafeContent
	}

	postID, err := p.store.InsertPost(ctx, domain.Post{
		Keyword:  target.Keyword,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
		Status:   domain.PostStatusPublished,
		Category: defaultCategory,
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("publish post: %w", err)
	}

	if err := p.store.InsertJobLog(ctx, domain.JobLog{
		JobType:   run.jobType,
		Status:    domain.JobStatusSuccess,
		Keyword:   target.Keyword,
		Title:     title,
		ModelUsed: run.modelUsed(),
	}); err != nil {
		// The post is already out; a lost success log is not worth failing
		// the job over.
		p.logger.Error().Err(err).Str("post_id", postID).Msg("failed to record success job log")
	}

	return domain.Result{
		Success:  true,
		Keyword:  target.Keyword,
		Title:    title,
		ImageURL: imageURL,
	}, nil
}

func (p *Pipeline) generateTitle(ctx context.Context, run *jobRun, target domain.Target) (string, error) {
	result, err := p.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      p.prompts.TitlePrompt(target),
		Class:       domain.ClassTitle,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", err
	}

	run.addModel(result.Model)

	title := sanitize.StripPhoneNumbers(sanitize.Clean(result.Text))
	title = strings.Trim(title, `"'`)

	// Out-of-bounds titles fall back to the keyword itself.
	if n := utf8.RuneCountInString(title); n < titleMinRunes || n > titleMaxRunes {
		title = target.Keyword
	}

	return title, nil
}

// generateAlt never fails the job: when every tier is down the alt text is
// synthesized from the target.
func (p *Pipeline) generateAlt(ctx context.Context, run *jobRun, target domain.Target, title string) string {
	result, err := p.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      p.prompts.AltPrompt(target, title),
		Class:       domain.ClassAlt,
		Temperature: p.temperature,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("alt text generation failed, using default")

		return gen.DefaultAlt(target)
	}

	run.addModel(result.Model)

	return sanitize.Clean(result.Text)
}

func (p *Pipeline) generateBody(ctx context.Context, run *jobRun, target domain.Target, title string) (string, error) {
	result, err := p.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      p.prompts.BodyPrompt(target, title),
		Class:       domain.ClassBody,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", err
	}

	run.addModel(result.Model)

	return sanitize.StripPhoneNumbers(sanitize.CleanMarkup(result.Text)), nil
}

// generateTags never fails the job: when every tier is down the hashtags
// are synthesized from the keyword.
func (p *Pipeline) generateTags(ctx context.Context, run *jobRun, target domain.Target) string {
	result, err := p.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      p.prompts.TagsPrompt(target),
		Class:       domain.ClassTags,
		Temperature: p.temperature,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("hashtag generation failed, using default")

		return gen.DefaultHashtags(target)
	}

	run.addModel(result.Model)

	return sanitize.Clean(result.Text)
}

// recordFailure writes the failure job log. It must never panic and never
// mask the original error; its own failure is only logged.
func (p *Pipeline) recordFailure(ctx context.Context, run *jobRun, cause error) {
	logEntry := domain.JobLog{
		JobType:      run.jobType,
		Status:       domain.JobStatusFailure,
		Keyword:      run.keyword,
		Title:        run.title,
		ModelUsed:    run.modelUsed(),
		ErrorMessage: cause.Error(),
	}

	if err := p.store.InsertJobLog(ctx, logEntry); err != nil {
		p.logger.Error().Err(err).Msg("critical: failed to record failure job log")
	}
}
