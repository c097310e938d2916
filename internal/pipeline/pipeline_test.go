package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbplumbing/autopost/internal/assemble"
	"github.com/jbplumbing/autopost/internal/core/domain"
	"github.com/jbplumbing/autopost/internal/gen"
)

type fakeSelector struct {
	target domain.Target
	err    error
}

func (f *fakeSelector) SelectTarget(_ context.Context) (domain.Target, error) {
	return f.target, f.err
}

type fakeGenerator struct {
	// responses maps content class to scripted output or error.
	responses map[domain.ContentClass]domain.GenerationResult
	errs      map[domain.ContentClass]error
}

func (f *fakeGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if err := f.errs[req.Class]; err != nil {
		return domain.GenerationResult{}, err
	}

	return f.responses[req.Class], nil
}

type fakeImages struct{ url string }

func (f *fakeImages) PrepareImage(_ context.Context, _ string) string {
	return f.url
}

type recordingStore struct {
	posts      []domain.Post
	logs       []domain.JobLog
	postErr    error
	jobLogErr  error
	insertedID string
}

func (r *recordingStore) InsertPost(_ context.Context, post domain.Post) (string, error) {
	if r.postErr != nil {
		return "", r.postErr
	}

	r.posts = append(r.posts, post)

	return r.insertedID, nil
}

func (r *recordingStore) InsertJobLog(_ context.Context, log domain.JobLog) error {
	if r.jobLogErr != nil {
		return r.jobLogErr
	}

	r.logs = append(r.logs, log)

	return nil
}

func testTarget() domain.Target {
	return domain.Target{
		City:     "전주 완산구",
		District: "효자동",
		Service:  "하수구막힘",
		Style:    domain.StyleReport,
		Keyword:  "전주 완산구 효자동 하수구막힘",
	}
}

func healthyGenerator() *fakeGenerator {
	return &fakeGenerator{
		responses: map[domain.ContentClass]domain.GenerationResult{
			domain.ClassTitle: {Text: "전주 효자동 하수구막힘, 30분 만에 해결한 후기", Model: gen.ModelLlama70B},
			domain.ClassAlt:   {Text: "하수구 고압세척 작업 현장 사진", Model: gen.ModelLlama8B},
			domain.ClassBody:  {Text: "<h2>출동 배경</h2><p>효자동에서 긴급 연락을 받았습니다.</p>", Model: gen.ModelLlama70B},
			domain.ClassTags:  {Text: "#전주 #효자동 #하수구막힘 #긴급출동", Model: gen.ModelGemma},
		},
		errs: map[domain.ContentClass]error{},
	}
}

func newTestPipeline(selector TargetSelector, generator Generator, store Store) *Pipeline {
	logger := zerolog.Nop()
	prompts := gen.NewPromptBuilder(rand.New(rand.NewSource(1))) //nolint:gosec // deterministic test source

	return New(
		selector,
		generator,
		prompts,
		&fakeImages{url: "https://cdn.example.com/post.jpg"},
		assemble.New("전북배관", "010-8184-3496"),
		store,
		0.85,
		&logger,
	)
}

func TestGeneratePostSuccess(t *testing.T) {
	store := &recordingStore{insertedID: "post-1"}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, healthyGenerator(), store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.True(t, result.Success)
	assert.Equal(t, "전주 완산구 효자동 하수구막힘", result.Keyword)
	assert.Equal(t, "전주 효자동 하수구막힘, 30분 만에 해결한 후기", result.Title)
	assert.Equal(t, "https://cdn.example.com/post.jpg", result.ImageURL)

	require.Len(t, store.posts, 1)
	post := store.posts[0]
	assert.Equal(t, domain.PostStatusPublished, post.Status)
	assert.Contains(t, post.Content, "<h2>출동 배경</h2>")
	assert.Contains(t, post.Content, `alt="하수구 고압세척 작업 현장 사진"`)
	assert.Contains(t, post.Content, "display:none")

	require.Len(t, store.logs, 1)
	log := store.logs[0]
	assert.Equal(t, domain.JobStatusSuccess, log.Status)
	assert.Equal(t, domain.JobTypeAuto, log.JobType)
	// Models accumulate deduplicated in first-use order: the title and
	// body share one tier, so it appears once.
	assert.Equal(t, strings.Join([]string{gen.ModelLlama70B, gen.ModelLlama8B, gen.ModelGemma}, ","), log.ModelUsed)
}

func TestGeneratePostBodyFailureWritesFailureLog(t *testing.T) {
	generator := healthyGenerator()
	generator.errs[domain.ClassBody] = errors.New("all generation backends exhausted")

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.False(t, result.Success)
	assert.Equal(t, "전주 완산구 효자동 하수구막힘", result.Keyword)
	assert.Contains(t, result.Error, "generate body")

	assert.Empty(t, store.posts)
	require.Len(t, store.logs, 1)
	log := store.logs[0]
	assert.Equal(t, domain.JobStatusFailure, log.Status)
	assert.NotEmpty(t, log.Keyword)
	assert.Contains(t, log.ErrorMessage, "exhausted")
}

func TestGeneratePostAltFailureUsesDefault(t *testing.T) {
	generator := healthyGenerator()
	generator.errs[domain.ClassAlt] = errors.New("alt tiers down")

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeManual)

	require.True(t, result.Success)
	require.Len(t, store.posts, 1)
	assert.Contains(t, store.posts[0].Content, `alt="전주 완산구 효자동 하수구막힘 작업 현장 사진"`)
}

func TestGeneratePostTagsFailureUsesDefault(t *testing.T) {
	generator := healthyGenerator()
	generator.errs[domain.ClassTags] = errors.New("tags tiers down")

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.True(t, result.Success)
	require.Len(t, store.posts, 1)
	assert.Contains(t, store.posts[0].Content, "#하수구막힘")
}

func TestGeneratePostUnsafeContentRejected(t *testing.T) {
	generator := healthyGenerator()
	generator.responses[domain.ClassBody] = domain.GenerationResult{
		Text:  "<p>지금 카지노 가입 이벤트 안내</p>",
		Model: gen.ModelLlama70B,
	}

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.False(t, result.Success)
	assert.Empty(t, store.posts)
	require.Len(t, store.logs, 1)
	assert.Equal(t, domain.JobStatusFailure, store.logs[0].Status)
}

func TestGeneratePostUnsafeHashtagsRejected(t *testing.T) {
	generator := healthyGenerator()
	generator.responses[domain.ClassTags] = domain.GenerationResult{
		Text:  "#전주 #하수구막힘 #카지노 이벤트 안내",
		Model: gen.ModelGemma,
	}

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.False(t, result.Success)
	assert.Empty(t, store.posts)
	require.Len(t, store.logs, 1)
	assert.Equal(t, domain.JobStatusFailure, store.logs[0].Status)
}

func TestGeneratePostUnsafeAltTextRejected(t *testing.T) {
	generator := healthyGenerator()
	generator.responses[domain.ClassAlt] = domain.GenerationResult{
		Text:  "바카라 홍보 이미지",
		Model: gen.ModelLlama8B,
	}

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.False(t, result.Success)
	assert.Empty(t, store.posts)
}

func TestGeneratePostSelectorFailure(t *testing.T) {
	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{err: errors.New("catalog empty")}, healthyGenerator(), store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.False(t, result.Success)
	assert.Empty(t, result.Keyword)

	// Failure log is still written, with whatever context exists.
	require.Len(t, store.logs, 1)
	assert.Equal(t, "none", store.logs[0].ModelUsed)
}

func TestGeneratePostShortTitleFallsBackToKeyword(t *testing.T) {
	generator := healthyGenerator()
	generator.responses[domain.ClassTitle] = domain.GenerationResult{Text: "제목임", Model: gen.ModelLlama70B}

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.True(t, result.Success)
	assert.Equal(t, "전주 완산구 효자동 하수구막힘", result.Title)
}

func TestGeneratePostStripsInventedPhoneNumbers(t *testing.T) {
	generator := healthyGenerator()
	generator.responses[domain.ClassBody] = domain.GenerationResult{
		Text:  "<p>문의는 010-9999-8888로 주세요.</p>",
		Model: gen.ModelLlama70B,
	}

	store := &recordingStore{}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)

	require.True(t, result.Success)
	require.Len(t, store.posts, 1)
	assert.NotContains(t, store.posts[0].Content, "010-9999-8888")
	// The branding phone number in the footer survives.
	assert.Contains(t, store.posts[0].Content, "010-8184-3496")
}

func TestGeneratePostFailureLogWriteFailureDoesNotPanic(t *testing.T) {
	generator := healthyGenerator()
	generator.errs[domain.ClassTitle] = errors.New("down")

	store := &recordingStore{jobLogErr: errors.New("db down")}
	p := newTestPipeline(&fakeSelector{target: testTarget()}, generator, store)

	result := p.GeneratePost(context.Background(), domain.JobTypeAuto)
	assert.False(t, result.Success)
}
