package gen

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// mockProvider returns canned Korean content without network calls. Used in
// development mode when no API keys are configured.
type mockProvider struct {
	calls atomic.Int32
}

// NewMockProvider creates the offline backend.
func NewMockProvider() Provider {
	return &mockProvider{}
}

func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

func (p *mockProvider) IsAvailable() bool {
	return true
}

func (p *mockProvider) Models() []string {
	return []string{"mock-1"}
}

func (p *mockProvider) Complete(_ context.Context, _ string, req domain.GenerationRequest) (string, error) {
	n := p.calls.Add(1)

	switch req.Class {
	case domain.ClassTitle:
		return fmt.Sprintf("개발용 제목 %d번째 생성 결과", n), nil
	case domain.ClassAlt:
		return "개발용 대체 텍스트입니다", nil
	case domain.ClassBody:
		return "<h2>개발용 본문</h2><p>실제 모델 호출 없이 생성된 내용입니다.</p>", nil
	case domain.ClassTags:
		return "#개발 #테스트 #본문없음", nil
	default:
		return "개발용 기본 응답입니다", nil
	}
}

var _ Provider = (*mockProvider)(nil)
