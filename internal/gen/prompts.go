package gen

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// targetAudiences are reader personas mixed into body prompts for variety.
var targetAudiences = []string{
	"화장실을 급하게 써야 하는 다급한 주부",
	"퇴근 후 배수구 냄새 때문에 스트레스 받는 30대 직장인",
	"세입자 민원을 해결해야 하는 원룸 건물주",
	"갑자기 물이 안 내려가 당황한 신혼부부",
	"어린 자녀가 장난감을 변기에 빠뜨려 멘붕 온 초보 엄마",
	"오래된 아파트에 새로 이사 와서 배관 상태가 불안한 사회초년생",
	"맞벌이로 바빠 야간이나 주말에만 시공이 가능한 직장인 부부",
	"반려동물 목욕 후 털 뭉치로 하수구가 막힌 1인 가구",
	"명절에 온 가족이 모였는데 변기가 막혀버린 대가족",
	"점심 장사를 망칠까 봐 걱정하는 식당 사장님",
	"샴푸대 배수구가 막혀 손님을 못 받고 있는 미용실 원장님",
	"샤워실 물이 안 빠져 회원들 불만이 폭주하는 헬스장 관장님",
}

// usageContexts are situations the body prompt asks the model to weave in.
var usageContexts = []string{
	"갑자기 날씨가 추워지면서 배관이 얼었을 가능성",
	"장마철 습기 때문에 악취가 더 심해지고 물이 역류하는 상황",
	"주말이라 관리사무소 연락이 어려운 상황",
	"손님이 오기로 했는데 갑자기 막힌 난감한 상황",
	"변기에 물티슈를 계속 버려서 메인 배관까지 꽉 막힌 상황",
	"싱크대 아래 호스가 빠져 주방 바닥이 물바다가 된 상황",
	"음식물 처리기 사용 후 기름 찌꺼기가 굳어 배관을 완전히 막은 상황",
	"정기 관리를 안 해서 배관 내부에 기름 석순이 가득 차 물길이 막힌 상황",
	"오래된 빌라의 공용 배관이 막혀 전 세대가 화장실을 못 쓰는 상황",
	"새벽에 배수구에서 꿀렁거리는 괴음과 함께 물이 넘치는 상황",
}

// styleDirectives translate a content style into prompt instructions.
var styleDirectives = map[domain.Style]string{
	domain.StyleReport: "실제 시공 사례 보고서 형식으로, 출동부터 작업 완료까지의 과정을 시간 순서대로 서술하세요.",
	domain.StyleStory:  "고객의 입장에서 공감을 이끌어내는 스토리텔링 형식으로, 문제 발생부터 해결까지의 경험담처럼 서술하세요.",
	domain.StyleExpert: "전문가가 설명하는 가이드 형식으로, 원인 분석과 예방 팁을 중심으로 서술하세요.",
}

// PromptBuilder assembles per-class Korean prompts for a target.
type PromptBuilder struct {
	rng *rand.Rand
}

// NewPromptBuilder creates a builder with its own random source for
// audience and context variety.
func NewPromptBuilder(rng *rand.Rand) *PromptBuilder {
	return &PromptBuilder{rng: rng}
}

// TitlePrompt asks for a single click-worthy post title.
func (b *PromptBuilder) TitlePrompt(target domain.Target) string {
	return fmt.Sprintf(`당신은 20년 경력의 배관 전문가이자 블로그 마케팅 전문가입니다.
아래 키워드를 반드시 포함하는 블로그 글 제목을 딱 1개만 작성해주세요.

- 핵심 키워드: %s
- 지역: %s %s
- 서비스: %s

요청사항:
1. 제목에 핵심 키워드가 자연스럽게 들어가야 합니다.
2. 독자의 공감을 얻고 클릭을 유도하는 매력적인 문구여야 합니다.
3. 제목 텍스트만 출력하고, 따옴표나 번호, 설명은 붙이지 마세요.`,
		target.Keyword, target.City, target.District, target.Service)
}

// AltPrompt asks for image alternative text.
func (b *PromptBuilder) AltPrompt(target domain.Target, title string) string {
	return fmt.Sprintf(`다음 블로그 글의 대표 이미지에 쓸 대체 텍스트(alt text)를 한 문장으로 작성해주세요.

- 글 제목: %s
- 키워드: %s

요청사항:
1. 시각장애인 독자가 이미지를 이해할 수 있도록 구체적으로 묘사하세요.
2. 한 문장, 텍스트만 출력하세요.`, title, target.Keyword)
}

// BodyPrompt asks for the HTML body of the post.
func (b *PromptBuilder) BodyPrompt(target domain.Target, title string) string {
	audience := targetAudiences[b.rng.Intn(len(targetAudiences))]
	context := usageContexts[b.rng.Intn(len(usageContexts))]

	return fmt.Sprintf(`당신은 20년 경력의 베테랑 배관 전문가이자 블로그 마케팅 전문가입니다.
아래 정보를 바탕으로 고객의 신뢰를 얻을 수 있는 전문적인 블로그 포스팅 본문을 작성해주세요.

정보:
- 글 제목: %s
- 핵심 키워드: %s
- 타겟 독자: %s
- 상황 연출: %s
- 서술 방식: %s

요청사항:
1. 본문은 <h2>(소제목), <p>, <ul>, <li> 태그를 사용하여 가독성 있게 작성하세요.
2. 상호명, 전화번호, 광고성 링크를 본문에 절대 포함하지 마세요.
3. SEO 최적화를 위해 관련 키워드를 자연스럽게 포함하세요.
4. 말투는 친절하고 전문적이어야 합니다.
5. 마크다운이 아닌 HTML 태그만 출력하세요. (html, head, body 태그 제외)`,
		title, target.Keyword, audience, context, styleDirectives[target.Style])
}

// TagsPrompt asks for a hashtag line.
func (b *PromptBuilder) TagsPrompt(target domain.Target) string {
	return fmt.Sprintf(`다음 키워드로 네이버 블로그용 해시태그 8개를 작성해주세요.

- 키워드: %s

요청사항:
1. 각 태그는 #으로 시작하고 공백으로 구분하세요.
2. 지역명과 서비스명을 조합한 태그를 포함하세요.
3. 해시태그 한 줄만 출력하고 설명은 붙이지 마세요.`, target.Keyword)
}

// DefaultAlt synthesizes alternative text when every alt tier fails. Alt
// failure never fails the job.
func DefaultAlt(target domain.Target) string {
	return fmt.Sprintf("%s %s %s 작업 현장 사진", target.City, target.District, target.Service)
}

// DefaultHashtags synthesizes a hashtag line from the keyword when every
// tags tier fails.
func DefaultHashtags(target domain.Target) string {
	parts := []string{
		"#" + strings.ReplaceAll(target.City, " ", ""),
		"#" + target.District,
		"#" + target.Service,
		"#" + strings.ReplaceAll(target.City, " ", "") + target.Service,
		"#배관전문",
		"#긴급출동",
	}

	return strings.Join(parts, " ")
}
