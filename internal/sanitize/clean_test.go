package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "code fence with language tag",
			in:       "```html\n전주 하수구막힘 해결\n```",
			expected: "전주 하수구막힘 해결",
		},
		{
			name:     "acknowledgement opener removed",
			in:       "물론입니다! 요청하신 제목입니다.\n전주 변기막힘 긴급출동",
			expected: "전주 변기막힘 긴급출동",
		},
		{
			name:     "alternative answer keeps first option",
			in:       "Best Title A or Best Title B (Translated: something)",
			expected: "Best Title A",
		},
		{
			name:     "translation parenthetical removed",
			in:       "군산 싱크대막힘 (Translated: sink clog in Gunsan) 바로 해결",
			expected: "군산 싱크대막힘 바로 해결",
		},
		{
			name:     "full width translation parenthetical removed",
			in:       "익산 배관 점검（번역: pipe inspection）후기",
			expected: "익산 배관 점검후기",
		},
		{
			name:     "japanese and han glyphs stripped",
			in:       "전주 排水管 하수구 クリーニング 전문",
			expected: "전주  하수구  전문",
		},
		{
			name:     "cyrillic stripped",
			in:       "완주 수전교체 Ремонт 후기",
			expected: "완주 수전교체  후기",
		},
		{
			name:     "trailing sign off removed",
			in:       "김제 하수구막힘 작업 후기\n도움이 되었기를 바랍니다.",
			expected: "김제 하수구막힘 작업 후기",
		},
		{
			name:     "clean text untouched",
			in:       "정읍 변기막힘 30분 출동",
			expected: "정읍 변기막힘 30분 출동",
		},
		{
			name:     "empty input",
			in:       "",
			expected: "",
		},
		{
			name:     "script strip exposing an alternative still truncates",
			in:       "전주 하수구막힘 o漢r 군산 변기막힘",
			expected: "전주 하수구막힘",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"```html\n물론입니다! 여기 있습니다.\n전주 하수구막힘 해결 or 전주 배관 청소 (번역: drain cleaning)\n```",
		"군산 싱크대막힘 排水 후기\n감사합니다.",
		"평범한 제목입니다만 멀쩡합니다",
		"",
		"전주 하수구막힘 o漢r 군산 변기막힘",
		"익산 배관 정비 oЯr 점검 (번역: maintenance) 후기",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once))
	}
}

func TestCleanMarkup(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "prose around markup discarded",
			in:       "Here is the post you asked for:\n<h2>전주 하수구막힘</h2><p>후기입니다.</p>\nI hope this helps!",
			expected: "<h2>전주 하수구막힘</h2><p>후기입니다.</p>",
		},
		{
			name:     "no block tags leaves text alone",
			in:       "그냥 본문 문장입니다.",
			expected: "그냥 본문 문장입니다.",
		},
		{
			name:     "fenced markup unwrapped",
			in:       "```html\n<p>변기막힘 해결 과정</p>\n```",
			expected: "<p>변기막힘 해결 과정</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanMarkup(tt.in))
		})
	}
}

func TestCleanMarkupIdempotent(t *testing.T) {
	in := "Sure, here you go.\n<h2>익산 하수구고압세척</h2>\n<p>작업 후기.</p>\n도움이 되셨다면 좋겠습니다."
	once := CleanMarkup(in)
	assert.Equal(t, once, CleanMarkup(once))
}

func TestContainsMarkup(t *testing.T) {
	assert.True(t, ContainsMarkup("<p>본문</p>"))
	assert.True(t, ContainsMarkup("text <div>x</div> text"))
	assert.False(t, ContainsMarkup("전주 하수구막힘 후기"))
	assert.False(t, ContainsMarkup("a < b and b > c"))
}

func TestStripPhoneNumbers(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "hyphenated mobile",
			in:       "연락처는 010-1234-5678 입니다",
			expected: "연락처는 [전화번호 비공개] 입니다",
		},
		{
			name:     "hyphenated landline",
			in:       "063-123-4567로 전화주세요",
			expected: "[전화번호 비공개]로 전화주세요",
		},
		{
			name:     "bare digit run",
			in:       "01012345678 로 문자",
			expected: "[전화번호 비공개] 로 문자",
		},
		{
			name:     "short numbers untouched",
			in:       "오전 9시부터 18시까지",
			expected: "오전 9시부터 18시까지",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripPhoneNumbers(tt.in))
		})
	}
}

func TestIsSafeContent(t *testing.T) {
	assert.True(t, IsSafeContent("전주 하수구막힘 전문 업체 후기"))
	assert.False(t, IsSafeContent("지금 카지노 가입하면 혜택"))
	assert.False(t, IsSafeContent("Best CASINO bonus"))
	assert.False(t, IsSafeContent("저금리 대출 안내"))
}
