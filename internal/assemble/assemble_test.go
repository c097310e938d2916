package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

func testInput(service string) Input {
	return Input{
		Target: domain.Target{
			City:     "전주 완산구",
			District: "효자동",
			Service:  service,
			Keyword:  "전주 완산구 효자동 " + service,
		},
		Title:    "전주 효자동 " + service + " 해결 후기",
		AltText:  "작업 현장 사진",
		Body:     "<h2>작업 과정</h2>\n<p>본문입니다.</p>",
		Hashtags: "#전주 #효자동 #" + service,
		ImageURL: "https://cdn.example.com/img.jpg",
	}
}

func TestAssembleOrdering(t *testing.T) {
	a := New("전북배관", "010-8184-3496")

	content := a.Assemble(testInput("하수구막힘"))

	imgIdx := strings.Index(content, "<img ")
	bodyIdx := strings.Index(content, "<h2>작업 과정</h2>")
	footerIdx := strings.Index(content, "<hr ")
	tagsIdx := strings.Index(content, `<div style="display:none;">`)

	require.NotEqual(t, -1, imgIdx)
	require.NotEqual(t, -1, bodyIdx)
	require.NotEqual(t, -1, footerIdx)
	require.NotEqual(t, -1, tagsIdx)

	assert.Less(t, imgIdx, bodyIdx)
	assert.Less(t, bodyIdx, footerIdx)
	assert.Less(t, footerIdx, tagsIdx)
}

func TestAssembleImageCarriesAltText(t *testing.T) {
	a := New("전북배관", "010-8184-3496")

	content := a.Assemble(testInput("하수구막힘"))
	assert.Contains(t, content, `alt="작업 현장 사진"`)
	assert.Contains(t, content, `src="https://cdn.example.com/img.jpg"`)
}

func TestAssembleFooterBranding(t *testing.T) {
	a := New("전북배관", "010-8184-3496")

	content := a.Assemble(testInput("하수구막힘"))
	assert.Contains(t, content, "전북배관 | 010-8184-3496")
	assert.Contains(t, content, "전주 완산구 효자동 하수구막힘 해결 전문!")
}

func TestAssembleNaverPlaceURLPerService(t *testing.T) {
	a := New("전북배관", "010-8184-3496")

	assert.Contains(t, a.Assemble(testInput("변기막힘")), "https://naver.me/FjCEaKcf")
	assert.Contains(t, a.Assemble(testInput("하수구막힘")), "https://naver.me/xenVtpVr")
	// Services without their own listing use the default.
	assert.Contains(t, a.Assemble(testInput("수전교체")), "https://naver.me/xenVtpVr")
}

func TestAssembleOmitsEmptyHashtagBlock(t *testing.T) {
	a := New("전북배관", "010-8184-3496")

	in := testInput("하수구막힘")
	in.Hashtags = "  "

	assert.NotContains(t, a.Assemble(in), "display:none")
}

func TestAssembleEscapesAttributes(t *testing.T) {
	a := New("전북배관", "010-8184-3496")

	in := testInput("하수구막힘")
	in.AltText = `현장 "사진" <테스트>`

	content := a.Assemble(in)
	assert.Contains(t, content, "&#34;사진&#34;")
	assert.NotContains(t, content, `alt="현장 "사진"`)
}
