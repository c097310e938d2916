// Package sanitize strips generation artifacts from model output and gates
// assembled content against a safety denylist.
//
// Clean applies a fixed sequence of passes, iterated until the text stops
// changing; re-cleaning already-clean text is a no-op.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/rangetable"
)

var (
	// Fenced code-block delimiters, with or without a language tag.
	fenceRe = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$|```")

	// Full lines of conversational filler: acknowledgements, meta-notes
	// and boilerplate openers the models like to prepend.
	fillerLineRe = regexp.MustCompile(`(?mi)^[ \t]*(?:` +
		`sure[,!.]?.*|of course[,!.]?.*|certainly[,!.]?.*|` +
		`here(?:'s| is) .*|` +
		`note:.*|translation:.*|` +
		`물론입니다.*|알겠습니다.*|네[,!.] .*|` +
		`다음은 .*|아래는 .*|요청하신 .*|` +
		`참고:.*|번역:.*|제목:.*` +
		`)[ \t]*$`)

	// Residual conversational fragments that survive the line pass, e.g.
	// trailing sign-offs.
	residueLineRe = regexp.MustCompile(`(?mi)^[ \t]*(?:` +
		`i hope this helps.*|let me know.*|` +
		`도움이 되었기를.*|도움이 되셨.*|감사합니다[.!]?` +
		`)[ \t]*$`)

	// Alternative-answer artifact: " ... or ..." keeps only the first option.
	orSplitRe = regexp.MustCompile(`(?i)\s+or\s+`)

	// Parenthetical translation annotations in half- and full-width brackets.
	translationParenRe = regexp.MustCompile(`\s*(?:\([^()]*(?:[Tt]ranslat|번역)[^()]*\)|（[^（）]*(?:[Tt]ranslat|번역)[^（）]*）)`)

	// Korean phone numbers; only the fixed branding number may appear.
	phoneRe     = regexp.MustCompile(`\d{2,3}-\d{3,4}-\d{4}`)
	longDigitRe = regexp.MustCompile(`\d{10,11}`)

	emptyLinesRe = regexp.MustCompile(`\n{3,}`)
)

// foreignScripts is the blocked-script filter. It is a blocklist of ranges
// seen leaking from multilingual models (Japanese kana, Han ideographs,
// Cyrillic), not an allowlist of the target script, so code points outside
// these ranges can still slip through.
var foreignScripts = runes.Remove(runes.In(rangetable.Merge(
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Han,
	unicode.Cyrillic,
)))

// blockTags are the tags whose presence marks a text as markup, enabling
// the markup-span isolation pass.
var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true,
	"p": true, "ul": true, "ol": true, "li": true, "div": true,
}

// maxCleanPasses bounds the fixpoint iteration. One pass can expose input
// for an earlier pass (stripping a foreign glyph can fabricate a fresh
// " or "), so the chain reruns until the text stops changing.
const maxCleanPasses = 4

// Clean strips generation artifacts from plain text. It is idempotent:
// the pass chain is iterated to a fixpoint.
func Clean(text string) string {
	return toFixpoint(text, cleanOnce)
}

func cleanOnce(text string) string {
	out := fenceRe.ReplaceAllString(text, "")
	out = fillerLineRe.ReplaceAllString(out, "")
	out = truncateAlternatives(out)
	out = translationParenRe.ReplaceAllString(out, "")
	out = stripForeignScripts(out)
	out = residueLineRe.ReplaceAllString(out, "")
	out = emptyLinesRe.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}

// CleanMarkup strips generation artifacts from text expected to contain
// HTML. On top of Clean's passes it isolates the span between the first
// '<' and the last '>' when block tags are present, discarding any prose
// the model wrapped around the markup. The alternative-truncation pass is
// skipped: "or" is legitimate prose inside a body. It is idempotent.
func CleanMarkup(text string) string {
	return toFixpoint(text, cleanMarkupOnce)
}

func cleanMarkupOnce(text string) string {
	out := fenceRe.ReplaceAllString(text, "")
	out = fillerLineRe.ReplaceAllString(out, "")
	out = translationParenRe.ReplaceAllString(out, "")
	out = stripForeignScripts(out)
	out = isolateMarkupSpan(out)
	out = residueLineRe.ReplaceAllString(out, "")
	out = emptyLinesRe.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}

func toFixpoint(text string, pass func(string) string) string {
	out := text

	for i := 0; i < maxCleanPasses; i++ {
		next := pass(out)
		if next == out {
			break
		}

		out = next
	}

	return out
}

// truncateAlternatives keeps only the first option of "A or B" artifacts,
// per line.
func truncateAlternatives(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if loc := orSplitRe.FindStringIndex(line); loc != nil {
			lines[i] = strings.TrimRight(line[:loc[0]], " \t")
		}
	}

	return strings.Join(lines, "\n")
}

func stripForeignScripts(text string) string {
	out, _, err := transform.String(foreignScripts, text)
	if err != nil {
		return text
	}

	return out
}

// ContainsMarkup reports whether the text carries at least one common
// block-level HTML tag.
func ContainsMarkup(text string) bool {
	tokenizer := html.NewTokenizer(strings.NewReader(text))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if blockTags[string(name)] {
				return true
			}
		default:
		}
	}
}

func isolateMarkupSpan(text string) string {
	if !ContainsMarkup(text) {
		return text
	}

	first := strings.Index(text, "<")
	last := strings.LastIndex(text, ">")

	if first < 0 || last < first {
		return text
	}

	return text[first : last+1]
}

// StripPhoneNumbers masks phone numbers the model invented so that only
// the fixed branding number reaches published content.
func StripPhoneNumbers(text string) string {
	out := phoneRe.ReplaceAllString(text, "[전화번호 비공개]")

	return longDigitRe.ReplaceAllString(out, "[전화번호 비공개]")
}
