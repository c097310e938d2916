package sanitize

import "strings"

// denylist holds lowercase substrings that must never appear in published
// content: gambling, adult and loan spam markers plus an unrelated-service
// guardrail term. Matching is case-insensitive substring containment.
var denylist = []string{
	"카지노",
	"바카라",
	"도박",
	"토토",
	"성인용품",
	"유흥",
	"대출",
	"사채",
	"중고차 판매",
	"casino",
	"gambling",
	"viagra",
	"loan",
}

// IsSafeContent reports whether the text is free of denylisted terms.
func IsSafeContent(text string) bool {
	lowered := strings.ToLower(text)

	for _, term := range denylist {
		if strings.Contains(lowered, term) {
			return false
		}
	}

	return true
}
