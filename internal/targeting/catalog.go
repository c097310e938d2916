// Package targeting selects the location, service and style each generated
// post targets. Locations rotate through a persisted cursor so coverage is
// approximately round-robin; services are restricted for low-density areas.
package targeting

import (
	"regexp"
	"strings"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// Services lists the offered services in catalog order. The first entry is
// the default service rural areas are restricted to.
var Services = []string{
	"하수구막힘",
	"변기막힘",
	"싱크대막힘",
	"하수구고압세척",
	"수전교체",
	"배관내시경",
}

// DefaultService is the single service offered in rural areas.
const DefaultService = "하수구막힘"

// ruralNames are region names treated as low-density regardless of suffix.
var ruralNames = []string{
	"진안", "무주", "장수", "임실", "순창", "고창", "부안",
	"담양", "곡성", "구례", "화순", "함평", "영광", "장성",
	"완도", "진도", "신안",
}

// rawLocations is the static service-area table. Entries may repeat a
// district under numbered administrative splits; NewCatalog collapses them.
var rawLocations = []domain.Location{
	{Region: "전주 완산구", District: "효자동"},
	{Region: "전주 완산구", District: "평화동"},
	{Region: "전주 완산구", District: "삼천1동"},
	{Region: "전주 완산구", District: "삼천2동"},
	{Region: "전주 완산구", District: "중화산동"},
	{Region: "전주 완산구", District: "서신동"},
	{Region: "전주 완산구", District: "서서학동"},
	{Region: "전주 덕진구", District: "송천동"},
	{Region: "전주 덕진구", District: "인후동"},
	{Region: "전주 덕진구", District: "만성동"},
	{Region: "전주 덕진구", District: "반월동"},
	{Region: "전주 덕진구", District: "여의동"},
	{Region: "전주 덕진구", District: "팔복동"},
	{Region: "익산", District: "모현동"},
	{Region: "익산", District: "영등동"},
	{Region: "익산", District: "부송동"},
	{Region: "익산", District: "어양동"},
	{Region: "익산", District: "삼성동"},
	{Region: "군산", District: "수송동"},
	{Region: "군산", District: "나운동"},
	{Region: "군산", District: "조촌동"},
	{Region: "군산", District: "미룡동"},
	{Region: "군산", District: "지곡동"},
	{Region: "완주군", District: "봉동읍"},
	{Region: "완주군", District: "이서면"},
	{Region: "완주군", District: "삼례읍"},
	{Region: "김제", District: "요촌동"},
	{Region: "김제", District: "검산동"},
	{Region: "정읍", District: "수성동"},
	{Region: "남원", District: "도통동"},
}

var numberedDongSuffix = regexp.MustCompile(`\d+동$`)

// NormalizeDistrict collapses trailing numeric splits on "-동" districts,
// e.g. 삼천1동 -> 삼천동. Other district names pass through unchanged.
func NormalizeDistrict(district string) string {
	if strings.HasSuffix(district, "동") {
		return numberedDongSuffix.ReplaceAllString(district, "동")
	}

	return district
}

// NewCatalog returns the deduplicated location catalog. Entries are keyed
// by region plus normalized district; order of first appearance is kept so
// the rotation cursor stays stable across runs.
func NewCatalog(locations []domain.Location) []domain.Location {
	seen := make(map[string]bool, len(locations))
	catalog := make([]domain.Location, 0, len(locations))

	for _, loc := range locations {
		district := NormalizeDistrict(loc.District)

		key := loc.Region + "/" + district
		if seen[key] {
			continue
		}

		seen[key] = true

		catalog = append(catalog, domain.Location{Region: loc.Region, District: district})
	}

	return catalog
}

// DefaultCatalog builds the catalog from the static service-area table.
func DefaultCatalog() []domain.Location {
	return NewCatalog(rawLocations)
}

// IsRural reports whether a location is low-density: the region carries a
// known rural name, the region is a 군-level division, or the district is
// an 읍/면-level division.
func IsRural(region, district string) bool {
	for _, name := range ruralNames {
		if strings.Contains(region, name) {
			return true
		}
	}

	return strings.HasSuffix(region, "군") ||
		strings.HasSuffix(district, "읍") ||
		strings.HasSuffix(district, "면")
}

// EligibleServices returns the services offered at a location. Rural areas
// are restricted to the default service; urban areas get the full catalog.
func EligibleServices(region, district string) []string {
	if IsRural(region, district) {
		return []string{DefaultService}
	}

	out := make([]string, len(Services))
	copy(out, Services)

	return out
}
