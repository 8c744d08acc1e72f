package match

import "strings"

// Administrative-division and road/building markers that anchor a
// mainland street address.
var (
	adminMarkers = []string{"省", "市", "区", "县", "镇", "乡", "村"}
	roadMarkers  = []string{"路", "街", "道", "巷", "弄", "号", "栋", "楼", "层", "室", "幢", "里"}
)

// LooksLikeAddress reports whether text reads as a storable street
// address rather than an entity name. Marker-based hits require at
// least 10 runes so short names carrying an administrative character
// (e.g. a market name ending in 市场) do not qualify; venue forms
// (greenhouse plots, stall codes, market phases) qualify on their own.
func LooksLikeAddress(text string) bool {
	t := strings.TrimSpace(StripMarkup(text))
	if t == "" {
		return false
	}
	n := len([]rune(t))

	if stallCodeRe.MatchString(t) || marketPhaseRe.MatchString(t) {
		return true
	}
	if strings.Contains(t, "大棚") || strings.Contains(t, "草莓地") {
		return true
	}
	if (strings.Contains(t, "市场") || strings.Contains(t, "交易中心")) && n >= 15 {
		return true
	}
	if n < 10 {
		return false
	}
	return ContainsAny(t, adminMarkers) || ContainsAny(t, roadMarkers)
}
