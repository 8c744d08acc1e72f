package match

import "strings"

var nameNoise = strings.NewReplacer(
	"（", "", "）", "", "(", "", ")", "",
	"·", "", ".", "", "。", "", " ", "", "　", "",
)

// NameSimilar reports whether two entity names plausibly refer to the
// same listing. Comparison is rune-set overlap after stripping
// decoration: at least min(4, half the shorter name) common runes.
// Exact prefix/suffix renderings ("X" vs "X(官方店)") pass; unrelated
// names sharing a generic character do not.
func NameSimilar(a, b string) bool {
	a = nameNoise.Replace(strings.TrimSpace(StripMarkup(a)))
	b = nameNoise.Replace(strings.TrimSpace(StripMarkup(b)))
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	setA := make(map[rune]bool)
	for _, r := range a {
		setA[r] = true
	}
	common := 0
	seen := make(map[rune]bool)
	for _, r := range b {
		if setA[r] && !seen[r] {
			seen[r] = true
			common++
		}
	}

	shorter := len([]rune(a))
	if lb := len([]rune(b)); lb < shorter {
		shorter = lb
	}
	threshold := (shorter + 1) / 2
	if threshold > 4 {
		threshold = 4
	}
	if threshold < 1 {
		threshold = 1
	}
	return common >= threshold
}
