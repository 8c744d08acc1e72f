// Package match provides the reusable textual and geometric predicates
// the extraction heuristics are built from: pattern matchers for
// phones, ratings, clock times and distances, keyword-set membership,
// markup-title extraction, and ratio helpers relative to the screen.
//
// Everything here is pure and safe for concurrent use.
package match

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/hazyhaar/mapsieve/snapshot"
)

var (
	mobileRe   = regexp.MustCompile(`1[3-9]\d{9}`)
	landlineRe = regexp.MustCompile(`0\d{2,3}-?\d{7,8}|\d{3,4}-\d{7,8}`)

	ratingHintRe    = regexp.MustCompile(`\d\.\d\s*分`)
	ratingValueRe   = regexp.MustCompile(`(\d+\.\d+)\s*分`)
	timeRangeRe     = regexp.MustCompile(`\d{2}:\d{2}[-~]\d{2}:\d{2}`)
	clockRe         = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	distanceRe      = regexp.MustCompile(`\d+\.?\d*\s?(公里|km|米|m)`)
	numberUnitRe    = regexp.MustCompile(`^\d+\.?\d*\s?(公里|km|米|m|分钟)$`)
	statusRe        = regexp.MustCompile(`营业中|已打烊|暂停营业`)
	tagLineRe       = regexp.MustCompile(`^收录\d+[年个月天]`)
	stallCodeRe     = regexp.MustCompile(`[A-Z]\d+-\d+号`)
	marketPhaseRe   = regexp.MustCompile(`\d+期\d+-\d+`)
	bracketLabelRe  = regexp.MustCompile(`^【.*】`)
)

// MatchesPhone reports whether text contains a mobile or landline
// phone pattern.
func MatchesPhone(text string) bool {
	return mobileRe.MatchString(text) || landlineRe.MatchString(text)
}

// ExtractPhones collects every phone-looking substring in text,
// normalized to bare digits. Numbers that fail NormalizePhone
// validation are dropped. Order follows first appearance.
func ExtractPhones(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range append(mobileRe.FindAllString(text, -1), landlineRe.FindAllString(text, -1)...) {
		p, ok := NormalizePhone(raw)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// NormalizePhone strips every non-digit rune and validates the result:
// an 11-digit number starting with 1 (mobile) or 7 to 12 digits
// (landline with area code).
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	switch {
	case len(d) == 11 && d[0] == '1':
		return d, true
	case len(d) >= 7 && len(d) <= 12:
		return d, true
	}
	return "", false
}

// MatchesRating reports a rating-like signal: "N.N分" or a praise word.
func MatchesRating(text string) bool {
	return ratingHintRe.MatchString(text) || strings.Contains(text, "很好") || strings.Contains(text, "超棒")
}

// ExtractRating returns the first "N.N分" value in text.
func ExtractRating(text string) (float64, bool) {
	m := ratingValueRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MatchesTimeRange reports an HH:MM-HH:MM business-hours pattern.
func MatchesTimeRange(text string) bool { return timeRangeRe.MatchString(text) }

// ExtractTimeRange returns the first business-hours range in text.
func ExtractTimeRange(text string) (string, bool) {
	m := timeRangeRe.FindString(text)
	return m, m != ""
}

// MatchesClock reports whether the whole text is a bare clock reading
// (H:MM or HH:MM), the status-bar form that must never become a name.
func MatchesClock(text string) bool { return clockRe.MatchString(strings.TrimSpace(text)) }

// MatchesDistance reports a distance string (4.5公里, 400m, ...).
func MatchesDistance(text string) bool { return distanceRe.MatchString(text) }

// IsNumberWithUnit reports whether the whole text is a bare
// number-plus-unit string (distance or minutes), a recommendation-row
// giveaway.
func IsNumberWithUnit(text string) bool { return numberUnitRe.MatchString(strings.TrimSpace(text)) }

// MatchesBusinessStatus reports an open/closed status string.
func MatchesBusinessStatus(text string) bool { return statusRe.MatchString(text) }

// IsTagLine reports an indexing tag line ("收录3年" and friends).
func IsTagLine(text string) bool { return tagLineRe.MatchString(strings.TrimSpace(text)) }

// IsBracketLabel reports a 【...】-prefixed promotional label.
func IsBracketLabel(text string) bool { return bracketLabelRe.MatchString(strings.TrimSpace(text)) }

// IsPureNumericOrPunct reports whether text contains no letters or CJK
// characters at all: only digits, punctuation and spacing. Empty text
// counts as pure.
func IsPureNumericOrPunct(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether text contains any of the keywords as a
// substring.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// WidthRatio returns the node width relative to the screen width, or
// 0 when the screen is unknown.
func WidthRatio(b snapshot.Rect, s snapshot.ScreenContext) float64 {
	if s.Width <= 0 {
		return 0
	}
	return float64(b.Width()) / float64(s.Width)
}

// InVerticalBand reports lo <= y1 and y2 <= hi.
func InVerticalBand(b snapshot.Rect, lo, hi int) bool {
	return b.Y1 >= lo && b.Y2 <= hi
}
