package cards

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

var timePrefixRe = regexp.MustCompile(`^.{0,3}\d{1,2}:\d{2}`)

// extractName resolves a card's display name. Tier one is the
// markup-wrapped title, trusted as-is apart from obvious junk. Tier
// two falls back to the best plain text run in the upper part of the
// card; for descriptor candidates the accessibility description joins
// the pool at top position, since some layouts have no text at all.
func extractName(card *snapshot.ViewNode, strat Strategy, cfg Config) (string, bool) {
	var title string
	card.Walk(func(n *snapshot.ViewNode) bool {
		if title != "" {
			return false
		}
		if t, ok := match.MarkupTitle(n.Text); ok {
			title = strings.TrimSpace(t)
		}
		return true
	})
	if title != "" && !match.IsPureNumericOrPunct(title) && !match.IsBracketLabel(title) {
		return title, true
	}

	type run struct {
		text string
		relY float64
	}
	var runs []run

	if strat == FromDescriptor {
		// Descriptions pack fields into one delimited string; every
		// segment competes at top position.
		for _, seg := range descSegments(card.ContentDesc) {
			runs = append(runs, run{text: seg})
		}
	}
	cardH := card.Bounds.Height()
	card.Walk(func(n *snapshot.ViewNode) bool {
		t := strings.TrimSpace(match.StripMarkup(n.Text))
		if t == "" {
			return true
		}
		relY := 0.0
		if cardH > 0 && !n.Bounds.IsZero() {
			relY = float64(n.Bounds.Y1-card.Bounds.Y1) / float64(cardH)
		}
		runs = append(runs, run{text: t, relY: relY})
		return true
	})

	var viable []run
	for _, r := range runs {
		if nameViable(r.text, cfg) && r.relY <= cfg.NameTopRatio {
			viable = append(viable, r)
		}
	}
	if len(viable) == 0 {
		return "", false
	}
	sort.SliceStable(viable, func(i, j int) bool {
		if viable[i].relY != viable[j].relY {
			return viable[i].relY < viable[j].relY
		}
		return lenDiff(viable[i].text) < lenDiff(viable[j].text)
	})
	return viable[0].text, true
}

// lenDiff is the distance from the sweet-spot name length.
func lenDiff(s string) int {
	d := len([]rune(s)) - 10
	if d < 0 {
		return -d
	}
	return d
}

func descSegments(desc string) []string {
	clean := strings.TrimSpace(match.StripMarkup(desc))
	if clean == "" {
		return nil
	}
	segs := strings.FieldsFunc(clean, func(r rune) bool {
		return r == ',' || r == '，' || r == ';' || r == '；' || r == ' ' || r == '　'
	})
	for i, s := range segs {
		segs[i] = strings.TrimSpace(s)
	}
	return segs
}

// nameViable applies the fallback-run vetoes: length window, metadata
// patterns, chrome keywords, addresses, product blurbs.
func nameViable(t string, cfg Config) bool {
	n := len([]rune(t))
	if n < cfg.NameLenMin || n > cfg.NameLenMax {
		return false
	}
	if match.IsPureNumericOrPunct(t) || match.MatchesClock(t) || timePrefixRe.MatchString(t) {
		return false
	}
	if match.MatchesRating(t) || match.MatchesDistance(t) || match.MatchesTimeRange(t) ||
		match.MatchesBusinessStatus(t) || match.IsNumberWithUnit(t) {
		return false
	}
	if match.IsTagLine(t) || match.IsBracketLabel(t) || match.LooksLikeAddress(t) {
		return false
	}
	if match.ContainsAny(t, cfg.ExcludedKeywords) {
		return false
	}
	if match.CountKeywords(t, cfg.TagKeywords) >= 2 {
		return false
	}
	if match.CountKeywords(t, cfg.ProductKeywords) >= cfg.ProductKeywordMin {
		return false
	}
	return true
}
