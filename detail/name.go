package detail

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// topVetoBand is the status-bar region. Nothing rendered this high is
// ever a listing name, whatever the configured candidate band says.
const topVetoBand = 100

var photoCountRe = regexp.MustCompile(`^照片\d+$`)

// nameCandidate ranks by font size first, then closeness to a typical
// title length, then vertical position.
type nameCandidate struct {
	text string
	size int
	y    int
}

// resolveName picks the listing title. Font-styled runs outrank plain
// ones, and resource ids that name a title field rank with the largest
// fonts. Clock strings and anything in the status-bar band are vetoed
// outright.
func resolveName(root *snapshot.ViewNode, cfg Config) string {
	floor := cfg.NameBandTop
	if floor < 0 {
		floor = 0
	}

	var cands []nameCandidate
	consider := func(text string, size, y int) {
		text = strings.TrimSpace(text)
		if text == "" || y < floor || y > cfg.NameBandBottom {
			return
		}
		if y < topVetoBand || match.MatchesClock(text) {
			return
		}
		if !nameAllowed(text, size, cfg) {
			return
		}
		cands = append(cands, nameCandidate{text: text, size: size, y: y})
	}

	root.Walk(func(n *snapshot.ViewNode) bool {
		y := n.Bounds.Y1
		if spans := match.FontSpans(n.Text); len(spans) > 0 {
			for _, s := range spans {
				consider(s.Text, s.Size, y)
			}
		} else if t := match.StripMarkup(n.Text); t != "" {
			size := 0
			if hasIDHint(n.ResourceID, "title", "name", "merchant", "shop") {
				size = 999
			}
			consider(t, size, y)
		}
		return true
	})
	if len(cands) == 0 {
		return ""
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].size != cands[j].size {
			return cands[i].size > cands[j].size
		}
		di, dj := titleLenDiff(cands[i].text), titleLenDiff(cands[j].text)
		if di != dj {
			return di < dj
		}
		return cands[i].y < cands[j].y
	})
	return cands[0].text
}

// titleLenDiff measures distance from the typical title length of
// twelve runes.
func titleLenDiff(s string) int {
	d := len([]rune(s)) - 12
	if d < 0 {
		return -d
	}
	return d
}

// nameAllowed filters out everything a detail screen renders that is
// not a title: photo counters, bare numbers, metric and status rows,
// chrome labels, bracket headers, and address lines. Font-styled
// candidates get a looser length window than plain runs.
func nameAllowed(text string, size int, cfg Config) bool {
	runes := len([]rune(text))
	lo, hi := 4, 20
	if size > 0 {
		lo, hi = 2, 30
	}
	if runes < lo || runes > hi {
		return false
	}
	if match.IsPureNumericOrPunct(text) || photoCountRe.MatchString(text) {
		return false
	}
	if match.MatchesRating(text) || match.MatchesDistance(text) ||
		match.MatchesTimeRange(text) || match.MatchesBusinessStatus(text) ||
		match.IsNumberWithUnit(text) {
		return false
	}
	if match.IsTagLine(text) || match.IsBracketLabel(text) {
		return false
	}
	if match.ContainsAny(text, cfg.ExcludedKeywords) {
		return false
	}
	if match.LooksLikeAddress(text) {
		return false
	}
	return true
}
