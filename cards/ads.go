package cards

import (
	"strings"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// isAd rejects advertisement and recommendation cards. The extracted
// name is held to the strictest checks; subtree text and the
// accessibility description only reject on the promotional keyword
// set, so a genuine card is not lost to a business-hours line.
func isAd(card *snapshot.ViewNode, name string, cfg Config) bool {
	if match.ContainsAny(name, cfg.AdKeywords) {
		return true
	}
	if match.IsPureNumericOrPunct(name) || match.IsNumberWithUnit(name) {
		return true
	}
	if timePrefixRe.MatchString(name) {
		return true
	}

	ad := false
	card.Walk(func(n *snapshot.ViewNode) bool {
		if ad {
			return false
		}
		for _, blob := range [2]string{n.Text, n.ContentDesc} {
			if blob == "" {
				continue
			}
			t := strings.TrimSpace(match.StripMarkup(blob))
			if match.ContainsAny(t, cfg.AdKeywords) {
				ad = true
				return false
			}
		}
		return true
	})
	return ad
}
