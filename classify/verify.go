package classify

import (
	"strings"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// DetailVerdict is the outcome of verifying that a screen reached by
// tapping a card really is the detail page of that listing.
type DetailVerdict struct {
	IsDetailPage bool `json:"is_detail_page"`
	HasPhone     bool `json:"has_phone"`
	HasAddress   bool `json:"has_address"`

	// NameChecked is false when no expected name was supplied;
	// NameMatched is only meaningful when NameChecked is true.
	NameChecked bool `json:"name_checked"`
	NameMatched bool `json:"name_matched"`

	Confidence float64 `json:"confidence"`
}

var (
	phoneAffordance = []string{"拨打电话", "电话"}
	navAffordance   = []string{"到这去", "导航", "路线"}
)

// VerifyDetail checks a presumed detail screen. The page counts as a
// detail page only when both a phone-contact affordance and a
// navigation affordance exist as clickable labeled nodes; everything
// else only moves the confidence.
func VerifyDetail(root *snapshot.ViewNode, screen snapshot.ScreenContext, expectedName string, cfg Config) DetailVerdict {
	cfg.defaults()

	var v DetailVerdict
	if root == nil {
		return v
	}

	v.IsDetailPage = hasClickableLabel(root, phoneAffordance) && hasClickableLabel(root, navAffordance)

	allText := root.CollectText(0)
	v.HasPhone = match.MatchesPhone(allText)
	root.Walk(func(n *snapshot.ViewNode) bool {
		if !v.HasAddress && match.LooksLikeAddress(n.Text) {
			v.HasAddress = true
		}
		return true
	})

	if expectedName != "" {
		v.NameChecked = true
		root.Walk(func(n *snapshot.ViewNode) bool {
			if v.NameMatched {
				return false
			}
			if n.Text != "" && match.NameSimilar(expectedName, n.Text) {
				v.NameMatched = true
			}
			return true
		})
	}

	conf := 0.0
	if v.IsDetailPage {
		conf += 0.4
	}
	if v.HasPhone {
		conf += 0.2
	}
	if v.HasAddress {
		conf += 0.2
	}
	if v.NameChecked && v.NameMatched {
		conf += 0.2
	}
	v.Confidence = conf

	cfg.Logger.Debug("detail verified",
		"is_detail", v.IsDetailPage,
		"confidence", v.Confidence,
		"name_checked", v.NameChecked,
		"name_matched", v.NameMatched)
	return v
}

// hasClickableLabel looks for a clickable node carrying one of the
// labels. The label may sit on a child TextView inside the clickable
// wrapper, so the subtree text is searched, not just the node's own.
func hasClickableLabel(root *snapshot.ViewNode, labels []string) bool {
	found := false
	root.Walk(func(n *snapshot.ViewNode) bool {
		if found {
			return false
		}
		if !n.Clickable {
			return true
		}
		blob := n.ContentDesc + " " + n.CollectText(64)
		for _, l := range labels {
			if strings.Contains(blob, l) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
