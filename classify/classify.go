// Package classify decides what kind of screen a snapshot shows. The
// verdict combines four independent weighted signals so partial
// evidence still moves the confidence instead of tripping a single
// boolean rule.
package classify

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// PageType enumerates the screen kinds the classifier can name.
type PageType string

const (
	PageSearchResults PageType = "search_results"
	PageDetail        PageType = "detail"
	PageMapView       PageType = "map_view"
	PageUnknown       PageType = "unknown"
)

// Layout enumerates the known card width regimes.
type Layout string

const (
	LayoutFullWidth Layout = "full_width"
	LayoutNarrow    Layout = "narrow"
	LayoutUnknown   Layout = "unknown"
)

// Signal weights. Their sum bounds the confidence at 1.0; the feature
// term is capped so a tag flood cannot outvote structure.
const (
	weightStructural = 0.4
	weightList       = 0.3
	weightCount      = 0.2
	weightFeatureCap = 0.1
	perFeature       = 0.02

	weightDetailBase = 0.4
	weightMapBase    = 0.3
)

// PageVerdict is the classification result. Created fresh per call,
// never mutated after return.
type PageVerdict struct {
	PageType       PageType `json:"page_type"`
	HasEntityList  bool     `json:"has_entity_list"`
	EstimatedCount int      `json:"estimated_count"`
	Layout         Layout   `json:"layout"`
	Confidence     float64  `json:"confidence"`
	Features       []string `json:"features,omitempty"`
}

// Config carries the classifier thresholds. Zero values fall back to
// the tuned defaults.
type Config struct {
	// MinCardGroups is the clickable-group count that makes a
	// scrollable container an entity list.
	MinCardGroups int `json:"min_card_groups" yaml:"min_card_groups"`

	// CardHeightMin/Max bound the group heights counted toward
	// EstimatedCount.
	CardHeightMin int `json:"card_height_min" yaml:"card_height_min"`
	CardHeightMax int `json:"card_height_max" yaml:"card_height_max"`

	// DetailKeywords are the affordance labels of a detail page;
	// DetailKeywordMin of them must appear.
	DetailKeywords   []string `json:"detail_keywords" yaml:"detail_keywords"`
	DetailKeywordMin int      `json:"detail_keyword_min" yaml:"detail_keyword_min"`

	// Width-ratio bands deciding the layout variant.
	FullWidthLo float64 `json:"full_width_lo" yaml:"full_width_lo"`
	FullWidthHi float64 `json:"full_width_hi" yaml:"full_width_hi"`
	NarrowLo    float64 `json:"narrow_lo" yaml:"narrow_lo"`
	NarrowHi    float64 `json:"narrow_hi" yaml:"narrow_hi"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MinCardGroups <= 0 {
		c.MinCardGroups = 3
	}
	if c.CardHeightMin <= 0 {
		c.CardHeightMin = 100
	}
	if c.CardHeightMax <= 0 {
		c.CardHeightMax = 500
	}
	if len(c.DetailKeywords) == 0 {
		c.DetailKeywords = match.DefaultDetailKeywords
	}
	if c.DetailKeywordMin <= 0 {
		c.DetailKeywordMin = 3
	}
	if c.FullWidthLo == 0 {
		c.FullWidthLo = 0.90
	}
	if c.FullWidthHi == 0 {
		c.FullWidthHi = 0.95
	}
	if c.NarrowLo == 0 {
		c.NarrowLo = 0.64
	}
	if c.NarrowHi == 0 {
		c.NarrowHi = 0.70
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Page classifies a snapshot tree. Confidence is additive over the
// four signals, clamped to [0,1]; no signal short-circuits another.
func Page(root *snapshot.ViewNode, screen snapshot.ScreenContext, cfg Config) PageVerdict {
	cfg.defaults()

	verdict := PageVerdict{PageType: PageUnknown, Layout: LayoutUnknown}
	if root == nil {
		return verdict
	}

	container := match.FindListContainer(root)
	var groups []*snapshot.ViewNode
	if container != nil {
		groups = match.ClickableGroups(container)
	}

	verdict.Features = pageFeatures(root, container)

	conf := 0.0
	if container != nil && len(groups) >= cfg.MinCardGroups {
		verdict.PageType = PageSearchResults
		verdict.HasEntityList = true
		conf += weightStructural
		conf += weightList
	} else if n := detailKeywordCount(root, cfg.DetailKeywords); n >= cfg.DetailKeywordMin {
		verdict.PageType = PageDetail
		conf += weightDetailBase
	} else if looksLikeMapHome(root, screen) {
		verdict.PageType = PageMapView
		conf += weightMapBase
	}

	for _, g := range groups {
		h := g.Bounds.Height()
		if h >= cfg.CardHeightMin && h <= cfg.CardHeightMax {
			verdict.EstimatedCount++
		}
	}
	switch {
	case verdict.EstimatedCount >= cfg.MinCardGroups:
		conf += weightCount
	case verdict.EstimatedCount >= 1:
		conf += weightCount / 2
	}

	fc := perFeature * float64(len(verdict.Features))
	if fc > weightFeatureCap {
		fc = weightFeatureCap
	}
	conf += fc

	if conf > 1 {
		conf = 1
	}
	verdict.Confidence = conf
	verdict.Layout = modalLayout(groups, screen, cfg)

	cfg.Logger.Debug("page classified",
		"page_type", verdict.PageType,
		"confidence", verdict.Confidence,
		"count", verdict.EstimatedCount,
		"layout", verdict.Layout)
	return verdict
}

func detailKeywordCount(root *snapshot.ViewNode, keywords []string) int {
	return match.CountKeywords(root.CollectText(0), keywords)
}

// looksLikeMapHome recognizes the map landing screen: no list, no
// detail affordances, but bottom-band navigation chrome.
func looksLikeMapHome(root *snapshot.ViewNode, screen snapshot.ScreenContext) bool {
	if screen.Height <= 0 {
		return false
	}
	bottomBand := screen.Height * 4 / 5
	chrome := 0
	root.Walk(func(n *snapshot.ViewNode) bool {
		if n.Bounds.Y1 >= bottomBand && n.Clickable {
			label := n.Text + n.ContentDesc
			if strings.Contains(label, "路线") || strings.Contains(label, "附近") || strings.Contains(label, "搜索") {
				chrome++
			}
		}
		return true
	})
	return chrome >= 2
}

// pageFeatures collects the recognized evidence tags, sorted for
// deterministic output.
func pageFeatures(root *snapshot.ViewNode, container *snapshot.ViewNode) []string {
	set := make(map[string]bool)
	if container != nil {
		set["list_container"] = true
	}
	root.Walk(func(n *snapshot.ViewNode) bool {
		t := n.Text
		if t == "" {
			return true
		}
		if match.MatchesRating(t) {
			set["rating"] = true
		}
		if match.MatchesDistance(t) {
			set["distance"] = true
		}
		if match.MatchesBusinessStatus(t) {
			set["business_status"] = true
		}
		if _, ok := match.MarkupTitle(t); ok {
			set["markup_title"] = true
		}
		if match.MatchesPhone(t) {
			set["phone"] = true
		}
		if match.MatchesTimeRange(t) {
			set["time_range"] = true
		}
		return true
	})

	features := make([]string, 0, len(set))
	for f := range set {
		features = append(features, f)
	}
	sort.Strings(features)
	return features
}

// modalLayout buckets the card width ratios and maps the most common
// bucket onto the known layout bands.
func modalLayout(groups []*snapshot.ViewNode, screen snapshot.ScreenContext, cfg Config) Layout {
	if len(groups) == 0 || screen.Width <= 0 {
		return LayoutUnknown
	}
	counts := make(map[int]int)
	for _, g := range groups {
		r := match.WidthRatio(g.Bounds, screen)
		if r <= 0 {
			continue
		}
		counts[int(r*100+0.5)]++
	}
	best, bestN := 0, 0
	for bucket, n := range counts {
		if n > bestN || (n == bestN && bucket > best) {
			best, bestN = bucket, n
		}
	}
	if bestN == 0 {
		return LayoutUnknown
	}
	ratio := float64(best) / 100
	switch {
	case ratio >= cfg.FullWidthLo && ratio <= cfg.FullWidthHi:
		return LayoutFullWidth
	case ratio >= cfg.NarrowLo && ratio <= cfg.NarrowHi:
		return LayoutNarrow
	default:
		return LayoutUnknown
	}
}
