// Package cards locates listing cards inside a classified search
// screen. Two independent strategies propose candidate sub-trees, a
// shared validation pipeline rejects chrome and advertisements, and
// the survivors are merged, deduplicated and ordered top to bottom.
package cards

import (
	"log/slog"
	"sort"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// Strategy names the channel a candidate was found through.
type Strategy string

const (
	// FromContainer candidates are direct child groups of the list
	// container.
	FromContainer Strategy = "from_container"
	// FromDescriptor candidates carry their content through the
	// accessibility description attribute; some layouts expose cards
	// only there.
	FromDescriptor Strategy = "from_descriptor"
)

// Point is a tap position in screen coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Candidate is one located listing card. Bounds and TapPoint are only
// valid for the snapshot the candidate came from.
type Candidate struct {
	Name       string        `json:"name"`
	Bounds     snapshot.Rect `json:"bounds"`
	TapPoint   Point         `json:"tap_point"`
	Confidence float64       `json:"confidence"`
	Strategy   Strategy      `json:"strategy"`
	Index      int           `json:"index"`
}

// Config carries the locator thresholds. Zero values fall back to the
// tuned defaults; thresholds are data, not code.
type Config struct {
	// Vertical band candidates must fall in, excluding header and
	// footer chrome.
	BandTop    int `json:"band_top" yaml:"band_top"`
	BandBottom int `json:"band_bottom" yaml:"band_bottom"`

	// Width ratio (relative to screen) and absolute height bounds.
	WidthRatioMin float64 `json:"width_ratio_min" yaml:"width_ratio_min"`
	WidthRatioMax float64 `json:"width_ratio_max" yaml:"width_ratio_max"`
	HeightMin     int     `json:"height_min" yaml:"height_min"`
	HeightMax     int     `json:"height_max" yaml:"height_max"`

	// Rune-length window for fallback name runs.
	NameLenMin int `json:"name_len_min" yaml:"name_len_min"`
	NameLenMax int `json:"name_len_max" yaml:"name_len_max"`

	// NameTopRatio keeps fallback names in the upper part of the card;
	// metadata rows render below the title.
	NameTopRatio float64 `json:"name_top_ratio" yaml:"name_top_ratio"`

	// Tap zone inside the card, avoiding right-side action buttons
	// and edge bleed from adjacent cards.
	TapXMinRatio float64 `json:"tap_x_min_ratio" yaml:"tap_x_min_ratio"`
	TapXMaxRatio float64 `json:"tap_x_max_ratio" yaml:"tap_x_max_ratio"`
	TapYMinRatio float64 `json:"tap_y_min_ratio" yaml:"tap_y_min_ratio"`
	TapYMaxRatio float64 `json:"tap_y_max_ratio" yaml:"tap_y_max_ratio"`

	// Keyword sets, defaulting to the match package lists.
	AdKeywords       []string `json:"ad_keywords" yaml:"ad_keywords"`
	ExcludedKeywords []string `json:"excluded_keywords" yaml:"excluded_keywords"`
	TagKeywords      []string `json:"tag_keywords" yaml:"tag_keywords"`
	ProductKeywords  []string `json:"product_keywords" yaml:"product_keywords"`

	// ProductKeywordMin product keywords turn a text run into a blurb.
	ProductKeywordMin int `json:"product_keyword_min" yaml:"product_keyword_min"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.BandTop <= 0 {
		c.BandTop = 500
	}
	if c.BandBottom <= 0 {
		c.BandBottom = 1800
	}
	if c.WidthRatioMin == 0 {
		c.WidthRatioMin = 0.60
	}
	if c.WidthRatioMax == 0 {
		c.WidthRatioMax = 0.98
	}
	if c.HeightMin <= 0 {
		c.HeightMin = 100
	}
	if c.HeightMax <= 0 {
		c.HeightMax = 450
	}
	if c.NameLenMin <= 0 {
		c.NameLenMin = 4
	}
	if c.NameLenMax <= 0 {
		c.NameLenMax = 20
	}
	if c.NameTopRatio == 0 {
		c.NameTopRatio = 0.4
	}
	if c.TapXMinRatio == 0 {
		c.TapXMinRatio = 0.10
	}
	if c.TapXMaxRatio == 0 {
		c.TapXMaxRatio = 0.60
	}
	if c.TapYMinRatio == 0 {
		c.TapYMinRatio = 0.30
	}
	if c.TapYMaxRatio == 0 {
		c.TapYMaxRatio = 0.70
	}
	if len(c.AdKeywords) == 0 {
		c.AdKeywords = match.DefaultAdKeywords
	}
	if len(c.ExcludedKeywords) == 0 {
		c.ExcludedKeywords = match.DefaultExcludedKeywords
	}
	if len(c.TagKeywords) == 0 {
		c.TagKeywords = match.DefaultTagKeywords
	}
	if len(c.ProductKeywords) == 0 {
		c.ProductKeywords = match.DefaultProductKeywords
	}
	if c.ProductKeywordMin <= 0 {
		c.ProductKeywordMin = 3
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Locate runs both strategies against the tree, validates every
// proposal, and returns the merged, deduplicated candidates in
// top-to-bottom reading order. An empty result is not an error.
func Locate(root *snapshot.ViewNode, screen snapshot.ScreenContext, cfg Config) []Candidate {
	cfg.defaults()
	if root == nil {
		return nil
	}

	var accepted []Candidate
	propose := func(n *snapshot.ViewNode, strat Strategy) {
		c, stage := validate(n, screen, strat, cfg)
		if stage != "" {
			cfg.Logger.Debug("card rejected",
				"strategy", strat, "stage", stage, "bounds", n.Bounds.String())
			return
		}
		accepted = append(accepted, c)
	}

	if container := match.FindListContainer(root); container != nil {
		for _, child := range container.Children {
			propose(child, FromContainer)
		}
	}
	root.Walk(func(n *snapshot.ViewNode) bool {
		if n.ContentDesc != "" {
			propose(n, FromDescriptor)
		}
		return true
	})

	out := Dedup(accepted)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Bounds.Y1 != out[j].Bounds.Y1 {
			return out[i].Bounds.Y1 < out[j].Bounds.Y1
		}
		return out[i].Bounds.X1 < out[j].Bounds.X1
	})
	for i := range out {
		out[i].Index = i
	}

	cfg.Logger.Debug("cards located", "proposed", len(accepted), "kept", len(out))
	return out
}

// validate runs the per-candidate pipeline, cheap geometry first.
// It returns the rejecting stage name, or "" with a filled Candidate.
func validate(n *snapshot.ViewNode, screen snapshot.ScreenContext, strat Strategy, cfg Config) (Candidate, string) {
	b := n.Bounds
	if !match.InVerticalBand(b, cfg.BandTop, cfg.BandBottom) {
		return Candidate{}, "vertical_band"
	}
	if r := match.WidthRatio(b, screen); r < cfg.WidthRatioMin || r > cfg.WidthRatioMax {
		return Candidate{}, "width"
	}
	if h := b.Height(); h < cfg.HeightMin || h > cfg.HeightMax {
		return Candidate{}, "height"
	}
	name, ok := extractName(n, strat, cfg)
	if !ok {
		return Candidate{}, "name"
	}
	if isAd(n, name, cfg) {
		return Candidate{}, "ads"
	}

	return Candidate{
		Name:       name,
		Bounds:     b,
		TapPoint:   tapPoint(b, cfg),
		Confidence: confidence(b, screen, name),
		Strategy:   strat,
	}, ""
}

// tapPoint is the center of the card rectangle restricted to the
// configured safe zone.
func tapPoint(b snapshot.Rect, cfg Config) Point {
	w := float64(b.Width())
	h := float64(b.Height())
	return Point{
		X: b.X1 + int(w*(cfg.TapXMinRatio+cfg.TapXMaxRatio)/2),
		Y: b.Y1 + int(h*(cfg.TapYMinRatio+cfg.TapYMaxRatio)/2),
	}
}
