// Package detail extracts a field-level listing record from a detail
// screen. Field matchers run independently over the whole tree and
// absence is always representable; only the caller decides whether a
// partial record is worth keeping.
package detail

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// Record is the extraction result. Zero-valued fields mean "absent";
// RawText keeps a bounded excerpt of everything seen for auditing.
type Record struct {
	Name    string   `json:"name,omitempty"`
	Phones  []string `json:"phones,omitempty"`
	Address string   `json:"address,omitempty"`
	Hours   string   `json:"hours,omitempty"`
	Rating  float64  `json:"rating,omitempty"`
	RawText string   `json:"raw_text,omitempty"`
}

// Usable reports whether the record carries enough to store: at least
// one phone and an address of at least ten runes. Anything less is
// still returned, just flagged this way.
func (r Record) Usable() bool {
	return len(r.Phones) > 0 && len([]rune(r.Address)) >= 10
}

// Config carries the extractor thresholds. Zero values fall back to
// the tuned defaults.
type Config struct {
	// RawTextLimit bounds the audit excerpt, in runes.
	RawTextLimit int `json:"raw_text_limit" yaml:"raw_text_limit"`

	// Name candidates must start inside [NameBandTop, NameBandBottom].
	// A negative NameBandTop disables the floor; the absolute top-band
	// veto still applies.
	NameBandTop    int `json:"name_band_top" yaml:"name_band_top"`
	NameBandBottom int `json:"name_band_bottom" yaml:"name_band_bottom"`

	// ExcludedKeywords are chrome labels vetoed as names.
	ExcludedKeywords []string `json:"excluded_keywords" yaml:"excluded_keywords"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.RawTextLimit <= 0 {
		c.RawTextLimit = 2000
	}
	if c.NameBandTop == 0 {
		c.NameBandTop = 200
	}
	if c.NameBandBottom <= 0 {
		c.NameBandBottom = 1200
	}
	if len(c.ExcludedKeywords) == 0 {
		// Detail pages add their own chrome (call and navigate buttons,
		// section headers) on top of the shared navigation labels.
		c.ExcludedKeywords = append(append([]string{}, match.DefaultExcludedKeywords...),
			match.DefaultDetailKeywords...)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extract pulls every recognizable field out of a detail screen. Field
// matchers are order-insensitive; a screen with nothing recognizable
// yields a zero record, not an error.
func Extract(root *snapshot.ViewNode, screen snapshot.ScreenContext, cfg Config) Record {
	cfg.defaults()

	var rec Record
	if root == nil {
		return rec
	}
	rec.RawText = root.CollectText(cfg.RawTextLimit)
	rec.Phones = collectPhones(root)
	rec.Address = findAddress(root, screen)
	rec.Name = resolveName(root, cfg)

	root.Walk(func(n *snapshot.ViewNode) bool {
		if rec.Hours == "" {
			if h, ok := match.ExtractTimeRange(n.Text); ok {
				rec.Hours = h
			}
		}
		if rec.Rating == 0 {
			if v, ok := match.ExtractRating(n.Text); ok {
				rec.Rating = v
			}
		}
		return true
	})

	cfg.Logger.Debug("detail extracted",
		"name", rec.Name,
		"phones", len(rec.Phones),
		"has_address", rec.Address != "",
		"usable", rec.Usable())
	return rec
}

// collectPhones gathers phone numbers from three channels: plain
// pattern matches, digit runs inside font markup, and nodes whose
// resource id names a phone field.
func collectPhones(root *snapshot.ViewNode) []string {
	set := make(map[string]bool)
	add := func(p string) { set[p] = true }

	root.Walk(func(n *snapshot.ViewNode) bool {
		for _, blob := range [2]string{n.Text, n.ContentDesc} {
			if blob == "" {
				continue
			}
			for _, p := range match.ExtractPhones(blob) {
				add(p)
			}
			for _, span := range match.FontSpans(blob) {
				if p, ok := match.NormalizePhone(span.Text); ok && match.IsPureNumericOrPunct(span.Text) {
					add(p)
				}
			}
		}
		if hasIDHint(n.ResourceID, "phone", "tel", "call") {
			if p, ok := match.NormalizePhone(n.Text); ok && match.IsPureNumericOrPunct(n.Text) {
				add(p)
			}
		}
		return true
	})

	if len(set) == 0 {
		return nil
	}
	phones := make([]string, 0, len(set))
	for p := range set {
		phones = append(phones, p)
	}
	sort.Strings(phones)
	return phones
}

// findAddress prefers the info zone in the upper-middle of the screen,
// where detail layouts render the address row, then falls back to the
// whole tree.
func findAddress(root *snapshot.ViewNode, screen snapshot.ScreenContext) string {
	zoneTop, zoneBottom := 0, 0
	if screen.Height > 0 {
		zoneTop = screen.Height * 35 / 100
		zoneBottom = screen.Height * 55 / 100
	}

	var inZone, anywhere string
	root.Walk(func(n *snapshot.ViewNode) bool {
		t := strings.TrimSpace(match.StripMarkup(n.Text))
		if t == "" || !match.LooksLikeAddress(t) {
			return true
		}
		t = trimAddressLabel(t)
		if anywhere == "" {
			anywhere = t
		}
		if inZone == "" && zoneBottom > 0 && n.Bounds.Y1 >= zoneTop && n.Bounds.Y1 <= zoneBottom {
			inZone = t
		}
		return true
	})
	if inZone != "" {
		return inZone
	}
	return anywhere
}

// trimAddressLabel drops a leading 地址 label and separator.
func trimAddressLabel(t string) string {
	t = strings.TrimPrefix(t, "地址")
	t = strings.TrimLeft(t, ":： ")
	return strings.TrimSpace(t)
}

// hasIDHint reports whether the resource id's local name contains any
// hint, ignoring system widget ids.
func hasIDHint(id string, hints ...string) bool {
	if id == "" || strings.HasPrefix(id, "com.android.systemui:") || strings.HasPrefix(id, "android:id/") {
		return false
	}
	local := id
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		local = id[i+1:]
	}
	local = strings.ToLower(local)
	for _, h := range hints {
		if strings.Contains(local, h) {
			return true
		}
	}
	return false
}
