package cards

import (
	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// confidence is the multiplicative score of a validated card. Each
// factor is graded against the geometry a genuine card renders with;
// one weak factor suppresses the product instead of averaging away.
// Every grade is positive, so the result stays in (0,1].
func confidence(b snapshot.Rect, screen snapshot.ScreenContext, name string) float64 {
	c := 1.0

	switch y := b.Y1; {
	case y >= 600 && y <= 1500:
		// core band, full trust
	case y >= 500 && y < 600:
		c *= 0.90
	case y > 1500 && y <= 1700:
		c *= 0.95
	default:
		c *= 0.70
	}

	switch r := match.WidthRatio(b, screen); {
	case r >= 0.90 && r <= 0.95:
		// full-width layout
	case (r >= 0.85 && r < 0.90) || (r > 0.95 && r <= 0.98):
		c *= 0.95
	case r >= 0.64 && r <= 0.70:
		c *= 0.90
	case r >= 0.60 && r < 0.64:
		c *= 0.85
	default:
		c *= 0.70
	}

	switch h := b.Height(); {
	case h >= 150 && h <= 250:
		// typical card height
	case (h >= 100 && h < 150) || (h > 250 && h <= 300):
		c *= 0.95
	case h > 300 && h <= 450:
		c *= 0.90
	default:
		c *= 0.80
	}

	switch n := len([]rune(name)); {
	case n >= 4 && n <= 20:
		// typical name length
	case n == 3 || (n > 20 && n <= 30):
		c *= 0.90
	case n > 30:
		c *= 0.70
	default:
		c *= 0.80
	}

	return c
}
