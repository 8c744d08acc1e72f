// Package snapshot models a point-in-time hierarchical capture of a
// mobile application screen: the uiautomator-style accessibility tree.
//
// A Snapshot owns its ViewNode tree exclusively. Trees are replaced
// wholesale on each capture; bounding boxes are only meaningful for
// the snapshot they came from.
package snapshot

import (
	"fmt"
	"strings"
)

// Rect is an axis-aligned rectangle in screen coordinates.
// Invariant: X2 >= X1 and Y2 >= Y1. The zero value is the empty
// rectangle at origin, used for nodes with missing or malformed bounds.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns X2-X1.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Area returns Width*Height.
func (r Rect) Area() int { return r.Width() * r.Height() }

// IsZero reports whether the rectangle is the zero value.
func (r Rect) IsZero() bool { return r == Rect{} }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y int) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X1 >= r.X1 && other.Y1 >= r.Y1 && other.X2 <= r.X2 && other.Y2 <= r.Y2
}

// ContainsPoint reports whether (x,y) lies strictly inside r.
func (r Rect) ContainsPoint(x, y int) bool {
	return x > r.X1 && x < r.X2 && y > r.Y1 && y < r.Y2
}

// Intersect returns the overlapping region of r and other, or the zero
// rectangle when they are disjoint.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max(r.X1, other.X1)
	y1 := max(r.Y1, other.Y1)
	x2 := min(r.X2, other.X2)
	y2 := min(r.Y2, other.Y2)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// String renders the rectangle in the uiautomator dump form.
func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.X1, r.Y1, r.X2, r.Y2)
}

// ScreenContext describes the device viewport a snapshot was captured
// on. All ratio-based predicates are relative to it.
type ScreenContext struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ViewNode is one element of the snapshot tree.
type ViewNode struct {
	Text        string      `json:"text,omitempty"`
	ResourceID  string      `json:"resource_id,omitempty"`
	Class       string      `json:"class,omitempty"`
	ContentDesc string      `json:"content_desc,omitempty"`
	Bounds      Rect        `json:"bounds"`
	Clickable   bool        `json:"clickable,omitempty"`
	Scrollable  bool        `json:"scrollable,omitempty"`
	Children    []*ViewNode `json:"children,omitempty"`
}

// Walk visits n and its descendants in pre-order. Returning false from
// fn prunes the subtree below the current node.
func (n *ViewNode) Walk(fn func(*ViewNode) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// CollectText concatenates all non-empty node text in the subtree,
// space-joined in pre-order, truncated to limit runes. limit <= 0
// means unbounded.
func (n *ViewNode) CollectText(limit int) string {
	var b strings.Builder
	n.Walk(func(v *ViewNode) bool {
		if t := strings.TrimSpace(v.Text); t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
		return true
	})
	s := b.String()
	if limit > 0 {
		if r := []rune(s); len(r) > limit {
			return string(r[:limit])
		}
	}
	return s
}

// Snapshot is a parsed hierarchy dump. Screen is derived from the root
// node bounds when the device size is not supplied separately.
type Snapshot struct {
	Root     *ViewNode     `json:"root"`
	Screen   ScreenContext `json:"screen"`
	Rotation int           `json:"rotation,omitempty"`
}
