package snapshot

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is returned when input cannot be parsed into a tree at
// all. Per-node anomalies (bad bounds, missing attributes) are
// tolerated and never produce this error.
var ErrMalformed = errors.New("snapshot: malformed dump")

var boundsRe = regexp.MustCompile(`^\[(\d+),(\d+)\]\[(\d+),(\d+)\]$`)

type xmlNode struct {
	Text        string    `xml:"text,attr"`
	ResourceID  string    `xml:"resource-id,attr"`
	Class       string    `xml:"class,attr"`
	ContentDesc string    `xml:"content-desc,attr"`
	Clickable   bool      `xml:"clickable,attr"`
	Scrollable  bool      `xml:"scrollable,attr"`
	Bounds      string    `xml:"bounds,attr"`
	Children    []xmlNode `xml:"node"`
}

type xmlHierarchy struct {
	Rotation int       `xml:"rotation,attr"`
	Nodes    []xmlNode `xml:"node"`
}

// Parse decodes a uiautomator XML dump into a Snapshot. Input may be
// wrapped in non-XML noise (the dump-to-stdout path prints a status
// line after the document); everything outside the <hierarchy>
// element is ignored. Screen dimensions are derived from the root
// node bounds and may be overridden by the caller afterwards.
func Parse(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrMalformed, err)
	}
	return ParseBytes(data)
}

// ParseBytes is Parse over an in-memory dump.
func ParseBytes(data []byte) (*Snapshot, error) {
	doc := string(data)
	start := strings.Index(doc, "<hierarchy")
	end := strings.LastIndex(doc, "</hierarchy>")
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("%w: no hierarchy element", ErrMalformed)
	}
	doc = doc[start : end+len("</hierarchy>")]

	var h xmlHierarchy
	if err := xml.Unmarshal([]byte(doc), &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(h.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty hierarchy", ErrMalformed)
	}

	root := convert(&h.Nodes[0])
	snap := &Snapshot{Root: root, Rotation: h.Rotation}
	if !root.Bounds.IsZero() {
		snap.Screen = ScreenContext{Width: root.Bounds.X2, Height: root.Bounds.Y2}
	}
	return snap, nil
}

// ParseFile reads and parses a dump saved to disk.
func ParseFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	return ParseBytes(data)
}

func convert(x *xmlNode) *ViewNode {
	n := &ViewNode{
		Text:        x.Text,
		ResourceID:  x.ResourceID,
		Class:       x.Class,
		ContentDesc: x.ContentDesc,
		Clickable:   x.Clickable,
		Scrollable:  x.Scrollable,
		Bounds:      parseBounds(x.Bounds),
	}
	for i := range x.Children {
		n.Children = append(n.Children, convert(&x.Children[i]))
	}
	return n
}

// parseBounds decodes the "[x1,y1][x2,y2]" attribute form. Anything
// else, including inverted rectangles, yields the zero rectangle so
// the node drops out of ratio-based predicates without failing the
// parse.
func parseBounds(s string) Rect {
	m := boundsRe.FindStringSubmatch(s)
	if m == nil {
		return Rect{}
	}
	x1, _ := strconv.Atoi(m[1])
	y1, _ := strconv.Atoi(m[2])
	x2, _ := strconv.Atoi(m[3])
	y2, _ := strconv.Atoi(m[4])
	if x2 < x1 || y2 < y1 {
		return Rect{}
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}
