package match

import (
	"strings"

	"github.com/hazyhaar/mapsieve/snapshot"
)

var listClasses = []string{"RecyclerView", "ListView", "GridView"}

// FindListContainer returns the first list-like container in the tree:
// a known list widget class, or any scrollable node holding at least
// three clickable groups.
func FindListContainer(root *snapshot.ViewNode) *snapshot.ViewNode {
	var found *snapshot.ViewNode
	root.Walk(func(n *snapshot.ViewNode) bool {
		if found != nil {
			return false
		}
		for _, cls := range listClasses {
			if strings.Contains(n.Class, cls) {
				found = n
				return false
			}
		}
		if n.Scrollable && len(ClickableGroups(n)) >= 3 {
			found = n
			return false
		}
		return true
	})
	return found
}

// ClickableGroups collects the clickable group nodes under container
// without descending into a matched group, so nested wrappers are not
// double-counted.
func ClickableGroups(container *snapshot.ViewNode) []*snapshot.ViewNode {
	var groups []*snapshot.ViewNode
	for _, c := range container.Children {
		c.Walk(func(n *snapshot.ViewNode) bool {
			if n.Clickable && IsGroupClass(n.Class) {
				groups = append(groups, n)
				return false
			}
			return true
		})
	}
	return groups
}

// IsGroupClass reports a container widget class (ViewGroup or any of
// the *Layout family).
func IsGroupClass(class string) bool {
	return strings.Contains(class, "ViewGroup") || strings.Contains(class, "Layout")
}
