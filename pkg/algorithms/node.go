package algorithms

import (
	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

// node wraps an element for the duration of one search episode.
type node struct {
	parent  *node
	element network.Element
	g, h, f float64
}

func newNode(parent *node, e network.Element, g float64) *node {
	return &node{parent: parent, element: e, g: g}
}

func (n *node) name() string {
	return n.element.Name
}

// is reports whether both nodes wrap the same element. Cost fields are ignored.
func (n *node) is(other *node) bool {
	return n.element.Name == other.element.Name
}

func (n *node) distance(e network.Element) float64 {
	return geometry.Distance(n.element.Geometry, e.Geometry)
}

// trace walks parent links back to the root and returns the path root-first.
func (n *node) trace() Path {
	var rev []PathElement
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, PathElement{
			Name:   cur.element.Name,
			Type:   cur.element.Type,
			Length: cur.element.Length,
		})
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return Path{elements: rev}
}
