package algorithms

import (
	"strings"

	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

// PathElement is a snapshot of one element on a path.
type PathElement struct {
	Name   string
	Type   network.ElementType
	Length float64
}

// Path is an ordered element sequence from a customer to its terminal.
// Paths are immutable once produced.
type Path struct {
	elements []PathElement
}

// NewPath builds a path from element snapshots, first to last.
func NewPath(elements ...PathElement) Path {
	out := make([]PathElement, len(elements))
	copy(out, elements)
	return Path{elements: out}
}

// Len returns the number of elements on the path.
func (p Path) Len() int {
	return len(p.elements)
}

// Elements returns a copy of the path's elements.
func (p Path) Elements() []PathElement {
	out := make([]PathElement, len(p.elements))
	copy(out, p.elements)
	return out
}

// Names returns the element names in path order.
func (p Path) Names() []string {
	names := make([]string, len(p.elements))
	for i, e := range p.elements {
		names[i] = e.Name
	}
	return names
}

// Length is the summed length of every element on the path.
func (p Path) Length() float64 {
	total := 0.0
	for _, e := range p.elements {
		total += e.Length
	}
	return total
}

// Customer returns the name of the first element.
func (p Path) Customer() string {
	if len(p.elements) == 0 {
		return ""
	}
	return p.elements[0].Name
}

// Terminal returns the name of the last element.
func (p Path) Terminal() string {
	if len(p.elements) == 0 {
		return ""
	}
	return p.elements[len(p.elements)-1].Name
}

// Equal reports whether both paths visit the same element names in the same order.
func (p Path) Equal(other Path) bool {
	if len(p.elements) != len(other.elements) {
		return false
	}
	for i := range p.elements {
		if p.elements[i].Name != other.elements[i].Name {
			return false
		}
	}
	return true
}

// String formats the path as "c1, l4, r1".
func (p Path) String() string {
	return strings.Join(p.Names(), ", ")
}

func containsPath(paths []Path, p Path) bool {
	for _, existing := range paths {
		if existing.Equal(p) {
			return true
		}
	}
	return false
}
