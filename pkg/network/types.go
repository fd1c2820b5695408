package network

import (
	"github.com/paulmach/orb"
)

// ElementType is the role an element plays in the distribution network.
type ElementType string

const (
	Customer    ElementType = "customer"
	Line        ElementType = "line"
	Terminal    ElementType = "terminal"
	Transformer ElementType = "transformer"
)

// Valid reports whether t is one of the four known element types.
func (t ElementType) Valid() bool {
	switch t {
	case Customer, Line, Terminal, Transformer:
		return true
	default:
		return false
	}
}

// rank orders element types as incidence columns: customers, terminals,
// lines, transformers.
func (t ElementType) rank() int {
	switch t {
	case Customer:
		return 0
	case Terminal:
		return 1
	case Line:
		return 2
	case Transformer:
		return 3
	default:
		return 4
	}
}

// Element is one georeferenced network element.
//
// AssignedTerminal holds the customer's designated terminal. For terminals it
// may name the transformer expected to supply them; after a plan is solved the
// annotated store sets it to the supplying transformer.
type Element struct {
	Name             string
	Type             ElementType
	Geometry         orb.Geometry
	Length           float64
	AssignedTerminal string
	// Capacity is the number of terminals a transformer may feed; 0 is unlimited.
	Capacity   int
	Attributes map[string]string
}

// clone copies the element, including its attribute map.
func (e Element) clone() Element {
	if e.Attributes != nil {
		attrs := make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			attrs[k] = v
		}
		e.Attributes = attrs
	}
	return e
}
