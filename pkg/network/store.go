// Package network holds the in-memory table of distribution network elements.
package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
)

// Store is an immutable table of elements keyed by name. Elements keep their
// input order; Columns gives the role-grouped order used for incidence matrices.
type Store struct {
	elements []Element
	index    map[string]int
	columns  []string
}

// NewStore validates elements and derives each element's length from its geometry.
func NewStore(elements []Element) (*Store, error) {
	s := &Store{
		elements: make([]Element, 0, len(elements)),
		index:    make(map[string]int, len(elements)),
	}

	for _, e := range elements {
		if !e.Type.Valid() {
			return nil, &ElementError{Op: "NewStore", Element: e.Name, Cause: fmt.Errorf("%w: %q", ErrUnknownType, e.Type)}
		}
		if e.Geometry == nil {
			return nil, &ElementError{Op: "NewStore", Element: e.Name, Cause: ErrMissingGeometry}
		}
		if _, dup := s.index[e.Name]; dup {
			return nil, &ElementError{Op: "NewStore", Element: e.Name, Cause: ErrDuplicateElement}
		}

		e = e.clone()
		e.Length = geometry.Length(e.Geometry)
		s.index[e.Name] = len(s.elements)
		s.elements = append(s.elements, e)
	}

	s.columns = s.orderColumns()
	return s, nil
}

func (s *Store) orderColumns() []string {
	order := make([]int, len(s.elements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.elements[order[a]].Type.rank() < s.elements[order[b]].Type.rank()
	})

	cols := make([]string, len(order))
	for i, idx := range order {
		cols[i] = s.elements[idx].Name
	}
	return cols
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// Get returns the element with the given name.
func (s *Store) Get(name string) (Element, bool) {
	idx, ok := s.index[name]
	if !ok {
		return Element{}, false
	}
	return s.elements[idx], true
}

// Lookup is Get with an ErrElementNotFound error for missing names.
func (s *Store) Lookup(name string) (Element, error) {
	e, ok := s.Get(name)
	if !ok {
		return Element{}, &ElementError{Op: "Lookup", Element: name, Cause: ErrElementNotFound}
	}
	return e, nil
}

// All returns every element in input order.
func (s *Store) All() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// OfType returns the elements whose type is one of types, in input order.
func (s *Store) OfType(types ...ElementType) []Element {
	want := make(map[ElementType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	out := make([]Element, 0)
	for _, e := range s.elements {
		if want[e.Type] {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the names of all elements of type t, in input order.
func (s *Store) Names(t ElementType) []string {
	elems := s.OfType(t)
	names := make([]string, len(elems))
	for i, e := range elems {
		names[i] = e.Name
	}
	return names
}

// Columns returns element names grouped customers, terminals, lines,
// transformers, keeping input order within each group.
func (s *Store) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Feeder resolves the transformer able to supply a terminal. A terminal whose
// AssignedTerminal names a transformer is fed by it; otherwise the nearest
// transformer within maxDistance is used (0 means no limit). Ties go to the
// transformer listed first.
func (s *Store) Feeder(terminal string, maxDistance float64) (string, bool) {
	term, ok := s.Get(terminal)
	if !ok || term.Type != Terminal {
		return "", false
	}

	if designated, ok := s.Get(term.AssignedTerminal); ok && designated.Type == Transformer {
		return designated.Name, true
	}

	best := ""
	bestDist := math.Inf(1)
	for _, e := range s.elements {
		if e.Type != Transformer {
			continue
		}
		d := geometry.Distance(term.Geometry, e.Geometry)
		if maxDistance > 0 && d > maxDistance {
			continue
		}
		if d < bestDist {
			best, bestDist = e.Name, d
		}
	}
	return best, best != ""
}

// Annotate returns a derived store in which every terminal named in
// supply has its AssignedTerminal set to the transformer feeding it.
// The receiver is left unchanged.
func (s *Store) Annotate(supply map[string]string) (*Store, error) {
	derived := &Store{
		elements: make([]Element, len(s.elements)),
		index:    s.index,
		columns:  s.columns,
	}
	for i, e := range s.elements {
		derived.elements[i] = e.clone()
	}

	for terminal, transformer := range supply {
		idx, ok := s.index[terminal]
		if !ok {
			return nil, &ElementError{Op: "Annotate", Element: terminal, Cause: ErrElementNotFound}
		}
		if s.elements[idx].Type != Terminal {
			return nil, &ElementError{Op: "Annotate", Element: terminal, Cause: ErrNotTerminal}
		}
		t, ok := s.Get(transformer)
		if !ok {
			return nil, &ElementError{Op: "Annotate", Element: transformer, Cause: ErrElementNotFound}
		}
		if t.Type != Transformer {
			return nil, &ElementError{Op: "Annotate", Element: transformer, Cause: ErrNotTransformer}
		}
		derived.elements[idx].AssignedTerminal = transformer
	}
	return derived, nil
}
