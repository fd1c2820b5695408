// Package connection turns the active paths of a solved plan into connector
// segments between consecutive elements.
package connection

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/dd0wney/cluso-gridplan/pkg/algorithms"
	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
	"github.com/dd0wney/cluso-gridplan/pkg/plan"
)

// Connection joins two consecutive elements of an active path.
type Connection struct {
	From        string
	To          string
	PathID      string
	Terminal    string
	Transformer string // empty when no transformer feeds the terminal
	Geometry    orb.LineString
}

// Result holds the connections and the store annotated with each linked
// terminal's supplying transformer.
type Result struct {
	Connections []Connection
	Store       *network.Store
}

// Reconstruct annotates store with the transformer feeding each linked
// terminal, then emits one connection per consecutive element pair of every
// active path. Path i is identified by incidence.RowLabel(i).
func Reconstruct(store *network.Store, assignment *plan.AssignmentTable, activation *plan.ActivationTable, paths []algorithms.Path) (*Result, error) {
	feeds := assignment.Feeds()
	annotated, err := store.Annotate(feeds)
	if err != nil {
		return nil, fmt.Errorf("annotate terminals: %w", err)
	}

	res := &Result{Store: annotated, Connections: make([]Connection, 0)}
	for i, p := range paths {
		id := incidence.RowLabel(i)
		if !activation.IsActive(id) || p.Len() < 2 {
			continue
		}

		transformer := ""
		if _, linked := feeds[p.Terminal()]; linked {
			term, err := annotated.Lookup(p.Terminal())
			if err != nil {
				return nil, err
			}
			transformer = term.AssignedTerminal
		}

		names := p.Names()
		for k := 1; k < len(names); k++ {
			from, err := annotated.Lookup(names[k-1])
			if err != nil {
				return nil, err
			}
			to, err := annotated.Lookup(names[k])
			if err != nil {
				return nil, err
			}
			res.Connections = append(res.Connections, Connection{
				From:        from.Name,
				To:          to.Name,
				PathID:      id,
				Terminal:    p.Terminal(),
				Transformer: transformer,
				Geometry:    geometry.Connector(from.Geometry, to.Geometry),
			})
		}
	}
	return res, nil
}

// Expected returns the number of connections Reconstruct emits for the
// active paths: the sum of each path's length minus one.
func Expected(activation *plan.ActivationTable, paths []algorithms.Path) int {
	n := 0
	for i, p := range paths {
		if activation.IsActive(incidence.RowLabel(i)) && p.Len() > 1 {
			n += p.Len() - 1
		}
	}
	return n
}
