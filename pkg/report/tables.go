// Package report writes the tables and archive of a planning run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-gridplan/pkg/algorithms"
	"github.com/dd0wney/cluso-gridplan/pkg/connection"
	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/plan"
)

// WriteConnections writes one row per connector.
func WriteConnections(w io.Writer, conns []connection.Connection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from_id", "to_id", "path_id", "terminal", "transformer", "wkt"}); err != nil {
		return err
	}
	for _, c := range conns {
		if err := cw.Write([]string{c.From, c.To, c.PathID, c.Terminal, c.Transformer, geometry.WKT(c.Geometry)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAssignment writes the transformer-by-terminal matrix with a label
// column for transformers.
func WriteAssignment(w io.Writer, t *plan.AssignmentTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"transformer"}, t.Cols...)); err != nil {
		return err
	}
	for i, name := range t.Rows {
		if err := cw.Write(append([]string{name}, ints(t.Values[i])...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActivation writes the activation vector as a header of path ids and
// a single row of values.
func WriteActivation(w io.Writer, a *plan.ActivationTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(a.Cols); err != nil {
		return err
	}
	if err := cw.Write(ints(a.Values)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WritePaths lists every candidate path with its activation state.
func WritePaths(w io.Writer, paths []algorithms.Path, a *plan.ActivationTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path_id", "customer", "terminal", "elements", "length", "active"}); err != nil {
		return err
	}
	for i, p := range paths {
		id := incidence.RowLabel(i)
		record := []string{
			id,
			p.Customer(),
			p.Terminal(),
			strings.Join(p.Names(), " "),
			strconv.FormatFloat(p.Length(), 'f', -1, 64),
			strconv.FormatBool(a.IsActive(id)),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write path %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func ints(values []int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}
