// Package incidence encodes discovered paths as a binary path-by-element
// matrix and splits it into customer, terminal and transformer blocks.
package incidence

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dd0wney/cluso-gridplan/pkg/algorithms"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

var (
	ErrColumnOrder    = errors.New("incidence: element columns are not grouped customers, terminals, lines, transformers")
	ErrUnknownElement = errors.New("incidence: path element not in store")
	ErrMalformedRow   = errors.New("incidence: row does not name exactly one customer")
)

// Options tunes matrix construction.
type Options struct {
	// MaxFeederDistance bounds the search for the transformer feeding a
	// path's terminal. 0 means no limit.
	MaxFeederDistance float64
}

// Matrix is the path-incidence matrix H. Row i encodes path i; a cell is 1
// when the element participates in the path. Each row also marks the
// transformer able to feed the path's terminal, if any.
type Matrix struct {
	Rows    []string
	Columns []string
	Values  [][]int

	colIndex map[string]int
}

// RowLabel returns the label of path i: "h1" for the first path.
func RowLabel(i int) string {
	return "h" + strconv.Itoa(i+1)
}

// Build encodes paths over every element of store.
func Build(paths []algorithms.Path, store *network.Store, opts Options) (*Matrix, error) {
	columns := store.Columns()
	if err := checkColumnOrder(columns, store); err != nil {
		return nil, err
	}

	m := &Matrix{
		Rows:     make([]string, len(paths)),
		Columns:  columns,
		Values:   make([][]int, len(paths)),
		colIndex: make(map[string]int, len(columns)),
	}
	for j, name := range columns {
		m.colIndex[name] = j
	}

	for i, p := range paths {
		m.Rows[i] = RowLabel(i)
		row := make([]int, len(columns))
		for _, name := range p.Names() {
			j, ok := m.colIndex[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s in path %s", ErrUnknownElement, name, m.Rows[i])
			}
			row[j] = 1
		}
		if feeder, ok := store.Feeder(p.Terminal(), opts.MaxFeederDistance); ok {
			row[m.colIndex[feeder]] = 1
		}
		m.Values[i] = row
	}
	return m, nil
}

func checkColumnOrder(columns []string, store *network.Store) error {
	order := map[network.ElementType]int{
		network.Customer:    0,
		network.Terminal:    1,
		network.Line:        2,
		network.Transformer: 3,
	}
	last := 0
	for _, name := range columns {
		e, ok := store.Get(name)
		if !ok {
			return fmt.Errorf("%w: column %s", ErrUnknownElement, name)
		}
		rank := order[e.Type]
		if rank < last {
			return fmt.Errorf("%w: %s (%s) follows a later group", ErrColumnOrder, name, e.Type)
		}
		last = rank
	}
	return nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	return len(m.Rows), len(m.Columns)
}

// Column returns the index of the named element column.
func (m *Matrix) Column(name string) (int, bool) {
	j, ok := m.colIndex[name]
	return j, ok
}

// At returns the cell for row i and the named element.
func (m *Matrix) At(i int, name string) int {
	j, ok := m.colIndex[name]
	if !ok || i < 0 || i >= len(m.Values) {
		return 0
	}
	return m.Values[i][j]
}
