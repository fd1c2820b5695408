package incidence

import (
	"fmt"

	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

// Block is a column subset of H sharing H's rows.
type Block struct {
	Columns []string
	Values  [][]int
}

// RowSum returns the number of ones in row i.
func (b Block) RowSum(i int) int {
	sum := 0
	for _, v := range b.Values[i] {
		sum += v
	}
	return sum
}

// ColumnOf returns the first column set in row i.
func (b Block) ColumnOf(i int) (string, bool) {
	for j, v := range b.Values[i] {
		if v == 1 {
			return b.Columns[j], true
		}
	}
	return "", false
}

// Blocks holds the customer (Hc), terminal (Hr) and transformer (Ht) blocks.
type Blocks struct {
	Rows         []string
	Customers    Block
	Terminals    Block
	Transformers Block
}

// Partition splits m by each column's element role. Line columns are dropped.
// Every row must mark exactly one customer.
func Partition(m *Matrix, store *network.Store) (*Blocks, error) {
	b := &Blocks{Rows: m.Rows}

	var cIdx, rIdx, tIdx []int
	for j, name := range m.Columns {
		e, ok := store.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: column %s", ErrUnknownElement, name)
		}
		switch e.Type {
		case network.Customer:
			cIdx = append(cIdx, j)
			b.Customers.Columns = append(b.Customers.Columns, name)
		case network.Terminal:
			rIdx = append(rIdx, j)
			b.Terminals.Columns = append(b.Terminals.Columns, name)
		case network.Transformer:
			tIdx = append(tIdx, j)
			b.Transformers.Columns = append(b.Transformers.Columns, name)
		}
	}

	b.Customers.Values = slice(m.Values, cIdx)
	b.Terminals.Values = slice(m.Values, rIdx)
	b.Transformers.Values = slice(m.Values, tIdx)

	for i := range m.Rows {
		if b.Customers.RowSum(i) != 1 {
			return nil, fmt.Errorf("%w: %s marks %d customers", ErrMalformedRow, m.Rows[i], b.Customers.RowSum(i))
		}
	}
	return b, nil
}

func slice(values [][]int, cols []int) [][]int {
	out := make([][]int, len(values))
	for i, row := range values {
		out[i] = make([]int, len(cols))
		for k, j := range cols {
			out[i][k] = row[j]
		}
	}
	return out
}

// CustomerOf returns the customer whose path produced row i.
func (b *Blocks) CustomerOf(i int) (string, bool) {
	if i < 0 || i >= len(b.Rows) {
		return "", false
	}
	return b.Customers.ColumnOf(i)
}

// FeederOf returns the transformer marked in row i, if any.
func (b *Blocks) FeederOf(i int) (string, bool) {
	if i < 0 || i >= len(b.Rows) {
		return "", false
	}
	return b.Transformers.ColumnOf(i)
}
