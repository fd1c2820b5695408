package pipeline

import (
	"context"

	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

// Source supplies the element table of a planning run.
type Source interface {
	LoadElements(ctx context.Context) ([]network.Element, error)
}

// Sink receives every completed run, after reconstruction.
type Sink interface {
	SaveRun(ctx context.Context, res *Result) error
}

// CSVSource reads elements from a CSV file.
type CSVSource struct {
	Path string
}

func (s CSVSource) LoadElements(ctx context.Context) ([]network.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return network.LoadCSVFile(s.Path)
}

// StaticSource serves a fixed element slice.
type StaticSource []network.Element

func (s StaticSource) LoadElements(context.Context) ([]network.Element, error) {
	return []network.Element(s), nil
}
