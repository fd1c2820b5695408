package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-gridplan/pkg/pipeline"
)

// Output file names.
const (
	ConnectionsFile = "connections.csv"
	AssignmentFile  = "assignment.csv"
	ActivationFile  = "activation.csv"
	PathsFile       = "paths.csv"
	SummaryFile     = "summary.json"
	ArchiveFile     = "plan.json.sz"
)

// Writer stores run results as files in Dir. It implements pipeline.Sink.
type Writer struct {
	Dir     string
	Archive bool
}

// NewWriter creates a writer for dir.
func NewWriter(dir string, archive bool) *Writer {
	return &Writer{Dir: dir, Archive: archive}
}

// SaveRun writes every table, the summary and, if enabled, the archive.
func (w *Writer) SaveRun(ctx context.Context, res *pipeline.Result) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ConnectionsFile, func(out io.Writer) error { return WriteConnections(out, res.Connections) }},
		{AssignmentFile, func(out io.Writer) error { return WriteAssignment(out, res.Assignment) }},
		{ActivationFile, func(out io.Writer) error { return WriteActivation(out, res.Activation) }},
		{PathsFile, func(out io.Writer) error { return WritePaths(out, res.Paths, res.Activation) }},
		{SummaryFile, func(out io.Writer) error {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(Summarize(res))
		}},
	}
	if w.Archive {
		files = append(files, struct {
			name  string
			write func(io.Writer) error
		}{ArchiveFile, func(out io.Writer) error { return WriteArchive(out, NewArchive(res)) }})
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeFile(f.name, f.write); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes to a temporary file and renames it into place.
func (w *Writer) writeFile(name string, write func(io.Writer) error) error {
	path := filepath.Join(w.Dir, name)
	tmp, err := os.CreateTemp(w.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

var _ pipeline.Sink = (*Writer)(nil)
