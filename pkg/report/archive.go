package report

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/incidence"
	"github.com/dd0wney/cluso-gridplan/pkg/pipeline"
	"github.com/dd0wney/cluso-gridplan/pkg/plan"
)

var ErrCorruptArchive = errors.New("report: corrupt plan archive")

var archiveMagic = [4]byte{'G', 'P', 'A', '1'}

// Archive is the complete, self-contained record of a run.
type Archive struct {
	Summary     Summary               `json:"summary"`
	Assignment  *plan.AssignmentTable `json:"assignment"`
	Activation  *plan.ActivationTable `json:"activation"`
	Paths       []ArchivedPath        `json:"paths"`
	Connections []ArchivedConnection  `json:"connections"`
}

type ArchivedPath struct {
	ID       string   `json:"id"`
	Elements []string `json:"elements"`
	Length   float64  `json:"length"`
	Active   bool     `json:"active"`
}

type ArchivedConnection struct {
	From        string `json:"from"`
	To          string `json:"to"`
	PathID      string `json:"path_id"`
	Terminal    string `json:"terminal"`
	Transformer string `json:"transformer,omitempty"`
	WKT         string `json:"wkt"`
}

// NewArchive captures res.
func NewArchive(res *pipeline.Result) *Archive {
	a := &Archive{
		Summary:     Summarize(res),
		Assignment:  res.Assignment,
		Activation:  res.Activation,
		Paths:       make([]ArchivedPath, len(res.Paths)),
		Connections: make([]ArchivedConnection, len(res.Connections)),
	}
	for i, p := range res.Paths {
		id := incidence.RowLabel(i)
		a.Paths[i] = ArchivedPath{
			ID:       id,
			Elements: p.Names(),
			Length:   p.Length(),
			Active:   res.Activation != nil && res.Activation.IsActive(id),
		}
	}
	for i, c := range res.Connections {
		a.Connections[i] = ArchivedConnection{
			From:        c.From,
			To:          c.To,
			PathID:      c.PathID,
			Terminal:    c.Terminal,
			Transformer: c.Transformer,
			WKT:         geometry.WKT(c.Geometry),
		}
	}
	return a
}

// WriteArchive writes a as [magic:4][checksum:4][snappy(JSON)]. The
// checksum covers the compressed payload.
func WriteArchive(w io.Writer, a *Archive) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	var header [8]byte
	copy(header[:4], archiveMagic[:])
	binary.BigEndian.PutUint32(header[4:], crc32.ChecksumIEEE(compressed))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

// ReadArchive reads an archive written by WriteArchive.
func ReadArchive(r io.Reader) (*Archive, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < 8 || !bytes.Equal(raw[:4], archiveMagic[:]) {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptArchive)
	}
	compressed := raw[8:]
	if crc32.ChecksumIEEE(compressed) != binary.BigEndian.Uint32(raw[4:8]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptArchive)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return &a, nil
}
