package network

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-gridplan/pkg/geometry"
	"github.com/dd0wney/cluso-gridplan/pkg/validation"
)

// Recognised header names. Any other column is kept in Element.Attributes.
var (
	nameColumns     = []string{"name", "id"}
	typeColumns     = []string{"type"}
	geometryColumns = []string{"coor", "geometry", "wkt"}
	terminalColumns = []string{"terminal", "assigned_terminal"}
	capacityColumns = []string{"capacity"}
)

// LoadCSVFile reads an element table from a CSV file.
func LoadCSVFile(path string) ([]Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open element table: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV reads an element table with a header row. Geometry is WKT.
func LoadCSV(r io.Reader) ([]Element, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ElementError{Op: "LoadCSV", Cause: fmt.Errorf("%w: missing header", ErrInvalidRecord)}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	known := make(map[int]bool)
	find := func(names []string) int {
		for _, n := range names {
			if i, ok := colIndex[n]; ok {
				known[i] = true
				return i
			}
		}
		return -1
	}

	nameCol := find(nameColumns)
	typeCol := find(typeColumns)
	geomCol := find(geometryColumns)
	termCol := find(terminalColumns)
	capCol := find(capacityColumns)
	if nameCol < 0 || typeCol < 0 || geomCol < 0 {
		return nil, &ElementError{Op: "LoadCSV", Cause: fmt.Errorf("%w: header needs name, type and geometry columns", ErrInvalidRecord)}
	}

	elements := make([]Element, 0)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ElementError{Op: "LoadCSV", Row: row, Cause: err}
		}

		e, err := parseRecord(record, header, known, nameCol, typeCol, geomCol, termCol, capCol)
		if err != nil {
			return nil, &ElementError{Op: "LoadCSV", Row: row, Element: field(record, nameCol), Cause: err}
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func parseRecord(record, header []string, known map[int]bool, nameCol, typeCol, geomCol, termCol, capCol int) (Element, error) {
	rec := validation.ElementRecord{
		Name:     field(record, nameCol),
		Type:     strings.ToLower(field(record, typeCol)),
		WKT:      field(record, geomCol),
		Terminal: field(record, termCol),
	}
	if raw := field(record, capCol); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return Element{}, fmt.Errorf("%w: capacity %q: %v", ErrInvalidRecord, raw, err)
		}
		rec.Capacity = capacity
	}

	var attrs map[string]string
	for i, col := range header {
		if known[i] || i >= len(record) || record[i] == "" {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[col] = record[i]
	}
	return NewElement(rec, attrs)
}

// NewElement validates rec and parses its geometry.
func NewElement(rec validation.ElementRecord, attrs map[string]string) (Element, error) {
	if err := validation.ValidateElementRecord(&rec); err != nil {
		return Element{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	geom, err := geometry.Parse(rec.WKT)
	if err != nil {
		return Element{}, err
	}

	return Element{
		Name:             rec.Name,
		Type:             ElementType(rec.Type),
		Geometry:         geom,
		AssignedTerminal: rec.Terminal,
		Capacity:         rec.Capacity,
		Attributes:       attrs,
	}, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
