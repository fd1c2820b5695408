package network

import (
	"errors"
	"fmt"
)

var (
	ErrElementNotFound  = errors.New("network: element not found")
	ErrDuplicateElement = errors.New("network: duplicate element name")
	ErrUnknownType      = errors.New("network: unknown element type")
	ErrMissingGeometry  = errors.New("network: element has no geometry")
	ErrNotTransformer   = errors.New("network: element is not a transformer")
	ErrNotTerminal      = errors.New("network: element is not a terminal")
	ErrInvalidRecord    = errors.New("network: invalid element record")
)

// ElementError records which element an operation failed on.
type ElementError struct {
	Op      string // e.g. "NewStore", "LoadCSV", "Annotate"
	Element string // element name, if known
	Row     int    // 1-based input row, 0 when not loading
	Cause   error
}

func (e *ElementError) Error() string {
	switch {
	case e.Row > 0 && e.Element != "":
		return fmt.Sprintf("%s row %d (element %s): %v", e.Op, e.Row, e.Element, e.Cause)
	case e.Row > 0:
		return fmt.Sprintf("%s row %d: %v", e.Op, e.Row, e.Cause)
	case e.Element != "":
		return fmt.Sprintf("%s element %s: %v", e.Op, e.Element, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
}

func (e *ElementError) Unwrap() error {
	return e.Cause
}
