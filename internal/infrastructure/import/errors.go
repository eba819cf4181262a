package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyFile is returned when the CSV file is empty
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the file is not UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the CSV file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")
)

// MissingHeadersError lists required columns absent from the header row
type MissingHeadersError struct {
	Headers []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("CSV file missing required columns: %s", strings.Join(e.Headers, ", "))
}

// Is makes errors.Is(err, ErrMissingHeader) match
func (e *MissingHeadersError) Is(target error) bool {
	return target == ErrMissingHeader
}

// RowError is a problem with one sheet row, or one cell when Column is set
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}
