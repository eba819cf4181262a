package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8BOM is stripped from the start of sheets exported by spreadsheet tools
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads a sheet whose first row is the header
type CSVParser struct {
	delimiter        rune
	lowercaseHeaders bool
	required         []string
	headers          []string
	headerMap        map[string]int
	line             int
	reader           *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLowercaseHeaders folds header names to lower case, so "SKU" and "sku" map alike
func WithLowercaseHeaders() ParserOption {
	return func(p *CSVParser) {
		p.lowercaseHeaders = true
	}
}

// WithRequiredHeaders makes NewCSVParser fail if any of the columns is missing
func WithRequiredHeaders(headers ...string) ParserOption {
	return func(p *CSVParser) {
		p.required = append(p.required, headers...)
	}
}

// NewCSVParser creates a parser and reads the header row
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter: ',',
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	if err := checkUTF8(br); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(br)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1

	if err := p.readHeader(); err != nil {
		return nil, err
	}
	if missing := p.MissingHeaders(p.required); len(missing) > 0 {
		return nil, &MissingHeadersError{Headers: missing}
	}

	return p, nil
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return nil
}

// checkUTF8 validates the first block of the file. A multi-byte rune cut at
// the block boundary is not an encoding error.
func checkUTF8(br *bufio.Reader) error {
	const sniffLen = 4096
	content, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if len(content) == sniffLen {
		content = trimPartialRune(content)
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}

func (p *CSVParser) readHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, 0, len(record))
	for i, raw := range record {
		h := strings.TrimSpace(raw)
		if p.lowercaseHeaders {
			h = strings.ToLower(h)
		}
		p.headers = append(p.headers, h)
		if _, dup := p.headerMap[h]; !dup && h != "" {
			p.headerMap[h] = i
		}
	}
	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}

	p.line = 1
	return nil
}

// Headers returns the parsed header names in column order
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// MissingHeaders returns the entries of required the sheet lacks
func (p *CSVParser) MissingHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row keyed by header. Line is the sheet row number; the
// header is line 1.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of a column, "" if absent
func (r *Row) Get(header string) string {
	return r.Values[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row; it returns io.EOF at the end of the sheet
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, &RowError{Row: p.line, Message: err.Error()}
	}

	row := &Row{
		Line:   p.line,
		Values: make(map[string]string, len(p.headerMap)),
	}
	for h, i := range p.headerMap {
		if i < len(record) {
			row.Values[h] = strings.TrimSpace(record[i])
		} else {
			row.Values[h] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining rows, skipping blank ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// Records returns the rows as plain maps
func Records(rows []*Row) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Values)
	}
	return out
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteCSV writes a header row followed by rows
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecords writes maps in header column order; missing keys become empty cells
func WriteRecords(w io.Writer, header []string, records []map[string]string) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = rec[h]
		}
		rows = append(rows, row)
	}
	return WriteCSV(w, header, rows)
}
