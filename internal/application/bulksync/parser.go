package bulksync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
)

const (
	initialLineBuffer = 64 * 1024
	// MaxLineSize bounds one JSONL record; product lines with many metafields stay far below it
	MaxLineSize = 16 * 1024 * 1024
)

// ErrMalformedExport is returned for input that no retry can parse
var ErrMalformedExport = errors.New("bulk result is not valid JSONL")

// ParseResult holds the products and variants folded out of a bulk export
type ParseResult struct {
	Products []catalog.ExportedProduct
	Variants []catalog.ExportedVariant
	// Lines is the number of non-blank records read
	Lines int
	// Orphans counts children whose parent product was not seen before them
	Orphans int
}

// ProductIndex returns products keyed by id
func (r *ParseResult) ProductIndex() map[string]*catalog.ExportedProduct {
	idx := make(map[string]*catalog.ExportedProduct, len(r.Products))
	for i := range r.Products {
		idx[r.Products[i].ID] = &r.Products[i]
	}
	return idx
}

// record is one line of the export. Fields are raw so that presence of a
// key, even with a null value, decides the record's shape.
type record struct {
	ID        string          `json:"id"`
	ParentID  string          `json:"__parentId"`
	Title     string          `json:"title"`
	Vendor    json.RawMessage `json:"vendor"`
	Namespace json.RawMessage `json:"namespace"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	SKU       json.RawMessage `json:"sku"`
	Metafield *struct {
		Value json.RawMessage `json:"value"`
	} `json:"metafield"`
}

type recordKind int

const (
	kindUnknown recordKind = iota
	kindProduct
	kindMetafield
	kindVariant
)

func (r *record) kind() recordKind {
	switch {
	case len(r.Vendor) > 0:
		return kindProduct
	case len(r.Namespace) > 0:
		return kindMetafield
	case len(r.SKU) > 0:
		return kindVariant
	}
	return kindUnknown
}

// Parse reads a bulk export in one pass. Products start on a line carrying
// vendor; metafield and variant lines attach to the product named by their
// __parentId, which must have appeared earlier in the stream. Children of an
// unknown parent are dropped and counted in Orphans.
func Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), MaxLineSize)

	res := &ParseResult{}
	index := make(map[string]int)
	line := 0

	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedExport, line, err)
		}
		res.Lines++

		switch rec.kind() {
		case kindProduct:
			index[rec.ID] = len(res.Products)
			res.Products = append(res.Products, catalog.ExportedProduct{
				ID:         rec.ID,
				Title:      rec.Title,
				Vendor:     jsonString(rec.Vendor),
				Metafields: make([]catalog.ProductMetafield, 0),
			})

		case kindMetafield:
			i, ok := index[rec.ParentID]
			if !ok {
				res.Orphans++
				continue
			}
			res.Products[i].Metafields = append(res.Products[i].Metafields, catalog.ProductMetafield{
				Namespace: jsonString(rec.Namespace),
				Key:       rec.Key,
				Value:     jsonString(rec.Value),
			})

		case kindVariant:
			i, ok := index[rec.ParentID]
			if !ok {
				res.Orphans++
				continue
			}
			res.Products[i].TotalVariants++

			v := catalog.ExportedVariant{
				ID:        rec.ID,
				SKU:       jsonString(rec.SKU),
				ProductID: rec.ParentID,
			}
			if rec.Metafield != nil && len(rec.Metafield.Value) > 0 && string(rec.Metafield.Value) != "null" {
				v.CostHistory = costHistoryJSON(rec.Metafield.Value)
			}
			res.Variants = append(res.Variants, v)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d exceeds %d bytes", ErrMalformedExport, line+1, MaxLineSize)
		}
		return nil, fmt.Errorf("bulk result read failed after line %d: %w", line, err)
	}

	return res, nil
}

// jsonString returns a JSON string value, "" for null or non-string values
func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// costHistoryJSON unwraps a json metafield value. The export carries it as a
// JSON document encoded in a string.
func costHistoryJSON(raw json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
