package persistence

import "strings"

// sortColumns whitelists the columns a list query may order by. Anything
// outside the list falls back, so user input never reaches ORDER BY as-is.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

func (s sortColumns) column(field string) string {
	field = strings.TrimSpace(field)
	if _, ok := s.allowed[field]; ok {
		return field
	}
	return s.fallback
}

// clause builds "column DIR", with an explicit id tiebreak so pages are stable
func (s sortColumns) clause(field, dir string) string {
	col := s.column(field)
	d := sortDirection(dir)
	if col == "id" {
		return col + " " + d
	}
	return col + " " + d + ", id " + d
}

// sortDirection accepts asc or desc in any case and defaults to DESC
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

var (
	vendorSort = newSortColumns("display_name",
		"id", "created_at", "updated_at", "normalized_key", "total_products", "total_variants")

	syncJobSort = newSortColumns("started_at",
		"id", "created_at", "updated_at", "completed_at", "status")
)
