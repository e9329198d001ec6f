package models

// Sheet is a fully materialized upload: the header labels in column order and
// one map per data row keyed by those labels.
type Sheet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Row holds one data row's cells keyed by header label. Missing cells are absent.
type Row map[string]string

// Cell returns the cell under header and whether the row has it.
func (r Row) Cell(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	v, ok := r[header]
	return v, ok
}
