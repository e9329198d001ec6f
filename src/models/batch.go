package models

// RowError reports why the row at Index (position in the submitted batch)
// was skipped.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BatchResult summarizes one bulk import. Inserted+Updated+Skipped always
// equals the number of submitted rows.
type BatchResult struct {
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`

	// PriceChanges lists the updates that changed a price; not part of the
	// API response.
	PriceChanges []PriceChange `json:"-"`
}

type PriceChange struct {
	PartID   string
	PartName string
	Before   float64
	After    float64
}

func (r *BatchResult) Skip(index int, message string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Index: index, Message: message})
}
