package processors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/username/partsviewer/backend/src/models"
)

var testMapping = models.ColumnMapping{PartName: "name", Vendor: "vendor", Price: "price", SAPCode: "sap", Category: "cat"}

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name string
		row  models.MappedRow
		want []string
	}{
		{
			name: "valid",
			row:  models.MappedRow{PartName: "R1", Vendor: "AJA", Price: "$5", SAPCode: "S-1", HasSAP: true},
			want: []string{},
		},
		{
			name: "all errors accumulate in order",
			row:  models.MappedRow{PartName: "  ", Vendor: "", Price: "n/a", SAPCode: "   ", HasSAP: true},
			want: []string{ErrMsgPartNameMissing, ErrMsgVendorMissing, ErrMsgCurrencyUndetectable, ErrMsgSAPCodeBlank},
		},
		{
			name: "empty sap cell is fine",
			row:  models.MappedRow{PartName: "R1", Vendor: "AJA", Price: "50", SAPCode: "", HasSAP: true},
			want: []string{},
		},
		{
			name: "absent sap cell is fine",
			row:  models.MappedRow{PartName: "R1", Vendor: "AJA", Price: "50"},
			want: []string{},
		},
		{
			name: "conflicting currency markers",
			row:  models.MappedRow{PartName: "R1", Vendor: "AJA", Price: "$5 원"},
			want: []string{ErrMsgCurrencyUndetectable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRow(tt.row, testMapping)
			require.Equal(t, tt.want, got.Errors)
			require.Equal(t, len(tt.want) == 0, got.Valid)
		})
	}
}

func TestValidateRowIgnoresUnmappedSAP(t *testing.T) {
	mapping := testMapping
	mapping.SAPCode = ""
	got := ValidateRow(models.MappedRow{PartName: "R1", Vendor: "AJA", Price: "5", SAPCode: "  ", HasSAP: true}, mapping)
	require.True(t, got.Valid)
}

func TestDuplicateTracker(t *testing.T) {
	sap := " S-1 "
	require.Equal(t, "R1|S-1", DedupKey(" R1", &sap))
	require.Equal(t, "R1|", DedupKey("R1", nil))

	d := NewDuplicateTracker()
	require.True(t, d.Claim("R1|"))
	require.False(t, d.Claim("R1|"))
	require.True(t, d.Claim("R1|S-1"))
}
