package excel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSheetCapsColumns(t *testing.T) {
	header := make([]string, 30)
	data := make([]string, 30)
	for i := range header {
		header[i] = "h"
		data[i] = "v"
	}
	sheet, err := BuildSheet("Sheet1", [][]string{header, data})
	require.NoError(t, err)
	require.Len(t, sheet.Headers, MaxColumns)
	require.Equal(t, "Z열: h", sheet.Headers[25])
}

func TestBuildSheetPadsShortRows(t *testing.T) {
	sheet, err := BuildSheet("Sheet1", [][]string{{"a", "b"}, {"1"}})
	require.NoError(t, err)
	v, ok := sheet.Rows[0].Cell("B열: b")
	require.True(t, ok)
	require.Empty(t, v)
}

func TestBuildSheetNoData(t *testing.T) {
	_, err := BuildSheet("Sheet1", [][]string{{"a"}})
	require.ErrorIs(t, err, ErrNoData)

	_, err = BuildSheet("Sheet1", [][]string{{"a"}, {" "}})
	require.ErrorIs(t, err, ErrNoData)
}
