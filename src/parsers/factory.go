package parsers

import (
	"path/filepath"
	"strings"

	"github.com/username/partsviewer/backend/src/parsers/delimited"
	"github.com/username/partsviewer/backend/src/parsers/excel"
)

// GetParser picks a parser from the upload's file extension.
func GetParser(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return delimited.NewParser(), nil
	case ".xlsx":
		return excel.NewXLSXParser(), nil
	case ".xls":
		return excel.NewXLSParser(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
