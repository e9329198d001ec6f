package parsers

import (
	"errors"
	"io"

	"github.com/username/partsviewer/backend/src/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: only CSV, XLSX and XLS are accepted")
	ErrParsingFailed     = errors.New("failed to parse uploaded file")
)

// Parser reads an entire upload into memory. Callers get either a complete
// sheet or an error; there is no partial result.
type Parser interface {
	Parse(file io.Reader) (*models.Sheet, error)
}
