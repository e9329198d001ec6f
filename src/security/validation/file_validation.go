package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/username/partsviewer/backend/src/logger"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// allowedClientContentTypes lists, per extension, what browsers and OSes
// declare for that kind of file. Browsers often fall back to octet-stream.
var allowedClientContentTypes = map[string]map[string]bool{
	".csv": {
		"text/csv":                 true,
		"application/csv":          true,
		"application/vnd.ms-excel": true,
		"text/plain":               true,
		"application/octet-stream": true,
	},
	".xlsx": {
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
		"application/zip":          true,
		"application/octet-stream": true,
	},
	".xls": {
		"application/vnd.ms-excel":  true,
		"application/x-ole-storage": true,
		"application/msexcel":       true,
		"application/octet-stream":  true,
	},
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ValidateClientContentType checks the Content-Type header the client sent
// for the file part against the file's extension.
func ValidateClientContentType(filename, contentType string) error {
	allowed, ok := allowedClientContentTypes[extension(filename)]
	if !ok {
		return fmt.Errorf("file extension of '%s' is not supported", filename)
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" {
		return nil
	}
	if !allowed[ct] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType, "filename", filename)
		return fmt.Errorf("client-declared file type '%s' is not allowed for '%s'", contentType, filename)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the leading bytes of file against
// its extension and rewinds file for the parser.
func ValidateFileContentByMagicBytes(filename string, file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}
	head := buffer[:n]

	detected := strings.ToLower(strings.Split(http.DetectContentType(head), ";")[0])
	switch extension(filename) {
	case ".xlsx":
		if !bytes.HasPrefix(head, zipMagic) {
			return detected, fmt.Errorf("file content of '%s' is not an xlsx workbook", filename)
		}
	case ".xls":
		if !bytes.HasPrefix(head, oleMagic) {
			return detected, fmt.Errorf("file content of '%s' is not an xls workbook", filename)
		}
	case ".csv":
		// Any text is acceptable. Binary signatures are not.
		if bytes.HasPrefix(head, zipMagic) || bytes.HasPrefix(head, oleMagic) || bytes.IndexByte(head, 0) >= 0 {
			logger.L.Warn("Binary content uploaded as CSV", "detectedContentType", detected, "filename", filename)
			return detected, fmt.Errorf("detected file content type '%s' is not consistent with a CSV file", detected)
		}
	default:
		return detected, fmt.Errorf("file extension of '%s' is not supported", filename)
	}

	logger.L.Debug("File content type (magic bytes) validated", "detectedContentType", detected, "filename", filename)
	return detected, nil
}
