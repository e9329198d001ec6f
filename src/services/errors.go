package services

import "errors"

var (
	ErrParsingFailed     = errors.New("failed to parse uploaded file")
	ErrUploadNotFound    = errors.New("upload not found or expired")
	ErrIncompleteMapping = errors.New("required columns (partname, vendor, price) must be mapped")
	ErrMalformedBatch    = errors.New("bulk import expects a JSON array of rows")
	ErrInvalidPart       = errors.New("invalid part: partname and vendor are required and price must be a finite number")
	ErrInvalidCategory   = errors.New("invalid category: name is required")
)
