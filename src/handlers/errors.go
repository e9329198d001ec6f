package handlers

import (
	"errors"
	"net/http"

	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/parsers"
	"github.com/username/partsviewer/backend/src/services"
	"github.com/username/partsviewer/backend/src/utils"
)

// sendServiceError maps domain errors to status codes. Anything unknown is
// logged and reported as a 500 without its details.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, services.ErrUploadNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidPart),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrIncompleteMapping),
		errors.Is(err, services.ErrMalformedBatch),
		errors.Is(err, services.ErrParsingFailed),
		errors.Is(err, parsers.ErrUnsupportedFormat):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
