package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/username/partsviewer/backend/src/config"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/models"
	"github.com/username/partsviewer/backend/src/security/validation"
	"github.com/username/partsviewer/backend/src/services"
	"github.com/username/partsviewer/backend/src/utils"
)

type ImportHandler struct {
	imports services.ImportService
	export  services.ExportService
}

func NewImportHandler(imports services.ImportService, export services.ExportService) *ImportHandler {
	return &ImportHandler{imports: imports, export: export}
}

// HandleUpload validates and parses a spreadsheet upload and stages it for
// mapping. Nothing is written to the catalog here.
func (h *ImportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	limit := config.Cfg.MaxUploadSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("Upload too large", "limit", limit)
			utils.SendJSONError(w, fmt.Sprintf("File too large (max %d MB)", limit/(1024*1024)), http.StatusRequestEntityTooLarge)
			return
		}
		log.Warn("Failed to parse multipart form", "error", err)
		utils.SendJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := validation.SanitizeFilename(fileHeader.Filename)
	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(filename, clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	detected, err := validation.ValidateFileContentByMagicBytes(filename, file)
	if err != nil {
		log.Warn("Server-side file content validation failed", "filename", filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("Processing upload request", "filename", filename, "clientType", clientContentType, "detectedType", detected)

	staged, err := h.imports.Stage(filename, file)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, staged)
}

type mappingRequest struct {
	Mapping models.ColumnMapping `json:"mapping"`
}

func decodeMapping(r *http.Request) (models.ColumnMapping, error) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.ColumnMapping{}, err
	}
	return req.Mapping, nil
}

func (h *ImportHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	mapping, err := decodeMapping(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rows, err := h.imports.Preview(r.PathValue("token"), mapping)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, rows)
}

func (h *ImportHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	mapping, err := decodeMapping(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.imports.Commit(r.Context(), r.PathValue("token"), mapping)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	userID, _ := GetUserIDFromContext(r.Context())
	logger.FromContext(r.Context()).Info("Import committed", "userID", userID, "inserted", res.Inserted, "updated", res.Updated, "skipped", res.Skipped)
	utils.SendJSON(w, http.StatusOK, res)
}

// HandleExportXLSX streams the catalog as an attachment.
func (h *ImportHandler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(h.export.Filename())))
	if err := h.export.WriteXLSX(r.Context(), w); err != nil {
		logger.FromContext(r.Context()).Error("Export failed", "error", err)
		w.Header().Del("Content-Disposition")
		sendServiceError(w, r, err)
	}
}

// HandleSaveExport writes the workbook into the server's export directory.
func (h *ImportHandler) HandleSaveExport(w http.ResponseWriter, r *http.Request) {
	path, err := h.export.SaveXLSX(r.Context())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]string{"path": path})
}
