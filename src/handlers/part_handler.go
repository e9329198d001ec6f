package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/partsviewer/backend/src/config"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/models"
	"github.com/username/partsviewer/backend/src/services"
	"github.com/username/partsviewer/backend/src/utils"
)

type PartHandler struct {
	catalog services.CatalogService
	imports services.ImportService
}

func NewPartHandler(catalog services.CatalogService, imports services.ImportService) *PartHandler {
	return &PartHandler{catalog: catalog, imports: imports}
}

func (h *PartHandler) HandleListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.catalog.ListParts(r.Context())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, parts)
}

func (h *PartHandler) HandleSearchParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.catalog.SearchParts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, parts)
}

func (h *PartHandler) HandleGetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.catalog.GetPart(r.Context(), r.PathValue("id"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, part)
}

func (h *PartHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.catalog.GetPart(r.Context(), id); err != nil {
		sendServiceError(w, r, err)
		return
	}
	history, err := h.catalog.GetHistory(r.Context(), id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, history)
}

func (h *PartHandler) HandleAddPart(w http.ResponseWriter, r *http.Request) {
	var in services.PartInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	part, err := h.catalog.AddPart(r.Context(), in)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, part)
}

func (h *PartHandler) HandleUpdatePart(w http.ResponseWriter, r *http.Request) {
	var in services.PartInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.catalog.UpdatePart(r.Context(), r.PathValue("id"), in)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, res)
}

func (h *PartHandler) HandleDeletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeletePart(r.Context(), r.PathValue("id")); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PartHandler) HandleSetCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CategoryID *string `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	if err := h.catalog.SetPartCategory(r.Context(), id, body.CategoryID); err != nil {
		sendServiceError(w, r, err)
		return
	}
	part, err := h.catalog.GetPart(r.Context(), id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, part)
}

// HandleBulkImport reconciles a JSON array of rows in one batch.
func (h *PartHandler) HandleBulkImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes)
	var rows []models.BulkRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		logger.FromContext(r.Context()).Warn("Malformed bulk import body", "error", err)
		sendServiceError(w, r, fmt.Errorf("%w: %v", services.ErrMalformedBatch, err))
		return
	}
	res, err := h.imports.BulkImport(r.Context(), rows)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	userID, _ := GetUserIDFromContext(r.Context())
	logger.FromContext(r.Context()).Info("Bulk import finished", "userID", userID, "rows", len(rows), "inserted", res.Inserted, "updated", res.Updated, "skipped", res.Skipped)
	utils.SendJSON(w, http.StatusOK, res)
}
