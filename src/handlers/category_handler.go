package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/services"
	"github.com/username/partsviewer/backend/src/utils"
)

// CategoryHandler also serves the read-only statistics view and the
// notification feed, which share the catalog service.
type CategoryHandler struct {
	catalog services.CatalogService
}

func NewCategoryHandler(catalog services.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) HandleAddCategory(w http.ResponseWriter, r *http.Request) {
	var c model.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.catalog.AddCategory(r.Context(), c)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GetStatistics(r.Context())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, stats)
}

func (h *CategoryHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			utils.SendJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.catalog.ListNotifications(r.Context(), limit)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, list)
}

func (h *CategoryHandler) HandleAddNotification(w http.ResponseWriter, r *http.Request) {
	var n model.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if n.PartID == "" || n.Message == "" {
		utils.SendJSONError(w, "part_id and message are required", http.StatusBadRequest)
		return
	}
	created, err := h.catalog.AddNotification(r.Context(), n)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.MarkNotificationRead(r.Context(), r.PathValue("id")); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
