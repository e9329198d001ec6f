package handlers

import (
	"net/http"

	"github.com/username/partsviewer/backend/src/utils"
)

type Router struct {
	Users      *UserHandler
	Parts      *PartHandler
	Categories *CategoryHandler
	Imports    *ImportHandler
}

// Handler registers every API route. Reads need a session; writes also
// need the admin role.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	auth := func(h http.HandlerFunc) http.Handler {
		return rt.Users.AuthMiddleware(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return rt.Users.AuthMiddleware(RequireAdmin(h))
	}

	mux.HandleFunc("POST /api/auth/register", rt.Users.RegisterUserHandler)
	mux.HandleFunc("POST /api/auth/login", rt.Users.LoginUserHandler)
	mux.Handle("POST /api/auth/logout", auth(rt.Users.LogoutUserHandler))

	mux.Handle("GET /api/parts", auth(rt.Parts.HandleListParts))
	mux.Handle("GET /api/parts/search", auth(rt.Parts.HandleSearchParts))
	mux.Handle("GET /api/parts/{id}", auth(rt.Parts.HandleGetPart))
	mux.Handle("GET /api/parts/{id}/history", auth(rt.Parts.HandleGetHistory))
	mux.Handle("POST /api/parts", admin(rt.Parts.HandleAddPart))
	mux.Handle("POST /api/parts/bulk", admin(rt.Parts.HandleBulkImport))
	mux.Handle("PUT /api/parts/{id}", admin(rt.Parts.HandleUpdatePart))
	mux.Handle("DELETE /api/parts/{id}", admin(rt.Parts.HandleDeletePart))
	mux.Handle("PUT /api/parts/{id}/category", admin(rt.Parts.HandleSetCategory))

	mux.Handle("GET /api/categories", auth(rt.Categories.HandleListCategories))
	mux.Handle("POST /api/categories", admin(rt.Categories.HandleAddCategory))
	mux.Handle("DELETE /api/categories/{id}", admin(rt.Categories.HandleDeleteCategory))

	mux.Handle("GET /api/statistics", auth(rt.Categories.HandleGetStatistics))

	mux.Handle("GET /api/notifications", auth(rt.Categories.HandleListNotifications))
	mux.Handle("POST /api/notifications", auth(rt.Categories.HandleAddNotification))
	mux.Handle("POST /api/notifications/{id}/read", auth(rt.Categories.HandleMarkNotificationRead))

	mux.Handle("POST /api/imports", admin(rt.Imports.HandleUpload))
	mux.Handle("POST /api/imports/{token}/preview", admin(rt.Imports.HandlePreview))
	mux.Handle("POST /api/imports/{token}/commit", admin(rt.Imports.HandleCommit))

	mux.Handle("GET /api/export/xlsx", auth(rt.Imports.HandleExportXLSX))
	mux.Handle("POST /api/export/xlsx", admin(rt.Imports.HandleSaveExport))

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}
