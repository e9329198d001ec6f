package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/model"
	"github.com/username/partsviewer/backend/src/security"
	"github.com/username/partsviewer/backend/src/utils"
)

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			utils.SendJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		logger.L.Error("Login failed", "username", creds.Username, "error", err)
		utils.SendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: user})
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), creds.Username, creds.Email, creds.Password)
	switch {
	case errors.Is(err, security.ErrWeakCredentials):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, security.ErrUsernameTaken):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		logger.L.Error("Failed to create user", "username", creds.Username, "error", err)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	logger.L.Info("User registered", "userID", user.ID, "username", user.Username)
	utils.SendJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Not logged in", http.StatusUnauthorized)
		return
	}
	token, _ := r.Context().Value(tokenContextKey).(string)
	if err := h.authService.Logout(r.Context(), token); err != nil {
		logger.FromContext(r.Context()).Error("Failed to delete session", "error", err)
		utils.SendJSONError(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	logger.FromContext(r.Context()).Info("User logged out", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}
