package controllers

import (
	"errors"
	"net/http"
	"strings"

	"lokomotiv_server_go/cache"
	"lokomotiv_server_go/models"
	"lokomotiv_server_go/permission"
)

func publicInfo(u *models.User) models.UserPublicInfo {
	return models.UserPublicInfo{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		Permissions:    permission.List(u.Role),
	}
}

// Login обрабатывает вход пользователя.
// Ожидает POST-запрос с JSON-телом, содержащим username и password.
// Пример URL: POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respondError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	ctx := r.Context()
	user, err := h.store.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		h.log.Warn(ctx, "login failed", "username", req.Username)
		respondError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	case errors.Is(err, models.ErrInactiveUser):
		respondError(w, http.StatusForbidden, msgInactive)
		return
	case err != nil:
		respondStoreError(ctx, w, h.log, "login", err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondStoreError(ctx, w, h.log, "generate token", err)
		return
	}
	h.log.Info(ctx, "user logged in", "user_id", user.ID)
	respondJSON(w, http.StatusOK, models.AuthResponse{Token: token, ExpiresAt: expiresAt, User: publicInfo(user)})
}

// Me возвращает текущего пользователя и его права.
// Пример URL: GET /api/auth/me (требует авторизации)
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s := permission.FromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}
	user, err := h.store.GetUser(r.Context(), models.Scope{}, s.UserID)
	if err != nil {
		respondStoreError(r.Context(), w, h.log, "me", err)
		return
	}
	respondJSON(w, http.StatusOK, publicInfo(user))
}

// UpdateProfile обновляет ФИО и, если передан, пароль текущего пользователя.
// Пример URL: PUT /api/auth/profile (требует авторизации)
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	s := permission.FromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := req.Validate(models.ModeEdit); err != nil {
		respondValidation(w, err)
		return
	}

	user, err := h.store.UpdateProfile(r.Context(), s.UserID, &req)
	if err != nil {
		respondStoreError(r.Context(), w, h.log, "update profile", err)
		return
	}
	h.cache.Invalidate(r.Context(), cache.Users)
	respondJSON(w, http.StatusOK, mutationBody{Message: msgProfileUpdated, Data: publicInfo(user)})
}
