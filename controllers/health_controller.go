package controllers

import (
	"net/http"
)

// HealthCheck godoc
// @Summary Проверка состояния сервера
// @Description Возвращает статус "OK", если сервер работает и БД доступна
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Статус OK"
// @Failure 503 {object} map[string]string
// @Router /api/health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Error(r.Context(), "health: database unavailable", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "DB_UNAVAILABLE"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
