package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/models"
)

// errorBody - общее тело ошибки: сообщение и, для ошибок формы, тексты по полям.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// mutationBody - ответ успешной мутации.
type mutationBody struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondRaw отдает уже сериализованный JSON (ответ из кэша).
func respondRaw(w http.ResponseWriter, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, errorBody{Error: message})
}

// respondValidation отдает 422 с ошибками по полям.
func respondValidation(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: msgValidation, Fields: ve.Fields})
		return
	}
	respondError(w, http.StatusBadRequest, msgBadRequest)
}

// respondStoreError переводит ошибку хранилища или валидации в HTTP-ответ.
func respondStoreError(ctx context.Context, w http.ResponseWriter, log logging.Logger, op string, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		respondValidation(w, ve)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, models.ErrConflict):
		respondError(w, http.StatusConflict, msgConflict)
	case errors.Is(err, models.ErrReferenced):
		respondError(w, http.StatusConflict, msgReferenced)
	case errors.Is(err, models.ErrForbidden):
		respondError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.Warn(ctx, op+" interrupted", "error", err)
		respondError(w, http.StatusServiceUnavailable, msgInternal)
	default:
		log.Error(ctx, op+" failed", "error", err)
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeJSON читает тело запроса в dst.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID читает числовой параметр пути.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
