package controllers

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"lokomotiv_server_go/auth"
	"lokomotiv_server_go/cache"
	"lokomotiv_server_go/data"
	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/middleware"
)

// Handler хранит зависимости контроллеров.
type Handler struct {
	store  *data.Store
	cache  *cache.Cache
	tokens *auth.TokenService
	log    logging.Logger
	now    func() time.Time
}

// NewHandler создает обработчики API. cache может быть nil (кэш отключен).
func NewHandler(store *data.Store, c *cache.Cache, tokens *auth.TokenService, log logging.Logger) *Handler {
	return &Handler{store: store, cache: c, tokens: tokens, log: log, now: time.Now}
}

// Routes собирает роутер со всеми маршрутами API.
func (h *Handler) Routes(requestTimeout time.Duration) http.Handler {
	r := mux.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.RequestLogger(h.log), chimw.Recoverer)
	if requestTimeout > 0 {
		r.Use(chimw.Timeout(requestTimeout))
	}

	r.HandleFunc("/api/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTMiddleware(h.tokens, h.store, h.log))

	api.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", h.UpdateProfile).Methods(http.MethodPut)

	h.organizations().Register(api.PathPrefix("/organizations").Subrouter(), h)
	h.users().Register(api.PathPrefix("/users").Subrouter(), h)
	h.classificators().Register(api.PathPrefix("/classificators").Subrouter(), h)
	h.bulletinRows().Register(api.PathPrefix("/bulletins/{bulletinId:[0-9]+}/rows").Subrouter(), h)
	h.bulletins().Register(api.PathPrefix("/bulletins").Subrouter(), h)
	h.locomotives().Register(api.PathPrefix("/locomotives").Subrouter(), h)
	h.inspections().Register(api.PathPrefix("/inspections").Subrouter(), h)
	h.delays().Register(api.PathPrefix("/delays").Subrouter(), h)
	h.defectiveWorks().Register(api.PathPrefix("/defective-works").Subrouter(), h)
	h.replacementOils().Register(api.PathPrefix("/replacement-oils").Subrouter(), h)
	h.components().Register(api.PathPrefix("/components").Subrouter(), h)

	return r
}
