package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lokomotiv_server_go/auth"
	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/models"
	"lokomotiv_server_go/permission"
)

const (
	msgNoAuthHeader  = "Avtorizatsiya sarlavhasi yo'q"
	msgBadAuthHeader = "Avtorizatsiya sarlavhasi noto'g'ri (Bearer {token} kutilmoqda)"
	msgInvalidToken  = "Token yaroqsiz yoki muddati o'tgan"
	msgUserInactive  = "Foydalanuvchi topilmadi yoki bloklangan"
	msgInternal      = "Ichki server xatosi"
)

// UserLoader загружает пользователя по ID из токена.
type UserLoader interface {
	GetUser(ctx context.Context, scope models.Scope, id int64) (*models.User, error)
}

// JWTMiddleware проверяет JWT в заголовке Authorization, загружает пользователя
// (он должен существовать и быть активным) и кладет сессию в контекст запроса.
func JWTMiddleware(tokens *auth.TokenService, users UserLoader, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, msgNoAuthHeader)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				unauthorized(w, msgBadAuthHeader)
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				log.Warn(ctx, "invalid token", "path", r.URL.Path, "error", err)
				unauthorized(w, msgInvalidToken)
				return
			}

			user, err := users.GetUser(ctx, models.Scope{}, claims.UserID)
			switch {
			case errors.Is(err, models.ErrNotFound):
				unauthorized(w, msgUserInactive)
				return
			case err != nil:
				log.Error(ctx, "load session user", "user_id", claims.UserID, "error", err)
				writeError(w, http.StatusInternalServerError, msgInternal)
				return
			case !user.IsActive:
				unauthorized(w, msgUserInactive)
				return
			}

			session := &permission.Session{
				UserID:         user.ID,
				Username:       user.Username,
				Role:           user.Role,
				OrganizationID: user.OrganizationID,
			}
			next.ServeHTTP(w, r.WithContext(permission.WithSession(ctx, session)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
