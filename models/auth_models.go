package models

import "time"

// LoginRequest представляет данные для входа пользователя.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserPublicInfo представляет публичные данные пользователя, возвращаемые API.
// Permissions используются клиентом для скрытия недоступных действий.
type UserPublicInfo struct {
	ID             int64    `json:"id"`
	Username       string   `json:"username"`
	FullName       string   `json:"fullName"`
	Role           Role     `json:"role"`
	OrganizationID *int64   `json:"organizationId"`
	Permissions    []string `json:"permissions"`
}

// AuthResponse представляет ответ сервера после успешной аутентификации.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      UserPublicInfo `json:"user"`
}

// UpdateProfileRequest представляет данные для обновления собственного профиля.
type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (r *UpdateProfileRequest) Validate(FormMode) error {
	v := &ValidationError{}
	requireText(v, "fullName", r.FullName)
	if r.Password != "" && len(r.Password) < 6 {
		v.Add("password", msgTooShort)
	}
	return v.Err()
}
