package models

import (
	"strings"
	"time"
)

// Role - роль пользователя. Набор прав для каждой роли задан в пакете permission.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Valid проверяет, что роль известна.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// User представляет пользователя системы.
type User struct {
	ID               int64     `json:"id" db:"id"`
	Username         string    `json:"username" db:"username"`
	FullName         string    `json:"fullName" db:"full_name"`
	Role             Role      `json:"role" db:"role"`
	OrganizationID   *int64    `json:"organizationId" db:"organization_id"`
	OrganizationName *string   `json:"organizationName,omitempty" db:"organization_name"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// UserInput - данные формы создания/редактирования пользователя.
// Password обязателен только при создании; при редактировании пустой пароль не меняется.
type UserInput struct {
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	Role           Role   `json:"role"`
	OrganizationID *int64 `json:"organizationId"`
	Password       string `json:"password"`
	IsActive       *bool  `json:"isActive"`
}

func (in *UserInput) Validate(mode FormMode) error {
	v := &ValidationError{}
	in.Username = strings.TrimSpace(in.Username)
	requireText(v, "username", in.Username)
	requireText(v, "fullName", in.FullName)
	if in.Role == "" {
		v.Add("role", msgRequired)
	} else if !in.Role.Valid() {
		v.Add("role", msgInvalidValue)
	}
	if in.Role != RoleAdmin && in.OrganizationID == nil {
		v.Add("organizationId", msgRequired)
	}
	switch {
	case mode == ModeCreate && in.Password == "":
		v.Add("password", msgRequired)
	case in.Password != "" && len(in.Password) < 6:
		v.Add("password", msgTooShort)
	}
	return v.Err()
}

// Active возвращает флаг активности для нового пользователя (по умолчанию true).
func (in *UserInput) Active() bool {
	if in.IsActive == nil {
		return true
	}
	return *in.IsActive
}
