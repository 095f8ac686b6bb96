package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

// HashPassword генерирует хеш bcrypt для пароля.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash сравнивает пароль с хешем.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

const userCols = `u.id, u.username, u.full_name, u.role, u.organization_id, o.name AS organization_name,
	u.is_active, u.password_hash, u.created_at, u.updated_at`

const userFrom = `users u LEFT JOIN organizations o ON o.id = u.organization_id`

// ListUsers возвращает страницу пользователей. Фильтры: role, organization.
func (s *Store) ListUsers(ctx context.Context, scope models.Scope, p filter.Params) ([]models.User, int, error) {
	q := &listQuery{}
	if cond, args := orgCond(scope, "u.organization_id"); cond != "" {
		q.add(cond, args...)
	}
	if role := p.Get(filter.KeyRole); role != "" {
		q.add("u.role = ?", role)
	}
	if org, ok := p.Int(filter.KeyOrganization); ok {
		q.add("u.organization_id = ?", org)
	}
	q.search(p.Search, "u.username", "u.full_name")

	items := []models.User{}
	total, err := s.page(ctx, &items, userCols, userFrom, q, "u.username ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListUsers: ошибка выборки: %w", err)
	}
	return items, total, nil
}

// GetUser возвращает пользователя по ID в пределах scope.
func (s *Store) GetUser(ctx context.Context, scope models.Scope, id int64) (*models.User, error) {
	q := &listQuery{}
	q.add("u.id = ?", id)
	if cond, args := orgCond(scope, "u.organization_id"); cond != "" {
		q.add(cond, args...)
	}
	return s.getUser(ctx, "GetUser", q)
}

// GetUserByUsername используется при входе; scope не применяется.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := &listQuery{}
	q.add("u.username = ?", strings.TrimSpace(username))
	return s.getUser(ctx, "GetUserByUsername", q)
}

func (s *Store) getUser(ctx context.Context, op string, q *listQuery) (*models.User, error) {
	user := &models.User{}
	err := s.db.GetContext(ctx, user, s.rebind("SELECT "+userCols+" FROM "+userFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения пользователя: %w", op, err)
	}
	return user, nil
}

// Authenticate проверяет логин и пароль. Неактивный пользователь не может войти.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, models.ErrInactiveUser
	}
	return user, nil
}

// CreateUser создает пользователя; пароль хешируется. Имя пользователя уникально (ErrConflict).
func (s *Store) CreateUser(ctx context.Context, scope models.Scope, in *models.UserInput) (*models.User, error) {
	if err := s.checkUserOrganization(ctx, scope, in); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("CreateUser: ошибка хеширования пароля: %w", err)
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO users (username, full_name, role, organization_id, is_active, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Username, in.FullName, in.Role, in.OrganizationID, in.Active(), hash, now, now)
	if err != nil {
		return nil, wrapErr("CreateUser", err)
	}
	return s.GetUser(ctx, models.Scope{}, id)
}

// UpdateUser обновляет пользователя. Пустой пароль оставляет прежний хеш,
// отсутствующий isActive - прежний флаг активности.
func (s *Store) UpdateUser(ctx context.Context, scope models.Scope, id int64, in *models.UserInput) (*models.User, error) {
	current, err := s.GetUser(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUserOrganization(ctx, scope, in); err != nil {
		return nil, err
	}
	active := current.IsActive
	if in.IsActive != nil {
		active = *in.IsActive
	}
	query := `UPDATE users SET username = ?, full_name = ?, role = ?, organization_id = ?, is_active = ?, updated_at = ?`
	args := []any{in.Username, in.FullName, in.Role, in.OrganizationID, active, s.timestamp()}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("UpdateUser: ошибка хеширования пароля: %w", err)
		}
		query += `, password_hash = ?`
		args = append(args, hash)
	}
	query += ` WHERE id = ?`
	args = append(args, id)
	if _, err := s.exec(ctx, query, args...); err != nil {
		return nil, wrapErr("UpdateUser", err)
	}
	return s.GetUser(ctx, scope, id)
}

// UpdateProfile меняет ФИО и, если задан, пароль самого пользователя.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, in *models.UpdateProfileRequest) (*models.User, error) {
	query := `UPDATE users SET full_name = ?, updated_at = ?`
	args := []any{strings.TrimSpace(in.FullName), s.timestamp()}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("UpdateProfile: ошибка хеширования пароля: %w", err)
		}
		query += `, password_hash = ?`
		args = append(args, hash)
	}
	query += ` WHERE id = ?`
	args = append(args, userID)
	n, err := s.exec(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("UpdateProfile", err)
	}
	if n == 0 {
		return nil, models.ErrNotFound
	}
	return s.GetUser(ctx, models.Scope{}, userID)
}

func (s *Store) DeleteUsers(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := orgCond(scope, "organization_id")
	if err := s.deleteByIDs(ctx, "users", ids, cond, args...); err != nil {
		return wrapErr("DeleteUsers", err)
	}
	return nil
}

func (s *Store) checkUserOrganization(ctx context.Context, scope models.Scope, in *models.UserInput) error {
	if in.OrganizationID == nil {
		if !scope.Unrestricted() {
			return models.Unavailable("organizationId")
		}
		return nil
	}
	return s.requireOrganization(ctx, scope, "organizationId", *in.OrganizationID)
}
