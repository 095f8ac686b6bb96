package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const organizationCols = `id, name, code, address, created_at, updated_at`

// ListOrganizations возвращает страницу депо. Пользователь с ограниченным scope видит только свое.
func (s *Store) ListOrganizations(ctx context.Context, scope models.Scope, p filter.Params) ([]models.Organization, int, error) {
	q := &listQuery{}
	if cond, args := orgCond(scope, "id"); cond != "" {
		q.add(cond, args...)
	}
	q.search(p.Search, "name", "code", "address")

	items := []models.Organization{}
	total, err := s.page(ctx, &items, organizationCols, "organizations", q, "name ASC, id ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListOrganizations: ошибка выборки: %w", err)
	}
	return items, total, nil
}

// GetOrganization возвращает депо по ID или ErrNotFound.
func (s *Store) GetOrganization(ctx context.Context, scope models.Scope, id int64) (*models.Organization, error) {
	q := &listQuery{}
	q.add("id = ?", id)
	if cond, args := orgCond(scope, "id"); cond != "" {
		q.add(cond, args...)
	}
	org := &models.Organization{}
	err := s.db.GetContext(ctx, org, s.rebind("SELECT "+organizationCols+" FROM organizations"+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetOrganization: ошибка получения ID %d: %w", id, err)
	}
	return org, nil
}

// CreateOrganization создает депо. Код должен быть уникальным (ErrConflict).
func (s *Store) CreateOrganization(ctx context.Context, in *models.OrganizationInput) (*models.Organization, error) {
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO organizations (name, code, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`, in.Name, in.Code, in.Address, now, now)
	if err != nil {
		return nil, wrapErr("CreateOrganization", err)
	}
	return s.GetOrganization(ctx, models.Scope{}, id)
}

// UpdateOrganization обновляет депо; created_at не меняется.
func (s *Store) UpdateOrganization(ctx context.Context, scope models.Scope, id int64, in *models.OrganizationInput) (*models.Organization, error) {
	if _, err := s.GetOrganization(ctx, scope, id); err != nil {
		return nil, err
	}
	_, err := s.exec(ctx, `UPDATE organizations SET name = ?, code = ?, address = ?, updated_at = ? WHERE id = ?`,
		in.Name, in.Code, in.Address, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateOrganization", err)
	}
	return s.GetOrganization(ctx, scope, id)
}

// DeleteOrganizations удаляет депо. Депо с пользователями, локомотивами или бюллетенями удалить нельзя (ErrReferenced).
func (s *Store) DeleteOrganizations(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := orgCond(scope, "id")
	if err := s.deleteByIDs(ctx, "organizations", ids, cond, args...); err != nil {
		return wrapErr("DeleteOrganizations", err)
	}
	return nil
}
