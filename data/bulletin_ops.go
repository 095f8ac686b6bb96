package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const bulletinCols = `b.id, b.name, b.description, b.organization_id, b.columns_json,
	(SELECT COUNT(*) FROM bulletin_rows r WHERE r.bulletin_id = b.id) AS row_count, b.created_at, b.updated_at`

// bulletinReadCond: свои бюллетени плюс общие (organization_id IS NULL).
func bulletinReadCond(scope models.Scope) (string, []any) {
	if scope.Unrestricted() {
		return "", nil
	}
	return "(b.organization_id = ? OR b.organization_id IS NULL)", []any{*scope.OrganizationID}
}

func (s *Store) ListBulletins(ctx context.Context, scope models.Scope, p filter.Params) ([]models.Bulletin, int, error) {
	q := &listQuery{}
	if cond, args := bulletinReadCond(scope); cond != "" {
		q.add(cond, args...)
	}
	if org, ok := p.Int(filter.KeyOrganization); ok {
		q.add("b.organization_id = ?", org)
	}
	q.search(p.Search, "b.name", "b.description")

	items := []models.Bulletin{}
	total, err := s.page(ctx, &items, bulletinCols, "bulletins b", q, "b.id DESC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListBulletins: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].LoadJsonProperties()
	}
	return items, total, nil
}

func (s *Store) GetBulletin(ctx context.Context, scope models.Scope, id int64) (*models.Bulletin, error) {
	q := &listQuery{}
	q.add("b.id = ?", id)
	if cond, args := bulletinReadCond(scope); cond != "" {
		q.add(cond, args...)
	}
	b := &models.Bulletin{}
	err := s.db.GetContext(ctx, b, s.rebind("SELECT "+bulletinCols+" FROM bulletins b"+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetBulletin: ошибка получения ID %d: %w", id, err)
	}
	b.LoadJsonProperties()
	return b, nil
}

// CreateBulletin создает бюллетень. Не-администратор создает бюллетени только своей организации.
func (s *Store) CreateBulletin(ctx context.Context, scope models.Scope, in *models.BulletinInput) (*models.Bulletin, error) {
	if !scope.Unrestricted() {
		org := *scope.OrganizationID
		in.OrganizationID = &org
	}
	if err := s.checkBulletin(ctx, scope, in); err != nil {
		return nil, err
	}
	b := &models.Bulletin{Name: in.Name, Description: in.Description, OrganizationID: in.OrganizationID, Columns: in.Columns}
	if err := b.UpdateJsonProperties(); err != nil {
		return nil, fmt.Errorf("CreateBulletin: %w", err)
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO bulletins (name, description, organization_id, columns_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, b.Name, b.Description, b.OrganizationID, b.ColumnsJson, now, now)
	if err != nil {
		return nil, wrapErr("CreateBulletin", err)
	}
	return s.GetBulletin(ctx, models.Scope{}, id)
}

// UpdateBulletin меняет бюллетень. Общие бюллетени меняет только администратор.
func (s *Store) UpdateBulletin(ctx context.Context, scope models.Scope, id int64, in *models.BulletinInput) (*models.Bulletin, error) {
	current, err := s.GetBulletin(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.Unrestricted() {
		if current.OrganizationID == nil {
			return nil, models.ErrForbidden
		}
		in.OrganizationID = current.OrganizationID
	}
	if err := s.checkBulletin(ctx, scope, in); err != nil {
		return nil, err
	}
	b := &models.Bulletin{Columns: in.Columns}
	if err := b.UpdateJsonProperties(); err != nil {
		return nil, fmt.Errorf("UpdateBulletin: %w", err)
	}
	_, err = s.exec(ctx, `UPDATE bulletins SET name = ?, description = ?, organization_id = ?, columns_json = ?, updated_at = ? WHERE id = ?`,
		in.Name, in.Description, in.OrganizationID, b.ColumnsJson, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateBulletin", err)
	}
	return s.GetBulletin(ctx, scope, id)
}

// DeleteBulletins удаляет бюллетени вместе со строками. Не-администратор удаляет только свои.
func (s *Store) DeleteBulletins(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := orgCond(scope, "organization_id")
	if err := s.deleteByIDs(ctx, "bulletins", ids, cond, args...); err != nil {
		return wrapErr("DeleteBulletins", err)
	}
	return nil
}

func (s *Store) checkBulletin(ctx context.Context, scope models.Scope, in *models.BulletinInput) error {
	if in.OrganizationID != nil {
		if err := s.requireOrganization(ctx, scope, "organizationId", *in.OrganizationID); err != nil {
			return err
		}
	}
	b := &models.Bulletin{Columns: in.Columns}
	ids := b.ClassificatorIDs()
	found, err := s.GetClassificatorsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return models.Unavailable("columns")
		}
	}
	return nil
}
