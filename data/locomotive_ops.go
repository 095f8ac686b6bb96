package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const locomotiveCols = `l.id, l.number, l.model, l.series, l.organization_id, COALESCE(o.name, '') AS organization_name,
	l.status, l.commissioned_on, l.mileage_km, l.created_at, l.updated_at`

const locomotiveFrom = `locomotives l LEFT JOIN organizations o ON o.id = l.organization_id`

// ListLocomotives возвращает страницу локомотивов. Фильтры: organization, status.
func (s *Store) ListLocomotives(ctx context.Context, scope models.Scope, p filter.Params) ([]models.Locomotive, int, error) {
	q := &listQuery{}
	if cond, args := orgCond(scope, "l.organization_id"); cond != "" {
		q.add(cond, args...)
	}
	if org, ok := p.Int(filter.KeyOrganization); ok {
		q.add("l.organization_id = ?", org)
	}
	if status := p.Get(filter.KeyStatus); status != "" {
		q.add("l.status = ?", status)
	}
	q.search(p.Search, "l.number", "l.model", "l.series")

	items := []models.Locomotive{}
	total, err := s.page(ctx, &items, locomotiveCols, locomotiveFrom, q, "l.number ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListLocomotives: ошибка выборки: %w", err)
	}
	return items, total, nil
}

func (s *Store) GetLocomotive(ctx context.Context, scope models.Scope, id int64) (*models.Locomotive, error) {
	q := &listQuery{}
	q.add("l.id = ?", id)
	if cond, args := orgCond(scope, "l.organization_id"); cond != "" {
		q.add(cond, args...)
	}
	loco := &models.Locomotive{}
	err := s.db.GetContext(ctx, loco, s.rebind("SELECT "+locomotiveCols+" FROM "+locomotiveFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetLocomotive: ошибка получения ID %d: %w", id, err)
	}
	return loco, nil
}

// CreateLocomotive создает локомотив. Номер уникален (ErrConflict).
func (s *Store) CreateLocomotive(ctx context.Context, scope models.Scope, in *models.LocomotiveInput) (*models.Locomotive, error) {
	if err := s.requireOrganization(ctx, scope, "organizationId", in.OrganizationID); err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO locomotives (number, model, series, organization_id, status, commissioned_on, mileage_km, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Number, in.Model, in.Series, in.OrganizationID, in.Status, in.CommissionedOn, in.MileageKm, now, now)
	if err != nil {
		return nil, wrapErr("CreateLocomotive", err)
	}
	return s.GetLocomotive(ctx, scope, id)
}

func (s *Store) UpdateLocomotive(ctx context.Context, scope models.Scope, id int64, in *models.LocomotiveInput) (*models.Locomotive, error) {
	if _, err := s.GetLocomotive(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.requireOrganization(ctx, scope, "organizationId", in.OrganizationID); err != nil {
		return nil, err
	}
	_, err := s.exec(ctx, `UPDATE locomotives SET number = ?, model = ?, series = ?, organization_id = ?, status = ?,
		commissioned_on = ?, mileage_km = ?, updated_at = ? WHERE id = ?`,
		in.Number, in.Model, in.Series, in.OrganizationID, in.Status, in.CommissionedOn, in.MileageKm, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateLocomotive", err)
	}
	return s.GetLocomotive(ctx, scope, id)
}

// DeleteLocomotives удаляет локомотивы вместе с привязанными записями.
func (s *Store) DeleteLocomotives(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := orgCond(scope, "organization_id")
	if err := s.deleteByIDs(ctx, "locomotives", ids, cond, args...); err != nil {
		return wrapErr("DeleteLocomotives", err)
	}
	return nil
}

// linkedScope - условия для записей, привязанных к локомотиву через алиас l.
func linkedScope(q *listQuery, scope models.Scope, p filter.Params, alias string) {
	if cond, args := orgCond(scope, "l.organization_id"); cond != "" {
		q.add(cond, args...)
	}
	if loco, ok := p.Int(filter.KeyLocomotive); ok {
		q.add(alias+".locomotive_id = ?", loco)
	}
	if org, ok := p.Int(filter.KeyOrganization); ok {
		q.add("l.organization_id = ?", org)
	}
}

// linkedDeleteCond ограничивает удаление привязанных записей локомотивами из scope.
func linkedDeleteCond(scope models.Scope) (string, []any) {
	if scope.Unrestricted() {
		return "", nil
	}
	return "locomotive_id IN (SELECT id FROM locomotives WHERE organization_id = ?)", []any{*scope.OrganizationID}
}

// dateRange добавляет фильтры from/to по колонке с датой.
func dateRange(q *listQuery, p filter.Params, col string) {
	if from := p.Get(filter.KeyFrom); from != "" {
		q.add(col+" >= ?", from)
	}
	if to := p.Get(filter.KeyTo); to != "" {
		q.add(col+" <= ?", to)
	}
}
