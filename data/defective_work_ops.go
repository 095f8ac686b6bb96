package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const defectCols = `x.id, x.locomotive_id, l.number AS locomotive_number, x.component, x.description,
	x.detected_on, x.fixed_on, x.status, x.created_at, x.updated_at`

const defectFrom = `defective_works x JOIN locomotives l ON l.id = x.locomotive_id`

// ListDefectiveWorks возвращает страницу неисправностей. Фильтры: status, from/to по дате выявления.
func (s *Store) ListDefectiveWorks(ctx context.Context, scope models.Scope, p filter.Params) ([]models.DefectiveWorkEntry, int, error) {
	q := &listQuery{}
	linkedScope(q, scope, p, "x")
	if status := p.Get(filter.KeyStatus); status != "" {
		q.add("x.status = ?", status)
	}
	dateRange(q, p, "x.detected_on")
	q.search(p.Search, "l.number", "x.component", "x.description")

	items := []models.DefectiveWorkEntry{}
	total, err := s.page(ctx, &items, defectCols, defectFrom, q, "x.detected_on DESC, x.id DESC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListDefectiveWorks: ошибка выборки: %w", err)
	}
	return items, total, nil
}

func (s *Store) GetDefectiveWork(ctx context.Context, scope models.Scope, id int64) (*models.DefectiveWorkEntry, error) {
	q := &listQuery{}
	q.add("x.id = ?", id)
	linkedScope(q, scope, filter.Params{}, "x")
	item := &models.DefectiveWorkEntry{}
	err := s.db.GetContext(ctx, item, s.rebind("SELECT "+defectCols+" FROM "+defectFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetDefectiveWork: ошибка получения ID %d: %w", id, err)
	}
	return item, nil
}

func (s *Store) CreateDefectiveWork(ctx context.Context, scope models.Scope, in *models.DefectiveWorkInput) (*models.DefectiveWorkEntry, error) {
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO defective_works (locomotive_id, component, description, detected_on, fixed_on, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.LocomotiveID, in.Component, in.Description, in.DetectedOn, in.FixedOn, in.Status, now, now)
	if err != nil {
		return nil, wrapErr("CreateDefectiveWork", err)
	}
	return s.GetDefectiveWork(ctx, scope, id)
}

func (s *Store) UpdateDefectiveWork(ctx context.Context, scope models.Scope, id int64, in *models.DefectiveWorkInput) (*models.DefectiveWorkEntry, error) {
	if _, err := s.GetDefectiveWork(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	_, err := s.exec(ctx, `UPDATE defective_works SET locomotive_id = ?, component = ?, description = ?, detected_on = ?,
		fixed_on = ?, status = ?, updated_at = ? WHERE id = ?`,
		in.LocomotiveID, in.Component, in.Description, in.DetectedOn, in.FixedOn, in.Status, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateDefectiveWork", err)
	}
	return s.GetDefectiveWork(ctx, scope, id)
}

func (s *Store) DeleteDefectiveWorks(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := linkedDeleteCond(scope)
	if err := s.deleteByIDs(ctx, "defective_works", ids, cond, args...); err != nil {
		return wrapErr("DeleteDefectiveWorks", err)
	}
	return nil
}
