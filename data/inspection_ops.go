package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const inspectionCols = `x.id, x.locomotive_id, l.number AS locomotive_number, x.kind, x.interval_days,
	x.last_inspected_on, x.next_due_on, x.notes, x.created_at, x.updated_at`

const inspectionFrom = `inspections x JOIN locomotives l ON l.id = x.locomotive_id`

// dueTab применяет вкладку overdue/upcoming к колонке next_due_on.
func dueTab(q *listQuery, tab string, today time.Time) {
	day := today.Format(models.DateLayout)
	switch tab {
	case filter.TabOverdue:
		q.add("x.next_due_on < ?", day)
	case filter.TabUpcoming:
		q.add("x.next_due_on >= ? AND x.next_due_on <= ?", day, today.AddDate(0, 0, filter.UpcomingDays).Format(models.DateLayout))
	}
}

// ListInspections возвращает страницу осмотров, отсортированную по ближайшему сроку.
func (s *Store) ListInspections(ctx context.Context, scope models.Scope, p filter.Params) ([]models.Inspection, int, error) {
	today := s.today()
	q := &listQuery{}
	linkedScope(q, scope, p, "x")
	dueTab(q, p.Get(filter.KeyTab), today)
	dateRange(q, p, "x.next_due_on")
	q.search(p.Search, "l.number", "x.kind", "x.notes")

	items := []models.Inspection{}
	total, err := s.page(ctx, &items, inspectionCols, inspectionFrom, q, "x.next_due_on ASC, x.id ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListInspections: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].Derive(today)
	}
	return items, total, nil
}

func (s *Store) GetInspection(ctx context.Context, scope models.Scope, id int64) (*models.Inspection, error) {
	q := &listQuery{}
	q.add("x.id = ?", id)
	linkedScope(q, scope, filter.Params{}, "x")
	item := &models.Inspection{}
	err := s.db.GetContext(ctx, item, s.rebind("SELECT "+inspectionCols+" FROM "+inspectionFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetInspection: ошибка получения ID %d: %w", id, err)
	}
	item.Derive(s.today())
	return item, nil
}

// CreateInspection сохраняет осмотр; next_due_on = last_inspected_on + interval_days.
func (s *Store) CreateInspection(ctx context.Context, scope models.Scope, in *models.InspectionInput) (*models.Inspection, error) {
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO inspections (locomotive_id, kind, interval_days, last_inspected_on, next_due_on, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.LocomotiveID, in.Kind, in.IntervalDays, in.LastInspectedOn, in.NextDueOn(), in.Notes, now, now)
	if err != nil {
		return nil, wrapErr("CreateInspection", err)
	}
	return s.GetInspection(ctx, scope, id)
}

func (s *Store) UpdateInspection(ctx context.Context, scope models.Scope, id int64, in *models.InspectionInput) (*models.Inspection, error) {
	if _, err := s.GetInspection(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	_, err := s.exec(ctx, `UPDATE inspections SET locomotive_id = ?, kind = ?, interval_days = ?, last_inspected_on = ?,
		next_due_on = ?, notes = ?, updated_at = ? WHERE id = ?`,
		in.LocomotiveID, in.Kind, in.IntervalDays, in.LastInspectedOn, in.NextDueOn(), in.Notes, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateInspection", err)
	}
	return s.GetInspection(ctx, scope, id)
}

func (s *Store) DeleteInspections(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := linkedDeleteCond(scope)
	if err := s.deleteByIDs(ctx, "inspections", ids, cond, args...); err != nil {
		return wrapErr("DeleteInspections", err)
	}
	return nil
}
