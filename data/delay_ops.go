package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const delayCols = `x.id, x.locomotive_id, l.number AS locomotive_number, x.train_number, x.station, x.reason,
	x.delay_minutes, x.occurred_on, x.created_at, x.updated_at`

const delayFrom = `delays x JOIN locomotives l ON l.id = x.locomotive_id`

// ListDelays возвращает страницу задержек, новые сверху. from/to фильтруют по дате задержки.
func (s *Store) ListDelays(ctx context.Context, scope models.Scope, p filter.Params) ([]models.DelayEntry, int, error) {
	q := &listQuery{}
	linkedScope(q, scope, p, "x")
	dateRange(q, p, "x.occurred_on")
	q.search(p.Search, "l.number", "x.train_number", "x.station", "x.reason")

	items := []models.DelayEntry{}
	total, err := s.page(ctx, &items, delayCols, delayFrom, q, "x.occurred_on DESC, x.id DESC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListDelays: ошибка выборки: %w", err)
	}
	return items, total, nil
}

func (s *Store) GetDelay(ctx context.Context, scope models.Scope, id int64) (*models.DelayEntry, error) {
	q := &listQuery{}
	q.add("x.id = ?", id)
	linkedScope(q, scope, filter.Params{}, "x")
	item := &models.DelayEntry{}
	err := s.db.GetContext(ctx, item, s.rebind("SELECT "+delayCols+" FROM "+delayFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetDelay: ошибка получения ID %d: %w", id, err)
	}
	return item, nil
}

func (s *Store) CreateDelay(ctx context.Context, scope models.Scope, in *models.DelayEntryInput) (*models.DelayEntry, error) {
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO delays (locomotive_id, train_number, station, reason, delay_minutes, occurred_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.LocomotiveID, in.TrainNumber, in.Station, in.Reason, in.DelayMinutes, in.OccurredOn, now, now)
	if err != nil {
		return nil, wrapErr("CreateDelay", err)
	}
	return s.GetDelay(ctx, scope, id)
}

func (s *Store) UpdateDelay(ctx context.Context, scope models.Scope, id int64, in *models.DelayEntryInput) (*models.DelayEntry, error) {
	if _, err := s.GetDelay(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	_, err := s.exec(ctx, `UPDATE delays SET locomotive_id = ?, train_number = ?, station = ?, reason = ?, delay_minutes = ?,
		occurred_on = ?, updated_at = ? WHERE id = ?`,
		in.LocomotiveID, in.TrainNumber, in.Station, in.Reason, in.DelayMinutes, in.OccurredOn, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateDelay", err)
	}
	return s.GetDelay(ctx, scope, id)
}

func (s *Store) DeleteDelays(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := linkedDeleteCond(scope)
	if err := s.deleteByIDs(ctx, "delays", ids, cond, args...); err != nil {
		return wrapErr("DeleteDelays", err)
	}
	return nil
}
