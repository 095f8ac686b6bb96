package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const replacementCols = `x.id, x.locomotive_id, l.number AS locomotive_number, x.oil_type, x.section, x.interval_days,
	x.last_replaced_on, x.next_due_on, x.quantity_liters, x.created_at, x.updated_at`

const replacementFrom = `replacement_oils x JOIN locomotives l ON l.id = x.locomotive_id`

// ListReplacementOils возвращает график замены масла по ближайшему сроку. Фильтр tab как у осмотров.
func (s *Store) ListReplacementOils(ctx context.Context, scope models.Scope, p filter.Params) ([]models.ReplacementOil, int, error) {
	today := s.today()
	q := &listQuery{}
	linkedScope(q, scope, p, "x")
	dueTab(q, p.Get(filter.KeyTab), today)
	q.search(p.Search, "l.number", "x.oil_type", "x.section")

	items := []models.ReplacementOil{}
	total, err := s.page(ctx, &items, replacementCols, replacementFrom, q, "x.next_due_on ASC, x.id ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListReplacementOils: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].Derive(today)
	}
	return items, total, nil
}

func (s *Store) GetReplacementOil(ctx context.Context, scope models.Scope, id int64) (*models.ReplacementOil, error) {
	q := &listQuery{}
	q.add("x.id = ?", id)
	linkedScope(q, scope, filter.Params{}, "x")
	item := &models.ReplacementOil{}
	err := s.db.GetContext(ctx, item, s.rebind("SELECT "+replacementCols+" FROM "+replacementFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetReplacementOil: ошибка получения ID %d: %w", id, err)
	}
	item.Derive(s.today())
	return item, nil
}

func (s *Store) CreateReplacementOil(ctx context.Context, scope models.Scope, in *models.ReplacementOilInput) (*models.ReplacementOil, error) {
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO replacement_oils (locomotive_id, oil_type, section, interval_days, last_replaced_on, next_due_on, quantity_liters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.LocomotiveID, in.OilType, in.Section, in.IntervalDays, in.LastReplacedOn, in.NextDueOn(), in.QuantityLiters, now, now)
	if err != nil {
		return nil, wrapErr("CreateReplacementOil", err)
	}
	return s.GetReplacementOil(ctx, scope, id)
}

func (s *Store) UpdateReplacementOil(ctx context.Context, scope models.Scope, id int64, in *models.ReplacementOilInput) (*models.ReplacementOil, error) {
	if _, err := s.GetReplacementOil(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	_, err := s.exec(ctx, `UPDATE replacement_oils SET locomotive_id = ?, oil_type = ?, section = ?, interval_days = ?,
		last_replaced_on = ?, next_due_on = ?, quantity_liters = ?, updated_at = ? WHERE id = ?`,
		in.LocomotiveID, in.OilType, in.Section, in.IntervalDays, in.LastReplacedOn, in.NextDueOn(), in.QuantityLiters, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateReplacementOil", err)
	}
	return s.GetReplacementOil(ctx, scope, id)
}

func (s *Store) DeleteReplacementOils(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := linkedDeleteCond(scope)
	if err := s.deleteByIDs(ctx, "replacement_oils", ids, cond, args...); err != nil {
		return wrapErr("DeleteReplacementOils", err)
	}
	return nil
}
