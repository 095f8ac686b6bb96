package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const componentCols = `x.id, x.locomotive_id, l.number AS locomotive_number, x.component_name, x.serial_number,
	x.installed_on, x.measurements_json, x.created_at, x.updated_at`

const componentFrom = `components x JOIN locomotives l ON l.id = x.locomotive_id`

func (s *Store) ListComponents(ctx context.Context, scope models.Scope, p filter.Params) ([]models.ComponentRegistryEntry, int, error) {
	q := &listQuery{}
	linkedScope(q, scope, p, "x")
	q.search(p.Search, "l.number", "x.component_name", "x.serial_number")

	items := []models.ComponentRegistryEntry{}
	total, err := s.page(ctx, &items, componentCols, componentFrom, q, "l.number ASC, x.component_name ASC, x.id ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListComponents: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].LoadJsonProperties()
	}
	return items, total, nil
}

func (s *Store) GetComponent(ctx context.Context, scope models.Scope, id int64) (*models.ComponentRegistryEntry, error) {
	q := &listQuery{}
	q.add("x.id = ?", id)
	linkedScope(q, scope, filter.Params{}, "x")
	item := &models.ComponentRegistryEntry{}
	err := s.db.GetContext(ctx, item, s.rebind("SELECT "+componentCols+" FROM "+componentFrom+q.clause()), q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetComponent: ошибка получения ID %d: %w", id, err)
	}
	item.LoadJsonProperties()
	return item, nil
}

// CreateComponent сохраняет запись реестра. Замеры хранятся как JSON с исходными ключами.
func (s *Store) CreateComponent(ctx context.Context, scope models.Scope, in *models.ComponentInput) (*models.ComponentRegistryEntry, error) {
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	measurements, err := in.MeasurementsJSON()
	if err != nil {
		return nil, fmt.Errorf("CreateComponent: %w", err)
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO components (locomotive_id, component_name, serial_number, installed_on, measurements_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.LocomotiveID, in.ComponentName, in.SerialNumber, in.InstalledOn, measurements, now, now)
	if err != nil {
		return nil, wrapErr("CreateComponent", err)
	}
	return s.GetComponent(ctx, scope, id)
}

func (s *Store) UpdateComponent(ctx context.Context, scope models.Scope, id int64, in *models.ComponentInput) (*models.ComponentRegistryEntry, error) {
	if _, err := s.GetComponent(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.requireLocomotive(ctx, scope, in.LocomotiveID); err != nil {
		return nil, err
	}
	measurements, err := in.MeasurementsJSON()
	if err != nil {
		return nil, fmt.Errorf("UpdateComponent: %w", err)
	}
	_, err = s.exec(ctx, `UPDATE components SET locomotive_id = ?, component_name = ?, serial_number = ?, installed_on = ?,
		measurements_json = ?, updated_at = ? WHERE id = ?`,
		in.LocomotiveID, in.ComponentName, in.SerialNumber, in.InstalledOn, measurements, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateComponent", err)
	}
	return s.GetComponent(ctx, scope, id)
}

func (s *Store) DeleteComponents(ctx context.Context, scope models.Scope, ids []int64) error {
	cond, args := linkedDeleteCond(scope)
	if err := s.deleteByIDs(ctx, "components", ids, cond, args...); err != nil {
		return wrapErr("DeleteComponents", err)
	}
	return nil
}
