package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const classificatorCols = `id, name, description, elements_json, created_at, updated_at`

// Классификаторы общие для всех организаций, scope к ним не применяется.

func (s *Store) ListClassificators(ctx context.Context, p filter.Params) ([]models.Classificator, int, error) {
	q := &listQuery{}
	q.search(p.Search, "name", "description")

	items := []models.Classificator{}
	total, err := s.page(ctx, &items, classificatorCols, "classificators", q, "name ASC, id ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListClassificators: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].LoadJsonProperties()
	}
	return items, total, nil
}

func (s *Store) GetClassificator(ctx context.Context, id int64) (*models.Classificator, error) {
	c := &models.Classificator{}
	err := s.db.GetContext(ctx, c, s.rebind("SELECT "+classificatorCols+" FROM classificators WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetClassificator: ошибка получения ID %d: %w", id, err)
	}
	c.LoadJsonProperties()
	return c, nil
}

// GetClassificatorsByIDs загружает классификаторы, на которые ссылаются столбцы бюллетеня.
func (s *Store) GetClassificatorsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Classificator, error) {
	out := make(map[int64]*models.Classificator)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In("SELECT "+classificatorCols+" FROM classificators WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("GetClassificatorsByIDs: %w", err)
	}
	var items []models.Classificator
	if err := s.db.SelectContext(ctx, &items, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("GetClassificatorsByIDs: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].LoadJsonProperties()
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

func (s *Store) CreateClassificator(ctx context.Context, in *models.ClassificatorInput) (*models.Classificator, error) {
	c := &models.Classificator{Name: in.Name, Description: in.Description, Elements: in.Elements}
	if err := c.UpdateJsonProperties(); err != nil {
		return nil, fmt.Errorf("CreateClassificator: %w", err)
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO classificators (name, description, elements_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`, c.Name, c.Description, c.ElementsJson, now, now)
	if err != nil {
		return nil, wrapErr("CreateClassificator", err)
	}
	return s.GetClassificator(ctx, id)
}

// UpdateClassificator заменяет название, описание и список элементов.
func (s *Store) UpdateClassificator(ctx context.Context, id int64, in *models.ClassificatorInput) (*models.Classificator, error) {
	c := &models.Classificator{ID: id, Name: in.Name, Description: in.Description, Elements: in.Elements}
	if err := c.UpdateJsonProperties(); err != nil {
		return nil, fmt.Errorf("UpdateClassificator: %w", err)
	}
	n, err := s.exec(ctx, `UPDATE classificators SET name = ?, description = ?, elements_json = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Description, c.ElementsJson, s.timestamp(), id)
	if err != nil {
		return nil, wrapErr("UpdateClassificator", err)
	}
	if n == 0 {
		return nil, models.ErrNotFound
	}
	return s.GetClassificator(ctx, id)
}

// DeleteClassificators удаляет классификаторы. Если на классификатор ссылается столбец
// какого-либо бюллетеня, возвращается ErrReferenced.
func (s *Store) DeleteClassificators(ctx context.Context, ids []int64) error {
	used, err := s.classificatorsInUse(ctx)
	if err != nil {
		return fmt.Errorf("DeleteClassificators: %w", err)
	}
	for _, id := range ids {
		if used[id] {
			return fmt.Errorf("DeleteClassificators: классификатор %d: %w", id, models.ErrReferenced)
		}
	}
	if err := s.deleteByIDs(ctx, "classificators", ids, ""); err != nil {
		return wrapErr("DeleteClassificators", err)
	}
	return nil
}

func (s *Store) classificatorsInUse(ctx context.Context) (map[int64]bool, error) {
	var bulletins []models.Bulletin
	if err := s.db.SelectContext(ctx, &bulletins, `SELECT id, columns_json FROM bulletins`); err != nil {
		return nil, err
	}
	used := make(map[int64]bool)
	for i := range bulletins {
		bulletins[i].LoadJsonProperties()
		for _, id := range bulletins[i].ClassificatorIDs() {
			used[id] = true
		}
	}
	return used, nil
}
