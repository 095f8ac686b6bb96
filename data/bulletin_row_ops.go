package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

const bulletinRowCols = `id, bulletin_id, values_json, values_text, created_at, updated_at`

// ListBulletinRows возвращает строки бюллетеня, видимого в scope.
func (s *Store) ListBulletinRows(ctx context.Context, scope models.Scope, bulletinID int64, p filter.Params) ([]models.BulletinRow, int, error) {
	if _, err := s.GetBulletin(ctx, scope, bulletinID); err != nil {
		return nil, 0, err
	}
	q := &listQuery{}
	q.add("bulletin_id = ?", bulletinID)
	q.search(p.Search, "values_text")

	items := []models.BulletinRow{}
	total, err := s.page(ctx, &items, bulletinRowCols, "bulletin_rows", q, "id ASC", p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListBulletinRows: ошибка выборки: %w", err)
	}
	for i := range items {
		items[i].LoadJsonProperties()
	}
	return items, total, nil
}

func (s *Store) GetBulletinRow(ctx context.Context, scope models.Scope, bulletinID, id int64) (*models.BulletinRow, error) {
	if _, err := s.GetBulletin(ctx, scope, bulletinID); err != nil {
		return nil, err
	}
	row := &models.BulletinRow{}
	err := s.db.GetContext(ctx, row, s.rebind("SELECT "+bulletinRowCols+" FROM bulletin_rows WHERE id = ? AND bulletin_id = ?"), id, bulletinID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetBulletinRow: ошибка получения ID %d: %w", id, err)
	}
	row.LoadJsonProperties()
	return row, nil
}

// CreateBulletinRow проверяет значения по столбцам бюллетеня и сохраняет строку.
func (s *Store) CreateBulletinRow(ctx context.Context, scope models.Scope, bulletinID int64, in *models.BulletinRowInput) (*models.BulletinRow, error) {
	row, err := s.prepareRow(ctx, scope, bulletinID, in)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO bulletin_rows (bulletin_id, values_json, values_text, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		bulletinID, row.ValuesJson, row.ValuesText, now, now)
	if err != nil {
		return nil, wrapErr("CreateBulletinRow", err)
	}
	return s.GetBulletinRow(ctx, scope, bulletinID, id)
}

func (s *Store) UpdateBulletinRow(ctx context.Context, scope models.Scope, bulletinID, id int64, in *models.BulletinRowInput) (*models.BulletinRow, error) {
	row, err := s.prepareRow(ctx, scope, bulletinID, in)
	if err != nil {
		return nil, err
	}
	n, err := s.exec(ctx, `UPDATE bulletin_rows SET values_json = ?, values_text = ?, updated_at = ? WHERE id = ? AND bulletin_id = ?`,
		row.ValuesJson, row.ValuesText, s.timestamp(), id, bulletinID)
	if err != nil {
		return nil, wrapErr("UpdateBulletinRow", err)
	}
	if n == 0 {
		return nil, models.ErrNotFound
	}
	return s.GetBulletinRow(ctx, scope, bulletinID, id)
}

func (s *Store) DeleteBulletinRows(ctx context.Context, scope models.Scope, bulletinID int64, ids []int64) error {
	if _, err := s.GetBulletin(ctx, scope, bulletinID); err != nil {
		return err
	}
	if err := s.deleteByIDs(ctx, "bulletin_rows", ids, "bulletin_id = ?", bulletinID); err != nil {
		return wrapErr("DeleteBulletinRows", err)
	}
	return nil
}

func (s *Store) prepareRow(ctx context.Context, scope models.Scope, bulletinID int64, in *models.BulletinRowInput) (*models.BulletinRow, error) {
	b, err := s.GetBulletin(ctx, scope, bulletinID)
	if err != nil {
		return nil, err
	}
	classificators, err := s.GetClassificatorsByIDs(ctx, b.ClassificatorIDs())
	if err != nil {
		return nil, err
	}
	if err := in.ValidateAgainst(b, classificators); err != nil {
		return nil, err
	}
	row := &models.BulletinRow{BulletinID: bulletinID, Values: in.Values}
	if err := row.UpdateJsonProperties(); err != nil {
		return nil, err
	}
	return row, nil
}
