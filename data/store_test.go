package data

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

var dbSeq int64

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	db, err := sqlx.Open("sqlite3", name)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	s.SetClock(func() time.Time { return fixedNow })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func params() filter.Params {
	return filter.Params{Page: 1, PageSize: filter.DefaultPageSize, Values: map[string]string{}}
}

func scopeOf(id int64) models.Scope { return models.Scope{OrganizationID: &id} }

func seedOrganization(t *testing.T, s *Store, code string) *models.Organization {
	t.Helper()
	org, err := s.CreateOrganization(context.Background(), &models.OrganizationInput{Name: "Depo " + code, Code: code})
	require.NoError(t, err)
	return org
}

func seedLocomotive(t *testing.T, s *Store, orgID int64, number string) *models.Locomotive {
	t.Helper()
	loco, err := s.CreateLocomotive(context.Background(), models.Scope{}, &models.LocomotiveInput{
		Number: number, Model: "2TE10M", OrganizationID: orgID, Status: models.LocomotiveActive,
	})
	require.NoError(t, err)
	return loco
}

func TestListQuery(t *testing.T) {
	q := &listQuery{}
	assert.Equal(t, "", q.clause())

	q.add("a = ?", 1)
	q.search("50%_X", "name", "code")
	assert.Equal(t, ` WHERE a = ? AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\')`, q.clause())
	assert.Equal(t, []any{1, `%50\%\_x%`, `%50\%\_x%`}, q.args)

	q.search("   ", "name")
	assert.Len(t, q.args, 3)
}

func TestRebindForPostgres(t *testing.T) {
	s := &Store{dialect: dialects["pgx"]}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", s.rebind("SELECT 1 WHERE a = ? AND b = ?"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, models.ErrConflict},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, models.ErrReferenced},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, models.ErrConflict},
		{"postgres foreign key", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"}), models.ErrReferenced},
		{"other", errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}

	err := wrapErr("CreateLocomotive", &pgconn.PgError{Code: "23505"})
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestDeleteRollsBackOnDriverError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	s := New(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM delays WHERE id IN (?, ?)")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = s.DeleteDelays(context.Background(), models.Scope{}, []int64{1, 2, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeleteDelays")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRowRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	s := New(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM components").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err = s.DeleteComponents(context.Background(), models.Scope{}, []int64{4, 5})
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSurfacesDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := New(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("connection reset"))

	_, _, err = s.ListLocomotives(context.Background(), models.Scope{}, params())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListLocomotives")
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
