package data

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер pgx для database/sql
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"lokomotiv_server_go/models"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// dialect описывает различия драйверов: плейсхолдеры и каталог миграций goose.
type dialect struct {
	goose string
	dir   string
	bind  int
}

var dialects = map[string]dialect{
	"sqlite3": {goose: "sqlite3", dir: "migrations/sqlite3", bind: sqlx.QUESTION},
	"sqlite":  {goose: "sqlite3", dir: "migrations/sqlite3", bind: sqlx.QUESTION},
	"pgx":     {goose: "postgres", dir: "migrations/postgres", bind: sqlx.DOLLAR},
}

// Store - доступ к БД всех ресурсов.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
}

// Open подключается к БД. driver: sqlite3 (mattn), sqlite (modernc, без cgo) или pgx.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, fmt.Errorf("Open: неизвестный драйвер %q", driver)
	}
	db, err := sqlx.Open(driver, sqliteDSN(driver, dsn))
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("Open: ping: %w", err)
	}
	if driver != "pgx" {
		// SQLite не допускает параллельной записи из нескольких соединений.
		db.SetMaxOpenConns(1)
		var fk int
		if err := db.GetContext(ctx, &fk, "PRAGMA foreign_keys"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("Open: foreign_keys: %w", err)
		}
		if fk != 1 {
			_ = db.Close()
			return nil, fmt.Errorf("Open: внешние ключи SQLite выключены в DSN %q", dsn)
		}
	}
	return New(db), nil
}

// sqliteDSN дописывает в DSN параметр, включающий внешние ключи на каждом соединении.
// У mattn это _foreign_keys, у modernc - _pragma=foreign_keys(1).
func sqliteDSN(driver, dsn string) string {
	var param string
	switch driver {
	case "sqlite3":
		if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
			return dsn
		}
		param = "_foreign_keys=on"
	case "sqlite":
		if strings.Contains(dsn, "foreign_keys(") {
			return dsn
		}
		param = "_pragma=foreign_keys(1)"
	default:
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// New оборачивает готовое подключение (в тестах - sqlite в памяти или sqlmock).
func New(db *sqlx.DB) *Store {
	d, ok := dialects[db.DriverName()]
	if !ok {
		d = dialects["sqlite3"]
	}
	return &Store{db: db, dialect: d, now: time.Now}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock подменяет источник текущего времени (для вычисления сроков).
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Ping проверяет доступность БД.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate применяет встроенные миграции goose для текущего диалекта.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.dialect.goose); err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	if err := goose.UpContext(ctx, s.db.DB, s.dialect.dir); err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	return nil
}

func (s *Store) rebind(q string) string {
	return sqlx.Rebind(s.dialect.bind, q)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// today - текущая дата в формате YYYY-MM-DD.
func (s *Store) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// withTx выполняет fn в транзакции: commit при успехе, rollback при ошибке или панике.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// classify сопоставляет ошибки ограничений драйверов с ошибками модели.
func classify(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return models.ErrConflict
		case sqlite3.ErrConstraintForeignKey:
			return models.ErrReferenced
		}
	}
	var me *msqlite.Error
	if errors.As(err, &me) {
		switch me.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return models.ErrConflict
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return models.ErrReferenced
		}
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case "23505":
			return models.ErrConflict
		case "23503":
			return models.ErrReferenced
		}
	}
	return nil
}

// wrapErr добавляет имя операции и, если возможно, ошибку модели.
func wrapErr(op string, err error) error {
	if kind := classify(err); kind != nil {
		return fmt.Errorf("%s: %w (%v)", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// listQuery накапливает условия WHERE и их аргументы.
type listQuery struct {
	where []string
	args  []any
}

func (q *listQuery) add(cond string, args ...any) {
	q.where = append(q.where, cond)
	q.args = append(q.args, args...)
}

// search добавляет регистронезависимый поиск подстроки по нескольким колонкам.
func (q *listQuery) search(text string, cols ...string) {
	text = strings.TrimSpace(text)
	if text == "" || len(cols) == 0 {
		return
	}
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = "LOWER(" + c + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	q.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (q *listQuery) clause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// page выбирает страницу в dest и возвращает общее число строк.
func (s *Store) page(ctx context.Context, dest any, cols, from string, q *listQuery, order string, limit, offset int) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, s.rebind("SELECT COUNT(*) FROM "+from+q.clause()), q.args...); err != nil {
		return 0, err
	}
	query := "SELECT " + cols + " FROM " + from + q.clause() + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	args := append(append([]any{}, q.args...), limit, offset)
	if err := s.db.SelectContext(ctx, dest, s.rebind(query), args...); err != nil {
		return 0, err
	}
	return total, nil
}

// insert выполняет INSERT ... RETURNING id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowxContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// exec выполняет изменение и возвращает число затронутых строк.
func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// deleteByIDs удаляет строки по списку ID в одной транзакции. Если хотя бы одной
// строки нет (или она вне области видимости), ничего не удаляется и возвращается ErrNotFound.
func (s *Store) deleteByIDs(ctx context.Context, table string, ids []int64, scopeCond string, scopeArgs ...any) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	if scopeCond != "" {
		query += " AND " + scopeCond
		args = append(args, scopeArgs...)
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return models.ErrNotFound
		}
		return nil
	})
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orgCond - условие области видимости по колонке организации.
func orgCond(scope models.Scope, col string) (string, []any) {
	if scope.Unrestricted() {
		return "", nil
	}
	return col + " = ?", []any{*scope.OrganizationID}
}

// requireOrganization проверяет, что организация существует и доступна в scope.
func (s *Store) requireOrganization(ctx context.Context, scope models.Scope, field string, id int64) error {
	if !scope.Unrestricted() && *scope.OrganizationID != id {
		return models.Unavailable(field)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, s.rebind("SELECT COUNT(*) FROM organizations WHERE id = ?"), id); err != nil {
		return err
	}
	if n == 0 {
		return models.Unavailable(field)
	}
	return nil
}

// requireLocomotive проверяет, что локомотив существует и принадлежит организации из scope.
func (s *Store) requireLocomotive(ctx context.Context, scope models.Scope, id int64) error {
	q := &listQuery{}
	q.add("id = ?", id)
	if cond, args := orgCond(scope, "organization_id"); cond != "" {
		q.add(cond, args...)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, s.rebind("SELECT COUNT(*) FROM locomotives"+q.clause()), q.args...); err != nil {
		return err
	}
	if n == 0 {
		return models.Unavailable("locomotiveId")
	}
	return nil
}
