package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Dialect identifies the SQL backend behind a Provider.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn runs queries written with ? placeholders against the pool or a
// transaction, rewriting them for the active dialect.
type Conn struct {
	ex      Executor
	dialect Dialect
}

func (c Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.ex.ExecContext(ctx, rebind(c.dialect, query), args...)
}

func (c Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.ex.QueryContext(ctx, rebind(c.dialect, query), args...)
}

func (c Conn) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.ex.QueryRowContext(ctx, rebind(c.dialect, query), args...)
}

// Provider owns the process-wide connection pool.
type Provider struct {
	Conn
	DB   *sql.DB
	pool *pgxpool.Pool
}

// Open picks the backend from databaseURL:
//   - postgres:// or postgresql:// opens a pgx pool
//   - sqlite://path, sqlite:path, file:path or a bare path opens an embedded database
func Open(ctx context.Context, databaseURL string) (*Provider, error) {
	url := strings.TrimSpace(databaseURL)
	if url == "" {
		return nil, errors.New("empty database url")
	}
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return openPostgres(ctx, url)
	}
	return openSQLite(ctx, url)
}

func openPostgres(ctx context.Context, url string) (*Provider, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	return &Provider{
		Conn: Conn{ex: sqlDB, dialect: DialectPostgres},
		DB:   sqlDB,
		pool: pool,
	}, nil
}

func openSQLite(ctx context.Context, url string) (*Provider, error) {
	path := url
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		path = strings.TrimPrefix(path, prefix)
	}
	memory := strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}

	if memory {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	return &Provider{
		Conn: Conn{ex: sqlDB, dialect: DialectSQLite},
		DB:   sqlDB,
	}, nil
}

// Dialect is exposed for schema management only.
func (p *Provider) Dialect() Dialect {
	return p.dialect
}

// Rebind converts ? placeholders into the active dialect's syntax.
func (p *Provider) Rebind(query string) string {
	return rebind(p.dialect, query)
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

func (p *Provider) Close() {
	p.DB.Close()
	if p.pool != nil {
		p.pool.Close()
	}
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic.
func (p *Provider) WithTx(ctx context.Context, fn func(tx Conn) error) (err error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(Conn{ex: tx, dialect: p.dialect}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func rebind(d Dialect, query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsIntegrityViolation reports unique, check, not-null and foreign key
// failures on either backend.
func IsIntegrityViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}

	return false
}
