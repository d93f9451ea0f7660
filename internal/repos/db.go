package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"studioapi/internal/config"
	applog "studioapi/internal/log"
)

var reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB is the process-wide connection pool. It is built once in main and
// handed to the repositories; there is no package-level instance.
type DB struct {
	*sqlx.DB
	writeFailures atomic.Uint64
}

// NewDB wraps an already opened handle.
func NewDB(db *sqlx.DB) *DB { return &DB{DB: db} }

func OpenDB(cfg config.Config) (*DB, error) {
	dsn := cfg.DSN()
	db, err := sqlx.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	size := cfg.DBPoolSize
	recycle := cfg.DBPoolRecycle
	if cfg.DBDriver == "sqlite" && dsn == ":memory:" {
		// every connection to ":memory:" is a separate database
		size, recycle = 1, 0
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(recycle)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if cfg.DBMigrate {
		if err := RunMigrations(context.Background(), db.DB, cfg.DBDriver); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
	}

	applog.Info(nil, "db.open", map[string]any{"driver": cfg.DBDriver, "pool_size": size, "recycle": recycle.String()})
	return NewDB(db), nil
}

// ExecuteQuery runs a statement with :name placeholders and returns every row
// as a column->value map. Rows are drained and closed before returning so the
// connection goes back to the pool on both paths. Errors are logged and
// returned unchanged; there is no retry.
func (d *DB) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	q, args, err := d.bind(query, params)
	if err != nil {
		applog.Error(nil, "db.query.error", err, map[string]any{"query": query})
		return nil, err
	}
	rows, err := d.QueryxContext(ctx, q, args...)
	if err != nil {
		applog.Error(nil, "db.query.error", err, map[string]any{"query": query})
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			applog.Error(nil, "db.query.error", err, map[string]any{"query": query})
			return nil, err
		}
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		applog.Error(nil, "db.query.error", err, map[string]any{"query": query})
		return nil, err
	}
	return out, nil
}

// Get scans a single row into dest. sql.ErrNoRows is returned as-is and is
// not logged.
func (d *DB) Get(ctx context.Context, dest any, query string, params map[string]any) error {
	q, args, err := d.bind(query, params)
	if err != nil {
		applog.Error(nil, "db.query.error", err, map[string]any{"query": query})
		return err
	}
	err = d.GetContext(ctx, dest, q, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		applog.Error(nil, "db.query.error", err, map[string]any{"query": query})
	}
	return err
}

// InsertRow writes one row built from fields into table inside its own
// transaction. Failures are logged and counted but never returned: callers
// cannot observe whether the row landed.
func (d *DB) InsertRow(ctx context.Context, table string, fields map[string]any) {
	if err := d.insertRow(ctx, table, fields); err != nil {
		n := d.writeFailures.Add(1)
		applog.Error(nil, "db.insert.error", err, map[string]any{"table": table, "write_failures": n})
	}
}

// WriteFailures reports how many InsertRow calls have failed since start.
func (d *DB) WriteFailures() uint64 { return d.writeFailures.Load() }

func (d *DB) insertRow(ctx context.Context, table string, fields map[string]any) error {
	if !reIdent.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to insert into %s", table)
	}
	cols := make([]string, 0, len(fields))
	for k := range fields {
		if !reIdent.MatchString(k) {
			return fmt.Errorf("invalid column name %q", k)
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		table, strings.Join(cols, ", "), strings.Join(cols, ", :"))

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, query, fields); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return tx.Commit()
}

func (d *DB) bind(query string, params map[string]any) (string, []any, error) {
	if params == nil {
		params = map[string]any{}
	}
	q, args, err := sqlx.Named(query, params)
	if err != nil {
		return "", nil, err
	}
	return d.Rebind(q), args, nil
}
