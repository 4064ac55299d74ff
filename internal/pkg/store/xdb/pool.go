package xdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/ougirez/airquality/internal/pkg/constants"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Driver string

const (
	DriverPostgres Driver = "pgx"
	DriverSQLite   Driver = "sqlite"
)

type Config struct {
	Driver   Driver
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	// Path файл базы для sqlite, ":memory:" тоже подходит.
	Path string
}

// Pool тонкая обертка над sqlx, принимает squirrel запросы.
type Pool interface {
	Getx(ctx context.Context, dest interface{}, query sq.Sqlizer) error
	Selectx(ctx context.Context, dest interface{}, query sq.Sqlizer) error
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	// ReplaceAll в одной транзакции удаляет все строки таблицы и вставляет rows.
	ReplaceAll(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error)
	Driver() Driver
	Placeholder() sq.PlaceholderFormat
	Ping(ctx context.Context) error
	Close() error
}

type pool struct {
	db     *sqlx.DB
	driver Driver
}

func Open(ctx context.Context, cfg Config) (Pool, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		db, err = sqlx.Open(string(DriverPostgres), dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlx.Open: %w", err)
		}
	case DriverSQLite:
		if cfg.Path != ":memory:" {
			if err = os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("os.MkdirAll: %w", err)
			}
		}
		db, err = sqlx.Open(string(DriverSQLite), cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlx.Open: %w", err)
		}
		// sqlite не умеет параллельную запись, держим одно соединение.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Driver, constants.ErrUnknownDriver)
	}

	p := &pool{db: db, driver: cfg.Driver}
	if err = p.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}

	return p, nil
}

func (p *pool) Driver() Driver {
	return p.driver
}

func (p *pool) Placeholder() sq.PlaceholderFormat {
	if p.driver == DriverPostgres {
		return sq.Dollar
	}
	return sq.Question
}

func (p *pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *pool) Close() error {
	return p.db.Close()
}

func (p *pool) Getx(ctx context.Context, dest interface{}, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("query.ToSql: %w", err)
	}
	return p.db.GetContext(ctx, dest, q, args...)
}

func (p *pool) Selectx(ctx context.Context, dest interface{}, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("query.ToSql: %w", err)
	}
	return p.db.SelectContext(ctx, dest, q, args...)
}

func (p *pool) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return p.db.ExecContext(ctx, query, args...)
}

func (p *pool) ReplaceAll(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error) {
	plain := make([][]interface{}, len(rows))
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			pv, err := plainValue(v)
			if err != nil {
				return 0, fmt.Errorf("row %d column %s: %w", i, columns[j], err)
			}
			values[j] = pv
		}
		plain[i] = values
	}

	if p.driver == DriverPostgres {
		return p.copyFrom(ctx, table, columns, plain)
	}
	return p.insertBatch(ctx, table, columns, plain)
}

func (p *pool) insertBatch(ctx context.Context, table string, columns []string, rows [][]interface{}) (n int64, err error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("db.BeginTxx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}

	if len(rows) > 0 {
		q, _, err := sq.Insert(table).Columns(columns...).Values(rows[0]...).ToSql()
		if err != nil {
			return 0, fmt.Errorf("insert.ToSql: %w", err)
		}

		stmt, err := tx.PreparexContext(ctx, q)
		if err != nil {
			return 0, fmt.Errorf("tx.PreparexContext: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err = stmt.ExecContext(ctx, row...); err != nil {
				return 0, fmt.Errorf("stmt.ExecContext: %w", err)
			}
			n++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}
	return n, nil
}

func plainValue(v interface{}) (interface{}, error) {
	if valuer, ok := v.(driver.Valuer); ok {
		return valuer.Value()
	}
	return v, nil
}
