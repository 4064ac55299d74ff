package xdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// copyFrom грузит строки через COPY на сыром pgx соединении.
func (p *pool) copyFrom(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("db.Conn: %w", err)
	}
	defer conn.Close()

	var copied int64
	err = conn.Raw(func(driverConn interface{}) error {
		stdConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}

		tx, err := stdConn.Conn().Begin(ctx)
		if err != nil {
			return fmt.Errorf("conn.Begin: %w", err)
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		if _, err = tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{table}.Sanitize()); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}

		copied, err = tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("tx.CopyFrom: %w", err)
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return 0, err
	}

	return copied, nil
}
