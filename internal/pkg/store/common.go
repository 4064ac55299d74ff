package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/airquality/internal/pkg/constants"
)

const (
	tableAirQuality = "air_quality"
	tableVisitors   = "visiteurs"
)

var mapping = map[error]error{
	pgx.ErrNoRows: constants.ErrDBNotFound,
	sql.ErrNoRows: constants.ErrDBNotFound,

	sql.ErrConnDone:   constants.ErrStoreUnavailable,
	driver.ErrBadConn: constants.ErrStoreUnavailable,
}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект с плейсхолдерами драйвера.
func (s *store) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(s.pool.Placeholder())
}
