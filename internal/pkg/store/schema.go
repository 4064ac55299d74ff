package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/store/xdb"
)

func airQualityDDL(driver xdb.Driver) string {
	idType, realType := "SERIAL PRIMARY KEY", "DOUBLE PRECISION"
	if driver == xdb.DriverSQLite {
		idType, realType = "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	}

	cols := []string{
		"id " + idType,
		"com_insee TEXT",
		"commune TEXT",
		"population " + realType,
		"annee INTEGER",
	}
	for _, p := range domain.AllPollutants {
		cols = append(cols, p.Key()+" "+realType)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", tableAirQuality, strings.Join(cols, ",\n\t"))
}

func visitorsDDL(driver xdb.Driver) string {
	idType := "SERIAL PRIMARY KEY"
	if driver == xdb.DriverSQLite {
		idType = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\tid %s,\n\tnom VARCHAR(100)\n)", tableVisitors, idType)
}

// EnsureSchema создает таблицы, если их нет.
func (s *store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range []string{airQualityDDL(s.pool.Driver()), visitorsDDL(s.pool.Driver())} {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("pool.Exec: %w", err)
		}
	}
	return nil
}
