package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/airquality/internal/domain"
)

type ListAirQualityOpts struct {
	Year *int
	// Distinct убирает дубли строк (без id), как для карты.
	Distinct bool
}

type AirQualityStore interface {
	ReplaceAirQuality(ctx context.Context, rows []*domain.AirQualityRow) (int64, error)
	CountAirQuality(ctx context.Context) (int64, error)
	ListAirQuality(ctx context.Context, opts ListAirQualityOpts) ([]*domain.AirQualityRow, error)
	ListYears(ctx context.Context) ([]int, error)
	SummaryByYear(ctx context.Context) ([]*domain.YearSummary, error)
}

var airQualityColumns = func() []string {
	cols := []string{"id", "com_insee", "commune", "population", "annee"}
	for _, p := range domain.AllPollutants {
		cols = append(cols, p.Key())
	}
	return cols
}()

// ReplaceAirQuality заменяет содержимое таблицы целиком.
func (s *store) ReplaceAirQuality(ctx context.Context, rows []*domain.AirQualityRow) (int64, error) {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Args())
	}

	n, err := s.pool.ReplaceAll(ctx, tableAirQuality, airQualityColumns[1:], values)
	if err != nil {
		return 0, fmt.Errorf("pool.ReplaceAll: %w", err)
	}

	return n, nil
}

func (s *store) CountAirQuality(ctx context.Context) (int64, error) {
	query := s.builder().Select("COUNT(*)").From(tableAirQuality)

	var count int64
	if err := s.pool.Getx(ctx, &count, query); err != nil {
		return 0, wrapErr(err)
	}

	return count, nil
}

func (s *store) ListAirQuality(ctx context.Context, opts ListAirQualityOpts) ([]*domain.AirQualityRow, error) {
	var query sq.SelectBuilder
	if opts.Distinct {
		query = s.builder().Select(airQualityColumns[1:]...).
			Distinct().
			From(tableAirQuality).
			OrderBy("annee", "com_insee")
	} else {
		query = s.builder().Select(airQualityColumns...).
			From(tableAirQuality).
			OrderBy("id")
	}

	if opts.Year != nil {
		query = query.Where(sq.Eq{"annee": *opts.Year})
	}

	var selected []*domain.AirQualityRow
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListYears(ctx context.Context) ([]int, error) {
	query := s.builder().Select("annee").
		Distinct().
		From(tableAirQuality).
		Where(sq.NotEq{"annee": nil}).
		OrderBy("annee")

	var years []int
	if err := s.pool.Selectx(ctx, &years, query); err != nil {
		return nil, wrapErr(err)
	}

	return years, nil
}

// SummaryByYear число коммун и средний NO2 по годам.
func (s *store) SummaryByYear(ctx context.Context) ([]*domain.YearSummary, error) {
	query := s.builder().Select(
		"annee",
		"COUNT(*) AS nb_communes",
		"CAST(AVG(no2) AS DOUBLE PRECISION) AS avg_no2",
	).
		From(tableAirQuality).
		Where(sq.NotEq{"annee": nil}).
		GroupBy("annee").
		OrderBy("annee")

	var selected []*domain.YearSummary
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
