package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/store/xdb"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	ctx := context.Background()
	pool, err := xdb.Open(ctx, xdb.Config{
		Driver: xdb.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "air_quality.db"),
	})
	if err != nil {
		t.Fatalf("xdb.Open: %v", err)
	}

	s := NewStore(pool)
	t.Cleanup(func() { _ = s.Close() })

	if err = s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return s
}

func testRows() []*domain.AirQualityRow {
	return []*domain.AirQualityRow{
		{ComInsee: "01001", Commune: "L'Abergement-Clémenciat", Population: domain.NewNullFloat(767), Annee: domain.NewNullInt(2004), NO2: domain.NewNullFloat(12.5)},
		{ComInsee: "01002", Commune: "L'Abergement-de-Varey", Population: domain.NewNullFloat(241), Annee: domain.NewNullInt(2004), NO2: domain.NewNullFloat(7.5)},
		{ComInsee: "01001", Commune: "L'Abergement-Clémenciat", Population: domain.NewNullFloat(770), Annee: domain.NewNullInt(2005)},
	}
}

func TestReplaceAirQualityIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 2; i++ {
		n, err := s.ReplaceAirQuality(ctx, testRows())
		if err != nil {
			t.Fatalf("ReplaceAirQuality #%d: %v", i, err)
		}
		if n != 3 {
			t.Fatalf("ReplaceAirQuality #%d: inserted %d rows, want 3", i, n)
		}
	}

	count, err := s.CountAirQuality(ctx)
	if err != nil {
		t.Fatalf("CountAirQuality: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows after reload, got %d", count)
	}

	rows, err := s.ListAirQuality(ctx, ListAirQualityOpts{})
	if err != nil {
		t.Fatalf("ListAirQuality: %v", err)
	}
	if rows[0].NO2.Float64 != 12.5 || !rows[0].NO2.Valid {
		t.Fatalf("unexpected no2 %+v", rows[0].NO2)
	}
	if rows[2].NO2.Valid {
		t.Fatalf("expected null no2 for 2005, got %+v", rows[2].NO2)
	}
}

func TestListAirQualityByYear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.ReplaceAirQuality(ctx, testRows()); err != nil {
		t.Fatalf("ReplaceAirQuality: %v", err)
	}

	year := 2004
	rows, err := s.ListAirQuality(ctx, ListAirQualityOpts{Year: &year, Distinct: true})
	if err != nil {
		t.Fatalf("ListAirQuality: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for 2004, got %d", len(rows))
	}
	if rows[0].ComInsee != "01001" || rows[1].ComInsee != "01002" {
		t.Fatalf("unexpected order: %s, %s", rows[0].ComInsee, rows[1].ComInsee)
	}

	years, err := s.ListYears(ctx)
	if err != nil {
		t.Fatalf("ListYears: %v", err)
	}
	if len(years) != 2 || years[0] != 2004 || years[1] != 2005 {
		t.Fatalf("unexpected years %v", years)
	}
}

func TestSummaryByYear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.ReplaceAirQuality(ctx, testRows()); err != nil {
		t.Fatalf("ReplaceAirQuality: %v", err)
	}

	summary, err := s.SummaryByYear(ctx)
	if err != nil {
		t.Fatalf("SummaryByYear: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 years, got %d", len(summary))
	}
	if summary[0].Annee != 2004 || summary[0].NbCommunes != 2 {
		t.Fatalf("unexpected 2004 summary %+v", summary[0])
	}
	if summary[0].AvgNO2 == nil || *summary[0].AvgNO2 != 10 {
		t.Fatalf("unexpected 2004 avg no2 %v", summary[0].AvgNO2)
	}
	if summary[1].AvgNO2 != nil {
		t.Fatalf("expected null avg no2 for 2005, got %v", *summary[1].AvgNO2)
	}
}

func TestVisitors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, nom := range []string{"Alice", "Bob"} {
		v, err := s.InsertVisitor(ctx, nom)
		if err != nil {
			t.Fatalf("InsertVisitor(%s): %v", nom, err)
		}
		if v.ID == 0 {
			t.Fatalf("expected generated id for %s", nom)
		}
	}

	visitors, err := s.ListVisitors(ctx, 1)
	if err != nil {
		t.Fatalf("ListVisitors: %v", err)
	}
	if len(visitors) != 1 || visitors[0].Nom != "Bob" {
		t.Fatalf("unexpected visitors %+v", visitors)
	}
}

func TestWrapErr(t *testing.T) {
	if err := wrapErr(fmt.Errorf("get: %w", sql.ErrNoRows)); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("expected ErrDBNotFound, got %v", err)
	}
	if err := wrapErr(errors.New("boom")); errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("unexpected mapping for generic error")
	}
	if err := wrapErr(sql.ErrConnDone); !errors.Is(err, constants.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
