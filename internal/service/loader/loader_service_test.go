package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/ougirez/airquality/internal/pkg/store/xdb"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	pool, err := xdb.Open(context.Background(), xdb.Config{
		Driver: xdb.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "aq.db"),
	})
	if err != nil {
		t.Fatalf("xdb.Open: %v", err)
	}
	s := store.NewStore(pool)
	t.Cleanup(func() { _ = s.Close() })

	return NewLoaderService(s), s
}

func writeFile(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cleaned_air_quality_with_year.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	return path
}

func header(extra ...string) string {
	cols := []string{"COM Insee", "Commune", "Population", "Année"}
	for _, p := range domain.AllPollutants {
		cols = append(cols, `"`+p.SourceColumn()+`"`)
	}
	return strings.Join(append(cols, extra...), ",")
}

func row(code, name, pop, year, value string) string {
	cells := []string{code, name, pop, year}
	for range domain.AllPollutants {
		cells = append(cells, value)
	}
	return strings.Join(cells, ",")
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)

	path := writeFile(t,
		header("Colonne inconnue"),
		row("01001", "A", "767", "2004", "12.5")+",x",
		row("01002", "B", "241", "2004", "7.5")+",y",
		row("01001", "A", "770", "2005", "")+",z",
	)

	for i := 0; i < 2; i++ {
		report, err := svc.Load(ctx, path)
		if err != nil {
			t.Fatalf("Load #%d: %v", i, err)
		}
		if report.Inserted != 3 || report.Count != 3 {
			t.Fatalf("Load #%d: inserted=%d count=%d", i, report.Inserted, report.Count)
		}
		if len(report.Missing) != 0 {
			t.Fatalf("unexpected missing columns %v", report.Missing)
		}
	}

	rows, err := s.ListAirQuality(ctx, store.ListAirQualityOpts{})
	if err != nil {
		t.Fatalf("ListAirQuality: %v", err)
	}
	if rows[0].SOMO35Pop.Float64 != 12.5 || rows[1].AOT40.Float64 != 7.5 {
		t.Fatalf("unexpected values %+v %+v", rows[0].SOMO35Pop, rows[1].AOT40)
	}
	if rows[2].PM25.Valid || rows[2].Annee.Int64 != 2005 {
		t.Fatalf("unexpected 2005 row %+v", rows[2])
	}
}

func TestLoadMissingColumnsAreNull(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)

	path := writeFile(t,
		"COM Insee,Commune,Population,Année",
		"01001,A,767,2004",
	)

	report, err := svc.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(report.Missing) != len(domain.AllPollutants) {
		t.Fatalf("expected %d missing columns, got %v", len(domain.AllPollutants), report.Missing)
	}

	rows, err := s.ListAirQuality(ctx, store.ListAirQualityOpts{})
	if err != nil {
		t.Fatalf("ListAirQuality: %v", err)
	}
	if len(rows) != 1 || rows[0].NO2.Valid {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestLoadBadValueKeepsPreviousContent(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)

	good := writeFile(t, header(), row("01001", "A", "767", "2004", "1"))
	if _, err := svc.Load(ctx, good); err != nil {
		t.Fatalf("Load good: %v", err)
	}

	bad := writeFile(t, header(), row("01001", "A", "beaucoup", "2004", "1"))
	if _, err := svc.Load(ctx, bad); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}

	count, err := s.CountAirQuality(ctx)
	if err != nil {
		t.Fatalf("CountAirQuality: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected previous content to stay, got %d rows", count)
	}
}

func TestLoadMissingFile(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, constants.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}
