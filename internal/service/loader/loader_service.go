package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
)

type Service struct {
	store store.Store
}

func NewLoaderService(store store.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Path     string
	Inserted int64
	Count    int64
	// Missing ожидаемые колонки, которых нет в файле, грузятся как NULL.
	Missing []string
	Summary []*domain.YearSummary
}

// expectedColumns заголовки очищенного CSV, которые попадают в air_quality.
func expectedColumns() []string {
	cols := []string{domain.ColumnComInsee, domain.ColumnCommune, domain.ColumnPopulation, domain.ColumnYear}
	for _, p := range domain.AllPollutants {
		cols = append(cols, p.SourceColumn())
	}
	return cols
}

// ReadHarmonized читает очищенный CSV в строки таблицы. Лишние колонки отбрасываются,
// ошибка приведения типа останавливает чтение.
func ReadHarmonized(r io.Reader) ([]*domain.AirQualityRow, []string, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty csv: %w", constants.ErrNoData)
		}
		return nil, nil, fmt.Errorf("csvutil.NewDecoder: %w", err)
	}

	present := make(map[string]struct{}, len(dec.Header()))
	for _, h := range dec.Header() {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range expectedColumns() {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}

	var rows []*domain.AirQualityRow
	for line := 2; ; line++ {
		row := new(domain.AirQualityRow)
		if err = dec.Decode(row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, missing, nil
}

// Load заменяет содержимое air_quality строками из очищенного CSV.
func (s *Service) Load(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, constants.ErrMissingFile)
		}
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	rows, missing, err := ReadHarmonized(f)
	if err != nil {
		return nil, fmt.Errorf("ReadHarmonized %s: %w", path, err)
	}
	for _, col := range missing {
		logger.Warnf(ctx, "column %q missing in %s, loaded as NULL", col, path)
	}

	if err = s.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("store.EnsureSchema: %w", err)
	}

	inserted, err := s.store.ReplaceAirQuality(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("store.ReplaceAirQuality: %w", err)
	}

	count, err := s.store.CountAirQuality(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.CountAirQuality: %w", err)
	}

	summary, err := s.store.SummaryByYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.SummaryByYear: %w", err)
	}

	logger.Infof(ctx, "loaded %d rows from %s, table has %d rows", inserted, path, count)
	for _, ys := range summary {
		avg := "n/a"
		if ys.AvgNO2 != nil {
			avg = fmt.Sprintf("%.2f", *ys.AvgNO2)
		}
		logger.Infof(ctx, "annee %d: %d communes, no2 moyen %s", ys.Annee, ys.NbCommunes, avg)
	}

	return &Report{
		Path:     path,
		Inserted: inserted,
		Count:    count,
		Missing:  missing,
		Summary:  summary,
	}, nil
}
