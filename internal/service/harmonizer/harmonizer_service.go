package harmonizer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type DedupPolicy string

const (
	DedupReport DedupPolicy = "report"
	DedupDrop   DedupPolicy = "drop"
)

type Service struct {
	rawDir     string
	outputPath string
	xlsxPath   string
	dedup      DedupPolicy
	readOpts   ReadOptions
}

func NewHarmonizerService(cfg config.CleanConfig) (*Service, error) {
	enc, err := LookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	return &Service{
		rawDir:     cfg.RawDir,
		outputPath: cfg.OutputPath,
		xlsxPath:   cfg.XLSXPath,
		dedup:      DedupPolicy(cfg.Dedup),
		readOpts:   ReadOptions{Fallback: enc, HeaderSkip: cfg.HeaderSkip},
	}, nil
}

type Report struct {
	Files             []string
	Skipped           []string
	Rows              int
	Columns           []string
	Duplicates        int
	DuplicatesDropped int
	Medians           map[string]float64
	Filled            map[string]int
	// EmptyColumns колонки загрязнителей без единого значения, остаются пустыми.
	EmptyColumns []string
	OutputPath   string
}

// Run читает сырые файлы, объединяет их и пишет очищенный CSV.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	paths, err := ListRawFiles(s.rawDir)
	if err != nil {
		return nil, err
	}

	df, report, err := s.Harmonize(ctx, paths)
	if err != nil {
		return nil, err
	}

	if err = writeCSV(s.outputPath, df, report.Columns); err != nil {
		return nil, fmt.Errorf("writeCSV: %w", err)
	}
	report.OutputPath = s.outputPath

	if s.xlsxPath != "" {
		if err = writeXLSX(s.xlsxPath, df, report.Columns); err != nil {
			return nil, fmt.Errorf("writeXLSX: %w", err)
		}
	}

	logger.Infof(ctx, "cleaned %d rows x %d columns from %d files into %s",
		report.Rows, len(report.Columns), len(report.Files), s.outputPath)
	return report, nil
}

// Harmonize объединяет файлы в один dataframe и заполняет пропуски.
func (s *Service) Harmonize(ctx context.Context, paths []string) (dataframe.DataFrame, *Report, error) {
	tables := make([]*RawTable, len(paths))
	readErrs := make([]error, len(paths))

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			t, err := ReadRawFile(path, s.readOpts)
			if err != nil {
				readErrs[i] = err
				return nil
			}
			tables[i] = t
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	report := &Report{
		Medians: make(map[string]float64),
		Filled:  make(map[string]int),
	}

	loaded := make([]*RawTable, 0, len(tables))
	for i, t := range tables {
		if readErrs[i] != nil {
			logger.Errorf(ctx, "skip %s: %s", paths[i], readErrs[i].Error())
			report.Skipped = append(report.Skipped, paths[i])
			continue
		}
		if t.Year == nil {
			logger.Warnf(ctx, "no year in file name %s, year left empty", filepath.Base(t.Path))
		}
		loaded = append(loaded, t)
		report.Files = append(report.Files, t.Path)
	}

	df, union, err := mergeTables(loaded)
	if err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("mergeTables: %w", err)
	}
	report.Columns = union

	if df.Nrow() == 0 {
		logger.Warnf(ctx, "no rows in %d raw files", len(paths))
		return df, report, nil
	}

	df, fills, err := fillMedians(df)
	if err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("fillMedians: %w", err)
	}
	for name, fill := range fills {
		if fill.AllNull {
			report.EmptyColumns = append(report.EmptyColumns, name)
			logger.Warnf(ctx, "column %q has no values, left empty", name)
			continue
		}
		report.Medians[name] = fill.Median
		report.Filled[name] = fill.Filled
	}
	sort.Strings(report.EmptyColumns)

	df = fillDefaults(df)

	dups := duplicateRows(df)
	report.Duplicates = len(dups)
	if len(dups) > 0 {
		logger.Warnf(ctx, "%d duplicate rows on (COM Insee, Année)", len(dups))
		if s.dedup == DedupDrop {
			df = dropRows(df, dups)
			if df.Err != nil {
				return dataframe.DataFrame{}, nil, fmt.Errorf("dropRows: %w", df.Err)
			}
			report.DuplicatesDropped = len(dups)
		}
	}

	report.Rows = df.Nrow()
	return df, report, nil
}

func writeCSV(path string, df dataframe.DataFrame, columns []string) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
	}()

	if df.Nrow() == 0 {
		w := csv.NewWriter(f)
		if err = w.Write(columns); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	}

	return df.WriteCSV(f)
}
