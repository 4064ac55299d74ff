package charts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/ougirez/airquality/internal/service/commune"
	"github.com/ougirez/airquality/internal/service/harmonizer"
)

type Service struct {
	store      store.Store
	pollutants []domain.Pollutant
	naming     domain.ChartNaming

	histogramDir  string
	scatterDir    string
	referenceFile string
	rawDir        string
	readOpts      harmonizer.ReadOptions

	geoFile      string
	geoDelimiter string
	mapOutput    string
}

func NewChartsService(store store.Store, cfg *config.Config) (*Service, error) {
	pollutants, err := domain.ParsePollutants(cfg.Charts.Pollutants)
	if err != nil {
		return nil, fmt.Errorf("charts.pollutants: %w", err)
	}

	enc, err := harmonizer.LookupEncoding(cfg.Clean.Encoding)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:         store,
		pollutants:    pollutants,
		naming:        domain.ChartNaming(cfg.Charts.Naming),
		histogramDir:  cfg.Charts.HistogramDir,
		scatterDir:    cfg.Charts.ScatterDir,
		referenceFile: cfg.Charts.ReferenceFile,
		rawDir:        cfg.Clean.RawDir,
		readOpts:      harmonizer.ReadOptions{Fallback: enc, HeaderSkip: cfg.Clean.HeaderSkip},
		geoFile:       cfg.Map.GeoFile,
		geoDelimiter:  cfg.Map.Delimiter,
		mapOutput:     cfg.Map.OutputPath,
	}, nil
}

type Report struct {
	Written []string
	Skipped []string
	Failed  []string
}

// GenerateAll histogram и scatter на каждую пару (год, загрязнитель). Ошибка одного
// графика логируется и не останавливает остальные.
func (s *Service) GenerateAll(ctx context.Context) (*Report, error) {
	mapping, err := commune.LoadReference(ctx, s.referenceFile, s.rawDir, s.readOpts)
	if err != nil {
		return nil, fmt.Errorf("commune.LoadReference: %w", err)
	}

	years, err := s.store.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListYears: %w", err)
	}

	report := new(Report)
	for _, year := range years {
		rows, err := s.store.ListAirQuality(ctx, store.ListAirQualityOpts{Year: &year})
		if err != nil {
			return nil, fmt.Errorf("store.ListAirQuality %d: %w", year, err)
		}

		for _, p := range s.pollutants {
			if !HasValues(rows, p) {
				logger.Infof(ctx, "skip %s %d: no data", p.Label(), year)
				report.Skipped = append(report.Skipped, fmt.Sprintf("%s_%d", p.FileToken(), year))
				continue
			}

			s.generate(ctx, report, s.histogramDir, func() (*domain.ChartArtifact, error) {
				fig, err := BuildHistogram(rows, p, year)
				if err != nil {
					return nil, err
				}
				return RenderHistogram(fig)
			})
			s.generate(ctx, report, s.scatterDir, func() (*domain.ChartArtifact, error) {
				fig, err := BuildScatter(rows, mapping, p, year)
				if err != nil {
					return nil, err
				}
				return RenderScatter(fig)
			})
		}
	}

	logger.Infof(ctx, "charts: %d written, %d skipped, %d failed",
		len(report.Written), len(report.Skipped), len(report.Failed))
	return report, nil
}

func (s *Service) generate(ctx context.Context, report *Report, dir string, build func() (*domain.ChartArtifact, error)) {
	artifact, err := build()
	if err == nil {
		var path string
		path, err = WriteArtifact(dir, artifact, s.naming)
		if err == nil {
			report.Written = append(report.Written, path)
			return
		}
	}

	if errors.Is(err, constants.ErrNoData) {
		logger.Infof(ctx, "skip chart: %s", err.Error())
		report.Skipped = append(report.Skipped, err.Error())
		return
	}
	logger.Errorf(ctx, "chart failed: %s", err.Error())
	report.Failed = append(report.Failed, err.Error())
}

// GenerateMap строит карту по всем годам.
func (s *Service) GenerateMap(ctx context.Context) (string, error) {
	geo, err := commune.LoadGeo(s.geoFile, s.geoDelimiter)
	if err != nil {
		return "", fmt.Errorf("commune.LoadGeo: %w", err)
	}

	rows, err := s.store.ListAirQuality(ctx, store.ListAirQualityOpts{Distinct: true})
	if err != nil {
		return "", fmt.Errorf("store.ListAirQuality: %w", err)
	}

	fig := BuildMap(rows, geo)
	artifact, err := RenderMap(fig)
	if err != nil {
		return "", fmt.Errorf("RenderMap: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.mapOutput), 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll: %w", err)
	}
	if err = os.WriteFile(s.mapOutput, artifact.Body, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile: %w", err)
	}

	logger.Infof(ctx, "map: %d years, %d geo points, written to %s", len(fig.Years), len(geo), s.mapOutput)
	return s.mapOutput, nil
}

func WriteArtifact(dir string, artifact *domain.ChartArtifact, naming domain.ChartNaming) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll: %w", err)
	}

	path := filepath.Join(dir, artifact.FileName(naming))
	if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile: %w", err)
	}
	return path, nil
}
