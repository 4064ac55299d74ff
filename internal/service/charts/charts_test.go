package charts

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/ougirez/airquality/internal/pkg/store/xdb"
	"github.com/ougirez/airquality/internal/service/commune"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func ptr(v float64) *float64 { return &v }

func aqRow(code string, pop float64, year int64, no2 *float64) *domain.AirQualityRow {
	row := &domain.AirQualityRow{
		ComInsee:   code,
		Commune:    "Commune " + code,
		Population: domain.NewNullFloat(pop),
		Annee:      domain.NewNullInt(year),
	}
	if no2 != nil {
		row.NO2 = domain.NewNullFloat(*no2)
	}
	return row
}

func testMapping() *commune.Mapping {
	m := commune.NewMapping()
	m.Add("01001", "Bourg")
	m.Add("01002", "Ambérieu")
	m.Add("01003", "Oyonnax")
	return m
}

func TestBuildScatterBelowFloorIsEmpty(t *testing.T) {
	rows := []*domain.AirQualityRow{
		aqRow("01001", 1500, 2004, ptr(10)),
		aqRow("01002", 200, 2004, ptr(12)),
	}

	fig, err := BuildScatter(rows, testMapping(), domain.PollutantNO2, 2004)
	if err != nil {
		t.Fatalf("BuildScatter: %v", err)
	}
	if len(fig.Points) != 0 {
		t.Fatalf("expected empty series, got %+v", fig.Points)
	}

	artifact, err := RenderScatter(fig)
	if err != nil {
		t.Fatalf("RenderScatter: %v", err)
	}
	if !bytes.Contains(artifact.Body, []byte(`"x":[]`)) {
		t.Fatalf("expected empty x series in document")
	}
}

func TestBuildScatterSortsByPopulation(t *testing.T) {
	rows := []*domain.AirQualityRow{
		aqRow("01003", 22000, 2004, ptr(30)),
		aqRow("01001", 41000, 2004, ptr(25)),
		aqRow("01002", 14000, 2004, ptr(20)),
		aqRow("01001", 100, 2004, ptr(1)),
	}

	fig, err := BuildScatter(rows, testMapping(), domain.PollutantNO2, 2004)
	if err != nil {
		t.Fatalf("BuildScatter: %v", err)
	}

	var names []string
	for _, pt := range fig.Points {
		names = append(names, pt.Commune)
	}
	if strings.Join(names, ",") != "Ambérieu,Oyonnax,Bourg" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestBuildScatterUnknownCommune(t *testing.T) {
	rows := []*domain.AirQualityRow{aqRow("99999", 5000, 2004, ptr(1))}

	_, err := BuildScatter(rows, testMapping(), domain.PollutantNO2, 2004)
	if !errors.Is(err, constants.ErrUnknownCommune) {
		t.Fatalf("expected ErrUnknownCommune, got %v", err)
	}
}

func TestBuildHistogram(t *testing.T) {
	rows := []*domain.AirQualityRow{
		aqRow("01001", 100, 2004, ptr(10)),
		aqRow("01002", 100, 2004, nil),
	}

	fig, err := BuildHistogram(rows, domain.PollutantNO2, 2004)
	if err != nil {
		t.Fatalf("BuildHistogram: %v", err)
	}
	if len(fig.Values) != 1 {
		t.Fatalf("nulls must not be values, got %v", fig.Values)
	}

	if _, err = BuildHistogram(rows, domain.PollutantPM25, 2004); !errors.Is(err, constants.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	artifact, err := RenderHistogram(fig)
	if err != nil {
		t.Fatalf("RenderHistogram: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(artifact.Body))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	if got := doc.Find("title").Text(); got != "Distribution des concentrations de NO2 (2004)" {
		t.Fatalf("unexpected title %q", got)
	}
	if !bytes.Contains(artifact.Body, []byte(`"nbinsx":30`)) {
		t.Fatalf("expected 30 bins")
	}
}

func TestBuildMap(t *testing.T) {
	geo := map[string]commune.GeoPoint{
		"01001": {Code: "01001", Name: "BOURG EN BRESSE", Latitude: ptr(46.2), Longitude: ptr(5.2167)},
		"01002": {Code: "01002", Name: "AMBERIEU", Latitude: nil, Longitude: nil},
	}
	rows := []*domain.AirQualityRow{
		aqRow("01001", 41000, 2005, ptr(25)),
		aqRow("01001", 40000, 2004, ptr(26)),
		aqRow("01002", 14000, 2004, ptr(20)),
		aqRow("01003", 22000, 2004, ptr(30)),
	}

	fig := BuildMap(rows, geo)
	if len(fig.Years) != 2 || fig.Years[0] != 2004 || fig.Years[1] != 2005 {
		t.Fatalf("unexpected years %v", fig.Years)
	}
	if len(fig.DataByYear[2004]) != 1 {
		t.Fatalf("rows without coordinates must be dropped, got %v", fig.DataByYear[2004])
	}

	entry, ok := fig.DataByYear[2004]["46.200000_5.216700"]
	if !ok {
		t.Fatalf("missing lat_lon key in %v", fig.DataByYear[2004])
	}
	if entry["nom"] != "BOURG EN BRESSE" || entry["population"] != int64(40000) {
		t.Fatalf("unexpected entry %v", entry)
	}
	if v, ok := entry["NO2"].(*float64); !ok || *v != 26 {
		t.Fatalf("unexpected NO2 %v", entry["NO2"])
	}
	if v, ok := entry["PM25"].(*float64); !ok || v != nil {
		t.Fatalf("expected null PM25, got %v", entry["PM25"])
	}
}

func newTestStore(t *testing.T) store.Store {
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

	if err = s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return s
}

func testConfig(t *testing.T, pollutants ...string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	if err := os.MkdirAll(raw, 0o755); err != nil {
		t.Fatalf("os.MkdirAll: %v", err)
	}
	ref := "titre\nCOM Insee,Commune\n01001,Bourg\n01002,Ambérieu\n01003,Oyonnax\n"
	if err := os.WriteFile(filepath.Join(raw, "ref_2000.csv"), []byte(ref), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	return &config.Config{
		Clean: config.CleanConfig{RawDir: raw, Encoding: "windows-1252", HeaderSkip: 1},
		Charts: config.ChartsConfig{
			HistogramDir: filepath.Join(dir, "html_histograms"),
			ScatterDir:   filepath.Join(dir, "scatter"),
			Pollutants:   pollutants,
			Naming:       "kind",
		},
		Map: config.MapConfig{
			GeoFile:    filepath.Join(dir, "base-officielle-codes-postaux.csv"),
			Delimiter:  ",",
			OutputPath: filepath.Join(dir, "maps", domain.MapFileName),
		},
	}
}

func TestGenerateAllSkipsAllNullPollutant(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.ReplaceAirQuality(ctx, []*domain.AirQualityRow{
		aqRow("01001", 41000, 2004, ptr(25)),
		aqRow("01002", 14000, 2004, ptr(20)),
	})
	if err != nil {
		t.Fatalf("ReplaceAirQuality: %v", err)
	}

	cfg := testConfig(t, "NO2", "PM25")
	svc, err := NewChartsService(s, cfg)
	if err != nil {
		t.Fatalf("NewChartsService: %v", err)
	}

	report, err := svc.GenerateAll(ctx)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(report.Written) != 2 || len(report.Failed) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	for _, path := range []string{
		filepath.Join(cfg.Charts.HistogramDir, "NO2_2004_histogram.html"),
		filepath.Join(cfg.Charts.ScatterDir, "NO2_2004_scatter.html"),
	} {
		if _, err = os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	for _, path := range []string{
		filepath.Join(cfg.Charts.HistogramDir, "PM25_2004_histogram.html"),
		filepath.Join(cfg.Charts.ScatterDir, "PM25_2004_scatter.html"),
	} {
		if _, err = os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected no %s, got %v", path, err)
		}
	}

	if logs.FilterMessage("skip PM25 2004: no data").Len() != 1 {
		t.Fatalf("expected skip message, got %v", logs.All())
	}
}

func TestGenerateAllLogsFailedScatterAndContinues(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.ReplaceAirQuality(ctx, []*domain.AirQualityRow{
		aqRow("77777", 41000, 2004, ptr(25)),
	})
	if err != nil {
		t.Fatalf("ReplaceAirQuality: %v", err)
	}

	svc, err := NewChartsService(s, testConfig(t, "NO2"))
	if err != nil {
		t.Fatalf("NewChartsService: %v", err)
	}

	report, err := svc.GenerateAll(ctx)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(report.Written) != 1 || len(report.Failed) != 1 {
		t.Fatalf("expected histogram written and scatter failed, got %+v", report)
	}
}

func TestGenerateMap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.ReplaceAirQuality(ctx, []*domain.AirQualityRow{
		aqRow("01001", 41000, 2004, ptr(25)),
		aqRow("01001", 41000, 2004, ptr(25)),
	})
	if err != nil {
		t.Fatalf("ReplaceAirQuality: %v", err)
	}

	cfg := testConfig(t, "NO2")
	geo := "code_commune_insee,nom_de_la_commune,latitude,longitude\n01001,BOURG EN BRESSE,46.2,5.2167\n"
	if err = os.WriteFile(cfg.Map.GeoFile, []byte(geo), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	svc, err := NewChartsService(s, cfg)
	if err != nil {
		t.Fatalf("NewChartsService: %v", err)
	}

	path, err := svc.GenerateMap(ctx)
	if err != nil {
		t.Fatalf("GenerateMap: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	if !bytes.Contains(body, []byte(`"46.200000_5.216700"`)) || !bytes.Contains(body, []byte(`"years":[2004]`)) {
		t.Fatalf("map document does not carry the data")
	}
}
