package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

var (
	viewerTmpl    = template.Must(template.ParseFS(templatesFS, "templates/viewer.html"))
	dashboardTmpl = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))
)

const (
	DashboardFile = "FINAL_dashboard.html"
	Title         = "Qualité de l'air en France (2000-2015)"

	defaultReadme = "# Qualité de l'air\n\nDonnées INERIS 2000-2015 : concentrations moyennes annuelles par commune."
)

type Service struct {
	staticDir  string
	readmePath string
	// mapCandidates пути, где может лежать карта, берется первый существующий.
	mapCandidates []string
	viewers       []Viewer
}

func NewDashboardService(cfg *config.Config) *Service {
	candidates := []string{cfg.Map.OutputPath}
	if legacy := filepath.Join("assets", "maps", domain.MapFileName); legacy != cfg.Map.OutputPath {
		candidates = append(candidates, legacy)
	}

	return &Service{
		staticDir:     cfg.Dashboard.StaticDir,
		readmePath:    cfg.Dashboard.ReadmePath,
		mapCandidates: candidates,
		viewers: []Viewer{
			{
				Title:     "Histogrammes des concentrations",
				SourceDir: cfg.Charts.HistogramDir,
				Patterns:  []string{"*_histogram.html", "*_histogram_*.html"},
				Output:    HistogramViewerFile,
			},
			{
				Title:     "Concentrations par population de commune",
				SourceDir: cfg.Charts.ScatterDir,
				Patterns:  []string{"*_scatter.html", "*_moyenne_annuelle_*.html"},
				Output:    ScatterViewerFile,
			},
		},
	}
}

func (s *Service) Viewers() []Viewer {
	return s.viewers
}

type viewerLink struct {
	Title string
	File  string
}

// BuildDashboard копирует карту в static и собирает главную страницу с вкладками.
func (s *Service) BuildDashboard(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll: %w", err)
	}

	hasMap, err := s.copyMap(ctx)
	if err != nil {
		return "", err
	}

	readme, err := s.readme(ctx)
	if err != nil {
		return "", err
	}

	links := make([]viewerLink, 0, len(s.viewers))
	for _, v := range s.viewers {
		links = append(links, viewerLink{Title: v.Title, File: v.Output})
	}

	first := ""
	if len(links) > 0 {
		first = links[0].File
	}

	var buf bytes.Buffer
	err = dashboardTmpl.Execute(&buf, struct {
		Title       string
		Readme      string
		HasMap      bool
		MapFile     string
		Viewers     []viewerLink
		FirstViewer string
	}{Title, readme, hasMap, domain.MapFileName, links, first})
	if err != nil {
		return "", fmt.Errorf("dashboardTmpl.Execute: %w", err)
	}

	out := filepath.Join(s.staticDir, DashboardFile)
	if err = os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile: %w", err)
	}

	logger.Infof(ctx, "dashboard written to %s (map: %t)", out, hasMap)
	return out, nil
}

func (s *Service) copyMap(ctx context.Context) (bool, error) {
	dst := filepath.Join(s.staticDir, domain.MapFileName)
	for _, src := range s.mapCandidates {
		if src == "" {
			continue
		}
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err := os.Stat(dst); err == nil {
		logger.Warnf(ctx, "map not found in %v, keeping %s", s.mapCandidates, dst)
		return true, nil
	}
	logger.Warnf(ctx, "map not found in %v", s.mapCandidates)
	return false, nil
}

func (s *Service) readme(ctx context.Context) (string, error) {
	if s.readmePath == "" {
		return defaultReadme, nil
	}
	data, err := os.ReadFile(s.readmePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warnf(ctx, "readme %s not found, using default text", s.readmePath)
			return defaultReadme, nil
		}
		return "", fmt.Errorf("os.ReadFile: %w", err)
	}
	return string(data), nil
}

// BuildAll оба просмотрщика и затем главная страница.
func (s *Service) BuildAll(ctx context.Context) error {
	for _, v := range s.viewers {
		if _, err := s.BuildViewer(ctx, v); err != nil {
			return fmt.Errorf("BuildViewer %s: %w", v.Output, err)
		}
	}
	if _, err := s.BuildDashboard(ctx); err != nil {
		return fmt.Errorf("BuildDashboard: %w", err)
	}
	return nil
}
