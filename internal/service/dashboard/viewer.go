package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

const (
	HistogramViewerFile = "FINAL_histogrammes_viewer.html"
	ScatterViewerFile   = "FINAL_superposed_scatter_plots.html"
)

// Viewer страница-сетка с графиками одного вида.
type Viewer struct {
	Title     string
	SourceDir string
	// Patterns glob по имени файла, поддерживаются обе схемы именования.
	Patterns []string
	Output   string
}

type card struct {
	Title string
	File  string
}

type ViewerResult struct {
	Path   string
	Charts []string
}

// BuildViewer копирует найденные графики в static и собирает страницу. Если
// графиков нет ни в исходной папке, ни в static, страница получает заглушку.
func (s *Service) BuildViewer(ctx context.Context, v Viewer) (*ViewerResult, error) {
	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	files, err := matchFiles(v.SourceDir, v.Patterns)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, src := range files {
		name := filepath.Base(src)
		if err = copyFile(src, filepath.Join(s.staticDir, name)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		fallback, err := matchFiles(s.staticDir, v.Patterns)
		if err != nil {
			return nil, err
		}
		for _, path := range fallback {
			names = append(names, filepath.Base(path))
		}
		if len(names) > 0 {
			logger.Warnf(ctx, "%s: no charts in %s, using %d files from %s", v.Output, v.SourceDir, len(names), s.staticDir)
		}
	}

	cards := make([]card, 0, len(names))
	for _, name := range names {
		cards = append(cards, card{Title: documentTitle(filepath.Join(s.staticDir, name)), File: name})
	}

	var buf bytes.Buffer
	err = viewerTmpl.Execute(&buf, struct {
		Title string
		Cards []card
	}{v.Title, cards})
	if err != nil {
		return nil, fmt.Errorf("viewerTmpl.Execute: %w", err)
	}

	out := filepath.Join(s.staticDir, v.Output)
	if err = os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("os.WriteFile: %w", err)
	}

	logger.Infof(ctx, "%s: %d charts", v.Output, len(cards))
	return &ViewerResult{Path: out, Charts: names}, nil
}

// matchFiles отсортированные совпадения по всем шаблонам без повторов.
// Собранные страницы FINAL_* никогда не считаются графиками.
func matchFiles(dir string, patterns []string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("filepath.Glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			if strings.HasPrefix(filepath.Base(m), "FINAL_") {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// documentTitle содержимое <title>, иначе имя файла.
func documentTitle(path string) string {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return name
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return name
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return name
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("os.ReadFile: %w", err)
	}
	if err = os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}
	return nil
}
