package acquirer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/labstack/gommon/bytes"
	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

type Service struct {
	client     *http.Client
	url        string
	rawDir     string
	maxRetries uint64
	retryDelay time.Duration
}

func NewAcquirerService(cfg config.FetchConfig) *Service {
	return &Service{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		rawDir:     cfg.RawDir,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

type Result struct {
	Size  int64
	Files []string
}

// Fetch скачивает архив во временный файл в rawDir и распаковывает его туда же.
// Временный архив удаляется в любом случае.
func (s *Service) Fetch(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	archive := filepath.Join(s.rawDir, fmt.Sprintf("temp-%s.zip", uuid.NewString()))
	defer func() {
		if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
			logger.Warnf(ctx, "remove %s: %s", archive, err.Error())
		}
	}()

	logger.Infof(ctx, "downloading %s", s.url)

	var size int64
	err := backoff.Retry(
		func() error {
			var dlErr error
			size, dlErr = s.download(ctx, archive)
			if dlErr != nil {
				logger.Warnf(ctx, "download: %s", dlErr.Error())
			}
			return dlErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), s.maxRetries),
			ctx,
		),
	)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "downloaded %s", bytes.Format(size))

	files, err := Extract(archive, s.rawDir)
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "extracted %d files to %s: %s", len(files), s.rawDir, strings.Join(files, ", "))

	return &Result{Size: size, Files: files}, nil
}

func (s *Service) download(ctx context.Context, dst string) (size int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("http.NewRequest: %w", err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("client.Do: %w", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("os.Create: %w", err))
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			size, err = 0, fmt.Errorf("failed to close archive: %w", closeErr)
		}
	}()

	size, err = io.Copy(f, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("io.Copy: %w", err)
	}
	return size, nil
}

// Extract распаковывает обычные файлы архива в dir с сохранением путей.
// Записи, выходящие за пределы dir, отклоняются.
func Extract(archive, dir string) ([]string, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("zip.OpenReader: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs: %w", err)
	}

	var files []string
	for _, f := range r.File {
		if !f.Mode().IsRegular() {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("zip entry %q escapes %s", f.Name, dir)
		}

		if err = extractFile(f, target); err != nil {
			return nil, err
		}
		files = append(files, filepath.ToSlash(f.Name))
	}
	return files, nil
}

func extractFile(f *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip open %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	defer func() {
		closeErr := dst.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", target, closeErr)
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}
