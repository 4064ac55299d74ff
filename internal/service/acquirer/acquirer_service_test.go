package acquirer

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ougirez/airquality/internal/pkg/config"
)

func zipBody(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip.Create: %v", err)
		}
		if _, err = f.Write([]byte(body)); err != nil {
			t.Fatalf("zip.Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

func TestFetchRetriesAndExtracts(t *testing.T) {
	body := zipBody(t, map[string]string{
		"INERIS/moyennes_2000.csv": "titre\nCOM Insee,Commune\n",
		"INERIS/moyennes_2001.csv": "titre\nCOM Insee,Commune\n",
	})

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	raw := t.TempDir()
	svc := NewAcquirerService(config.FetchConfig{
		URL:        srv.URL,
		RawDir:     raw,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})

	res, err := svc.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if res.Size != int64(len(body)) || len(res.Files) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	data, err := os.ReadFile(filepath.Join(raw, "INERIS", "moyennes_2001.csv"))
	if err != nil {
		t.Fatalf("file not extracted: %v", err)
	}
	if string(data) != "titre\nCOM Insee,Commune\n" {
		t.Fatalf("unexpected extracted content %q", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(raw, "temp-*.zip"))
	if len(leftovers) != 0 {
		t.Fatalf("temp archive not removed: %v", leftovers)
	}
}

func TestFetchGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	raw := t.TempDir()
	svc := NewAcquirerService(config.FetchConfig{
		URL:        srv.URL,
		RawDir:     raw,
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
	})

	if _, err := svc.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("retries disabled, got %d calls", calls)
	}

	leftovers, _ := filepath.Glob(filepath.Join(raw, "temp-*.zip"))
	if len(leftovers) != 0 {
		t.Fatalf("temp archive not removed: %v", leftovers)
	}
}

func TestExtractRejectsEscapingEntry(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	if err := os.WriteFile(archive, zipBody(t, map[string]string{"../evil.csv": "x"}), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	out := filepath.Join(dir, "out")
	_, err := Extract(archive, out)
	if err == nil {
		t.Fatalf("expected escape error")
	}
	if _, err = os.Stat(filepath.Join(dir, "evil.csv")); !os.IsNotExist(err) {
		t.Fatalf("escaping entry must not be written")
	}
}
