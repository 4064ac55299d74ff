package harmonizer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ougirez/airquality/internal/pkg/constants"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var yearRe = regexp.MustCompile(`\d{4}`)

// RawTable один годовой файл после разбора.
type RawTable struct {
	Path   string
	Year   *int
	Header []string
	Rows   [][]string
}

type ReadOptions struct {
	// Fallback кодировка для файлов, которые не являются валидным UTF-8.
	Fallback   encoding.Encoding
	HeaderSkip int
}

// LookupEncoding возвращает кодировку по имени, nil для utf-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// YearFromFileName первая группа из 4 цифр в имени файла.
func YearFromFileName(path string) *int {
	m := yearRe.FindString(filepath.Base(path))
	if m == "" {
		return nil
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &year
}

// ListRawFiles рекурсивно ищет *.csv и сортирует пути.
func ListRawFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, constants.ErrMissingFile)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.WalkDir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, constants.ErrNoRawFiles)
	}

	sort.Strings(paths)
	return paths, nil
}

func ReadRawFile(path string, opts ReadOptions) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) && opts.Fallback != nil {
		data, err = opts.Fallback.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	data = skipLines(data, opts.HeaderSkip)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv.ReadAll: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, fitRow(rec, len(header)))
	}

	return &RawTable{
		Path:   path,
		Year:   YearFromFileName(path),
		Header: header,
		Rows:   rows,
	}, nil
}

// Column индекс колонки или -1.
func (t *RawTable) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func skipLines(data []byte, n int) []byte {
	for i := 0; i < n && len(data) > 0; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil
		}
		data = data[idx+1:]
	}
	return data
}

func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func fitRow(rec []string, width int) []string {
	row := make([]string, width)
	copy(row, rec)
	return row
}
