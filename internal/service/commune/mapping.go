package commune

import (
	"context"
	"fmt"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/service/harmonizer"
)

// ReferenceYear год сырого файла, из которого строится справочник коммун.
const ReferenceYear = 2000

// Mapping двусторонний справочник код INSEE <-> название коммуны.
type Mapping struct {
	byCode map[string]string
	byName map[string]string
}

func NewMapping() *Mapping {
	return &Mapping{
		byCode: make(map[string]string),
		byName: make(map[string]string),
	}
}

// Add при повторе кода побеждает последнее значение.
func (m *Mapping) Add(code, name string) {
	m.byCode[code] = name
	m.byName[name] = code
}

func (m *Mapping) Name(code string) (string, bool) {
	name, ok := m.byCode[code]
	return name, ok
}

func (m *Mapping) Code(name string) (string, bool) {
	code, ok := m.byName[name]
	return code, ok
}

func (m *Mapping) Len() int {
	return len(m.byCode)
}

var expectedRawColumns = []string{
	domain.ColumnComInsee,
	domain.ColumnCommune,
	domain.ColumnPopulation,
	domain.PollutantNO2.SourceColumn(),
	domain.PollutantPM10.SourceColumn(),
	domain.PollutantO3.SourceColumn(),
}

// FromRawTable строит справочник из сырого годового файла.
func FromRawTable(ctx context.Context, t *harmonizer.RawTable) (*Mapping, error) {
	if n := len(t.Header); n != 12 && n != 14 {
		logger.Warnf(ctx, "%s: unexpected column count %d", t.Path, n)
	}
	for _, col := range expectedRawColumns[2:] {
		if t.Column(col) < 0 {
			logger.Warnf(ctx, "%s: column %q not found", t.Path, col)
		}
	}

	codeIdx, nameIdx := t.Column(domain.ColumnComInsee), t.Column(domain.ColumnCommune)
	if codeIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("%s: columns %q and %q are required", t.Path, domain.ColumnComInsee, domain.ColumnCommune)
	}

	m := NewMapping()
	for _, row := range t.Rows {
		code, name := row[codeIdx], row[nameIdx]
		if code == "" {
			continue
		}
		m.Add(code, name)
	}

	if len(m.byCode) != len(m.byName) {
		logger.Warnf(ctx, "commune mapping: %d codes but %d names, some names are shared", len(m.byCode), len(m.byName))
	}
	logger.Infof(ctx, "commune mapping: %d communes from %s", m.Len(), t.Path)
	return m, nil
}

// LoadReference читает файл-справочник. Пустой path ищет файл ReferenceYear в rawDir.
func LoadReference(ctx context.Context, path, rawDir string, opts harmonizer.ReadOptions) (*Mapping, error) {
	if path == "" {
		found, err := FindReferenceFile(rawDir, ReferenceYear)
		if err != nil {
			return nil, err
		}
		path = found
	}

	t, err := harmonizer.ReadRawFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("harmonizer.ReadRawFile: %w", err)
	}
	return FromRawTable(ctx, t)
}

func FindReferenceFile(rawDir string, year int) (string, error) {
	paths, err := harmonizer.ListRawFiles(rawDir)
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		if y := harmonizer.YearFromFileName(path); y != nil && *y == year {
			return path, nil
		}
	}
	return "", fmt.Errorf("reference file for %d in %s: %w", year, rawDir, constants.ErrMissingFile)
}
