package commune

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/ougirez/airquality/internal/pkg/constants"
)

// GeoPoint строка base-officielle-codes-postaux.csv.
type GeoPoint struct {
	Code      string   `csv:"code_commune_insee"`
	Name      string   `csv:"nom_de_la_commune"`
	Latitude  *float64 `csv:"latitude"`
	Longitude *float64 `csv:"longitude"`
}

func (p GeoPoint) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// ReadGeo декодирует справочник координат, для повторного кода остается первая строка.
func ReadGeo(r io.Reader, delimiter rune) (map[string]GeoPoint, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]GeoPoint{}, nil
		}
		return nil, fmt.Errorf("csvutil.NewDecoder: %w", err)
	}

	points := make(map[string]GeoPoint)
	for line := 2; ; line++ {
		var p GeoPoint
		if err = dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p.Code = strings.TrimSpace(p.Code)
		if _, ok := points[p.Code]; ok {
			continue
		}
		points[p.Code] = p
	}

	return points, nil
}

func LoadGeo(path string, delimiter string) (map[string]GeoPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, constants.ErrMissingFile)
		}
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	comma := ','
	if delimiter != "" {
		comma = []rune(delimiter)[0]
	}

	points, err := ReadGeo(f, comma)
	if err != nil {
		return nil, fmt.Errorf("ReadGeo %s: %w", path, err)
	}
	return points, nil
}
