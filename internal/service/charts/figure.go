package charts

import (
	"fmt"
	"sort"

	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/service/commune"
)

// PopulationFloor на scatter попадают коммуны строго больше этого населения.
const PopulationFloor = 1500

// NameResolver отдает название коммуны по коду INSEE.
type NameResolver interface {
	Name(code string) (string, bool)
}

type HistogramFigure struct {
	Pollutant domain.Pollutant
	Year      int
	Values    []float64
}

type ScatterPoint struct {
	Commune    string
	Population float64
	Value      float64
}

type ScatterFigure struct {
	Pollutant domain.Pollutant
	Year      int
	Points    []ScatterPoint
}

// HasValues есть ли хоть одно значение загрязнителя в строках.
func HasValues(rows []*domain.AirQualityRow, p domain.Pollutant) bool {
	for _, row := range rows {
		if row.Value(p).Valid {
			return true
		}
	}
	return false
}

func BuildHistogram(rows []*domain.AirQualityRow, p domain.Pollutant, year int) (*HistogramFigure, error) {
	if !p.Valid() {
		return nil, constants.ErrUnknownPollutant
	}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v := row.Value(p); v.Valid {
			values = append(values, v.Float64)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s %d: %w", p, year, constants.ErrNoData)
	}

	return &HistogramFigure{Pollutant: p, Year: year, Values: values}, nil
}

// BuildScatter фильтрует по населению, сортирует по возрастанию населения и
// подставляет названия коммун. Неизвестный код это ошибка.
func BuildScatter(rows []*domain.AirQualityRow, names NameResolver, p domain.Pollutant, year int) (*ScatterFigure, error) {
	if !p.Valid() {
		return nil, constants.ErrUnknownPollutant
	}

	filtered := make([]*domain.AirQualityRow, 0, len(rows))
	for _, row := range rows {
		if row.Population.Valid && row.Population.Float64 > PopulationFloor {
			filtered = append(filtered, row)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Population.Float64 < filtered[j].Population.Float64
	})

	fig := &ScatterFigure{Pollutant: p, Year: year, Points: make([]ScatterPoint, 0, len(filtered))}
	for _, row := range filtered {
		name, ok := names.Name(row.ComInsee)
		if !ok {
			return nil, fmt.Errorf("code %q: %w", row.ComInsee, constants.ErrUnknownCommune)
		}
		v := row.Value(p)
		if !v.Valid {
			continue
		}
		fig.Points = append(fig.Points, ScatterPoint{
			Commune:    name,
			Population: row.Population.Float64,
			Value:      v.Float64,
		})
	}

	return fig, nil
}

// MapEntry точка карты: nom, latitude, longitude, population и значения загрязнителей.
type MapEntry map[string]interface{}

type MapFigure struct {
	Years      []int                       `json:"years"`
	Pollutants []string                    `json:"pollutants"`
	DataByYear map[int]map[string]MapEntry `json:"data_by_year"`
}

// BuildMap присоединяет координаты по коду коммуны, строки без координат отбрасываются.
func BuildMap(rows []*domain.AirQualityRow, geo map[string]commune.GeoPoint) *MapFigure {
	fig := &MapFigure{
		Years:      []int{},
		Pollutants: make([]string, 0, len(domain.MapPollutants)),
		DataByYear: make(map[int]map[string]MapEntry),
	}
	for _, p := range domain.MapPollutants {
		fig.Pollutants = append(fig.Pollutants, p.Label())
	}

	for _, row := range rows {
		if !row.Annee.Valid {
			continue
		}
		point, ok := geo[row.ComInsee]
		if !ok || !point.HasCoordinates() {
			continue
		}

		year := int(row.Annee.Int64)
		byKey, ok := fig.DataByYear[year]
		if !ok {
			byKey = make(map[string]MapEntry)
			fig.DataByYear[year] = byKey
			fig.Years = append(fig.Years, year)
		}

		name := point.Name
		if name == "" {
			name = row.Commune
		}
		entry := MapEntry{
			"nom":        name,
			"latitude":   *point.Latitude,
			"longitude":  *point.Longitude,
			"population": int64(row.Population.Float64),
		}
		for _, p := range domain.MapPollutants {
			entry[p.Label()] = row.Value(p).Ptr()
		}

		byKey[fmt.Sprintf("%.6f_%.6f", *point.Latitude, *point.Longitude)] = entry
	}

	sort.Ints(fig.Years)
	return fig
}
