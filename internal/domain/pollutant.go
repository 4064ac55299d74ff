package domain

import (
	"fmt"
	"strings"

	"github.com/ougirez/airquality/internal/pkg/constants"
)

type Pollutant int

const (
	PollutantUnknown Pollutant = iota
	PollutantNO2
	PollutantPM10
	PollutantO3
	PollutantPM25
	PollutantAOT40
	PollutantSOMO35
	PollutantNO2Pop
	PollutantPM10Pop
	PollutantO3Pop
	PollutantPM25Pop
	PollutantSOMO35Pop
)

type pollutantInfo struct {
	label  string
	key    string
	source string
	unit   string
}

var pollutants = map[Pollutant]pollutantInfo{
	PollutantNO2:       {"NO2", "no2", "Moyenne annuelle de concentration de NO2 (ug/m3)", "µg/m³"},
	PollutantPM10:      {"PM10", "pm10", "Moyenne annuelle de concentration de PM10 (ug/m3)", "µg/m³"},
	PollutantO3:        {"O3", "o3", "Moyenne annuelle de concentration de O3 (ug/m3)", "µg/m³"},
	PollutantPM25:      {"PM25", "pm25", "Moyenne annuelle de concentration de PM25 (ug/m3)", "µg/m³"},
	PollutantAOT40:     {"AOT40", "aot40", "Moyenne annuelle d'AOT 40 (ug/m3.heure)", "µg/m³.h"},
	PollutantSOMO35:    {"SOMO35", "somo35", "Moyenne annuelle de somo 35 (ug/m3.jour)", "µg/m³.j"},
	PollutantNO2Pop:    {"NO2 ponderee", "no2_pop", "Moyenne annuelle de concentration de NO2 ponderee par la population (ug/m3)", "µg/m³"},
	PollutantPM10Pop:   {"PM10 ponderee", "pm10_pop", "Moyenne annuelle de concentration de PM10 ponderee par la population (ug/m3)", "µg/m³"},
	PollutantO3Pop:     {"O3 ponderee", "o3_pop", "Moyenne annuelle de concentration de O3 ponderee par la population (ug/m3)", "µg/m³"},
	PollutantPM25Pop:   {"PM25 ponderee", "pm25_pop", "Moyenne annuelle de concentration de PM25 ponderee par la population (ug/m3)", "µg/m³"},
	PollutantSOMO35Pop: {"SOMO35 ponderee", "somo35_pop", "Moyenne annuelle de somo 35 pondere par la population (ug/m3.jour)", "µg/m³.j"},
}

// AllPollutants в порядке колонок таблицы air_quality.
var AllPollutants = []Pollutant{
	PollutantPM25, PollutantPM25Pop,
	PollutantPM10, PollutantPM10Pop,
	PollutantNO2, PollutantNO2Pop,
	PollutantO3, PollutantO3Pop,
	PollutantAOT40,
	PollutantSOMO35, PollutantSOMO35Pop,
}

// MapPollutants показываются на интерактивной карте.
var MapPollutants = []Pollutant{
	PollutantPM10, PollutantPM25, PollutantNO2, PollutantO3, PollutantAOT40, PollutantSOMO35,
}

func (p Pollutant) Valid() bool {
	_, ok := pollutants[p]
	return ok
}

// Label отображаемое имя: "NO2", "SOMO35 ponderee".
func (p Pollutant) Label() string {
	return pollutants[p].label
}

// Key имя колонки в air_quality.
func (p Pollutant) Key() string {
	return pollutants[p].key
}

// SourceColumn заголовок колонки в очищенном CSV.
func (p Pollutant) SourceColumn() string {
	return pollutants[p].source
}

func (p Pollutant) Unit() string {
	return pollutants[p].unit
}

// FileToken часть имени файла графика.
func (p Pollutant) FileToken() string {
	return strings.ReplaceAll(p.Label(), " ", "_")
}

func (p Pollutant) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Pollutant(%d)", int(p))
	}
	return p.Label()
}

func normalizePollutantName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", ".", "", "_", "", "-", "", "ponderee", "pop").Replace(s)
}

// ParsePollutant принимает метку, ключ колонки или их вариации ("Somo 35", "SOMO35", "pm2.5").
func ParsePollutant(s string) (Pollutant, error) {
	norm := normalizePollutantName(s)
	if norm == "" {
		return PollutantUnknown, fmt.Errorf("%q: %w", s, constants.ErrUnknownPollutant)
	}
	for p, info := range pollutants {
		if norm == normalizePollutantName(info.label) || norm == normalizePollutantName(info.key) {
			return p, nil
		}
	}
	return PollutantUnknown, fmt.Errorf("%q: %w", s, constants.ErrUnknownPollutant)
}

func ParsePollutants(names []string) ([]Pollutant, error) {
	res := make([]Pollutant, 0, len(names))
	for _, name := range names {
		p, err := ParsePollutant(name)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}
