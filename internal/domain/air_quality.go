package domain

// Заголовки очищенного CSV, которые не являются загрязнителями.
const (
	ColumnComInsee   = "COM Insee"
	ColumnCommune    = "Commune"
	ColumnPopulation = "Population"
	ColumnYear       = "Année"
)

// AirQualityRow строка таблицы air_quality. csv теги задают переименование
// колонок очищенного CSV в колонки базы, лишние колонки CSV игнорируются.
type AirQualityRow struct {
	ID         int64     `csv:"-" db:"id" json:"id,omitempty"`
	ComInsee   string    `csv:"COM Insee" db:"com_insee" json:"com_insee"`
	Commune    string    `csv:"Commune" db:"commune" json:"commune"`
	Population NullFloat `csv:"Population" db:"population" json:"-"`
	Annee      NullInt   `csv:"Année" db:"annee" json:"-"`
	PM25       NullFloat `csv:"Moyenne annuelle de concentration de PM25 (ug/m3)" db:"pm25" json:"-"`
	PM25Pop    NullFloat `csv:"Moyenne annuelle de concentration de PM25 ponderee par la population (ug/m3)" db:"pm25_pop" json:"-"`
	PM10       NullFloat `csv:"Moyenne annuelle de concentration de PM10 (ug/m3)" db:"pm10" json:"-"`
	PM10Pop    NullFloat `csv:"Moyenne annuelle de concentration de PM10 ponderee par la population (ug/m3)" db:"pm10_pop" json:"-"`
	NO2        NullFloat `csv:"Moyenne annuelle de concentration de NO2 (ug/m3)" db:"no2" json:"-"`
	NO2Pop     NullFloat `csv:"Moyenne annuelle de concentration de NO2 ponderee par la population (ug/m3)" db:"no2_pop" json:"-"`
	O3         NullFloat `csv:"Moyenne annuelle de concentration de O3 (ug/m3)" db:"o3" json:"-"`
	O3Pop      NullFloat `csv:"Moyenne annuelle de concentration de O3 ponderee par la population (ug/m3)" db:"o3_pop" json:"-"`
	AOT40      NullFloat `csv:"Moyenne annuelle d'AOT 40 (ug/m3.heure)" db:"aot40" json:"-"`
	SOMO35     NullFloat `csv:"Moyenne annuelle de somo 35 (ug/m3.jour)" db:"somo35" json:"-"`
	SOMO35Pop  NullFloat `csv:"Moyenne annuelle de somo 35 pondere par la population (ug/m3.jour)" db:"somo35_pop" json:"-"`
}

// Value значение загрязнителя, для неизвестного загрязнителя всегда null.
func (r *AirQualityRow) Value(p Pollutant) NullFloat {
	if f := r.field(p); f != nil {
		return *f
	}
	return NullFloat{}
}

func (r *AirQualityRow) SetValue(p Pollutant, v NullFloat) {
	if f := r.field(p); f != nil {
		*f = v
	}
}

func (r *AirQualityRow) field(p Pollutant) *NullFloat {
	switch p {
	case PollutantPM25:
		return &r.PM25
	case PollutantPM25Pop:
		return &r.PM25Pop
	case PollutantPM10:
		return &r.PM10
	case PollutantPM10Pop:
		return &r.PM10Pop
	case PollutantNO2:
		return &r.NO2
	case PollutantNO2Pop:
		return &r.NO2Pop
	case PollutantO3:
		return &r.O3
	case PollutantO3Pop:
		return &r.O3Pop
	case PollutantAOT40:
		return &r.AOT40
	case PollutantSOMO35:
		return &r.SOMO35
	case PollutantSOMO35Pop:
		return &r.SOMO35Pop
	}
	return nil
}

// Args значения в порядке store.airQualityColumns без id.
func (r *AirQualityRow) Args() []interface{} {
	args := []interface{}{r.ComInsee, r.Commune, r.Population, r.Annee}
	for _, p := range AllPollutants {
		args = append(args, r.Value(p))
	}
	return args
}

type YearSummary struct {
	Annee      int      `db:"annee" json:"annee"`
	NbCommunes int64    `db:"nb_communes" json:"nb_communes"`
	AvgNO2     *float64 `db:"avg_no2" json:"avg_no2"`
}

type Visitor struct {
	ID  int64  `db:"id" json:"id"`
	Nom string `db:"nom" json:"nom"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
