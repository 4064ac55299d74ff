package harmonizer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/ougirez/airquality/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	unknownComInsee   = "Unknown"
	defaultPopulation = "0"
)

// unionColumns порядок первого появления по файлам, "Année" после колонок каждого файла.
func unionColumns(tables []*RawTable) []string {
	seen := make(map[string]struct{})
	var union []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		union = append(union, name)
	}

	for _, t := range tables {
		for _, name := range t.Header {
			if name != domain.ColumnYear {
				add(name)
			}
		}
		add(domain.ColumnYear)
	}
	return union
}

// toFrame строит dataframe из строковых колонок, год добавляется отдельной колонкой.
func toFrame(t *RawTable) dataframe.DataFrame {
	year := ""
	if t.Year != nil {
		year = strconv.Itoa(*t.Year)
	}

	yearIdx := t.Column(domain.ColumnYear)
	header := make([]string, 0, len(t.Header)+1)
	for i, name := range t.Header {
		if i != yearIdx {
			header = append(header, name)
		}
	}
	header = append(header, domain.ColumnYear)

	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, header)
	for _, row := range t.Rows {
		rec := make([]string, 0, len(header))
		for i, v := range row {
			if i != yearIdx {
				rec = append(rec, v)
			}
		}
		records = append(records, append(rec, year))
	}

	return dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// alignFrame добавляет пустые колонки, которых нет в файле, и выставляет общий порядок.
func alignFrame(df dataframe.DataFrame, union []string) dataframe.DataFrame {
	for _, name := range union {
		if !hasColumn(df, name) {
			df = df.Mutate(series.New(make([]string, df.Nrow()), series.String, name))
		}
	}
	return df.Select(union)
}

// mergeTables объединяет таблицы в порядке путей. Таблицы без строк дают только колонки.
func mergeTables(tables []*RawTable) (dataframe.DataFrame, []string, error) {
	union := unionColumns(tables)

	var (
		merged dataframe.DataFrame
		empty  = true
	)
	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}

		df := toFrame(t)
		if df.Err != nil {
			return dataframe.DataFrame{}, nil, fmt.Errorf("load %s: %w", t.Path, df.Err)
		}
		df = alignFrame(df, union)
		if df.Err != nil {
			return dataframe.DataFrame{}, nil, fmt.Errorf("align %s: %w", t.Path, df.Err)
		}

		if empty {
			merged, empty = df, false
			continue
		}
		merged = merged.RBind(df)
		if merged.Err != nil {
			return dataframe.DataFrame{}, nil, fmt.Errorf("rbind %s: %w", t.Path, merged.Err)
		}
	}

	if empty {
		return dataframe.DataFrame{}, union, nil
	}
	return merged, union, nil
}

type columnFill struct {
	Median float64
	Filled int
	// AllNull колонка есть, но в ней нет ни одного значения.
	AllNull bool
}

// fillMedians заменяет пропуски в колонках загрязнителей медианой колонки.
func fillMedians(df dataframe.DataFrame) (dataframe.DataFrame, map[string]columnFill, error) {
	fills := make(map[string]columnFill)
	for _, p := range domain.AllPollutants {
		name := p.SourceColumn()
		if !hasColumn(df, name) {
			continue
		}

		records := df.Col(name).Records()
		values := make([]float64, 0, len(records))
		nulls := make([]bool, len(records))
		for i, rec := range records {
			var v domain.NullFloat
			if err := v.UnmarshalText([]byte(rec)); err != nil || !v.Valid {
				nulls[i] = true
				continue
			}
			values = append(values, v.Float64)
		}

		median, ok := Median(values)
		if !ok {
			fills[name] = columnFill{AllNull: true, Filled: 0}
			continue
		}

		medianText := median.String()
		fill := columnFill{Median: median.InexactFloat64()}
		for i, isNull := range nulls {
			if isNull {
				records[i] = medianText
				fill.Filled++
			}
		}
		fills[name] = fill

		df = df.Mutate(series.New(records, series.String, name))
		if df.Err != nil {
			return df, nil, fmt.Errorf("mutate %s: %w", name, df.Err)
		}
	}

	return df, fills, nil
}

// fillDefaults код коммуны и население для пустых ячеек.
func fillDefaults(df dataframe.DataFrame) dataframe.DataFrame {
	defaults := map[string]string{
		domain.ColumnComInsee:   unknownComInsee,
		domain.ColumnPopulation: defaultPopulation,
	}
	for name, def := range defaults {
		if !hasColumn(df, name) {
			continue
		}
		records := df.Col(name).Records()
		changed := false
		for i, rec := range records {
			if isNullCell(rec) {
				records[i] = def
				changed = true
			}
		}
		if changed {
			df = df.Mutate(series.New(records, series.String, name))
		}
	}
	return df
}

// duplicateRows индексы строк, чей ключ (код коммуны, год) уже встречался.
func duplicateRows(df dataframe.DataFrame) []int {
	if !hasColumn(df, domain.ColumnComInsee) {
		return nil
	}
	codes := df.Col(domain.ColumnComInsee).Records()
	years := df.Col(domain.ColumnYear).Records()

	type key struct{ code, year string }
	seen := make(map[key]struct{}, len(codes))
	var dups []int
	for i := range codes {
		k := key{codes[i], years[i]}
		if _, ok := seen[k]; ok {
			dups = append(dups, i)
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// dropRows оставляет первое вхождение каждого ключа.
func dropRows(df dataframe.DataFrame, drop []int) dataframe.DataFrame {
	if len(drop) == 0 {
		return df
	}
	skip := make(map[int]struct{}, len(drop))
	for _, i := range drop {
		skip[i] = struct{}{}
	}
	keep := make([]int, 0, df.Nrow()-len(drop))
	for i := 0; i < df.Nrow(); i++ {
		if _, ok := skip[i]; !ok {
			keep = append(keep, i)
		}
	}
	return df.Subset(keep)
}

// Median медиана конечных значений, для четного числа значений среднее двух центральных.
func Median(values []float64) (decimal.Decimal, bool) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return decimal.Decimal{}, false
	}
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return decimal.NewFromFloat(sorted[mid]), true
	}
	sum := decimal.NewFromFloat(sorted[mid-1]).Add(decimal.NewFromFloat(sorted[mid]))
	return sum.Div(decimal.NewFromInt(2)), true
}

func isNullCell(s string) bool {
	return domain.IsNullText(strings.TrimSpace(s))
}
