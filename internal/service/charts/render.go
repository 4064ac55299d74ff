package charts

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/bytedance/sonic"
	"github.com/ougirez/airquality/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var (
	plotlyTmpl = template.Must(template.ParseFS(templatesFS, "templates/plotly.html"))
	mapTmpl    = template.Must(template.ParseFS(templatesFS, "templates/map.html"))
)

const histogramBins = 30

type axis struct {
	Title title `json:"title"`
}

type title struct {
	Text string `json:"text"`
}

type layout struct {
	Title      title   `json:"title"`
	XAxis      axis    `json:"xaxis"`
	YAxis      axis    `json:"yaxis"`
	Bargap     float64 `json:"bargap,omitempty"`
	ShowLegend bool    `json:"showlegend"`
}

type marker struct {
	Color string  `json:"color"`
	Size  float64 `json:"size,omitempty"`
}

type trace struct {
	Type          string      `json:"type"`
	Name          string      `json:"name"`
	Mode          string      `json:"mode,omitempty"`
	X             interface{} `json:"x"`
	Y             []float64   `json:"y,omitempty"`
	CustomData    []float64   `json:"customdata,omitempty"`
	NBinsX        int         `json:"nbinsx,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
	Marker        marker      `json:"marker"`
}

type plotlyFigure struct {
	Data   []trace `json:"data"`
	Layout layout  `json:"layout"`
}

func HistogramTitle(p domain.Pollutant, year int) string {
	return fmt.Sprintf("Distribution des concentrations de %s (%d)", p.Label(), year)
}

func ScatterTitle(p domain.Pollutant, year int) string {
	return fmt.Sprintf("Concentration moyenne annuelle de %s par population de commune (%d)", p.Label(), year)
}

func RenderHistogram(fig *HistogramFigure) (*domain.ChartArtifact, error) {
	t := HistogramTitle(fig.Pollutant, fig.Year)
	body, err := renderPlotly(t, plotlyFigure{
		Data: []trace{{
			Type:   "histogram",
			Name:   fig.Pollutant.Label(),
			X:      fig.Values,
			NBinsX: histogramBins,
			Marker: marker{Color: "#1f77b4"},
		}},
		Layout: layout{
			Title:  title{t},
			XAxis:  axis{title{fmt.Sprintf("Concentration de %s (%s)", fig.Pollutant.Label(), fig.Pollutant.Unit())}},
			YAxis:  axis{title{"Nombre de communes"}},
			Bargap: 0.05,
		},
	})
	if err != nil {
		return nil, err
	}

	return &domain.ChartArtifact{
		Pollutant: fig.Pollutant,
		Year:      fig.Year,
		Kind:      domain.ChartKindHistogram,
		Title:     t,
		Body:      body,
	}, nil
}

func RenderScatter(fig *ScatterFigure) (*domain.ChartArtifact, error) {
	communes := make([]string, 0, len(fig.Points))
	values := make([]float64, 0, len(fig.Points))
	populations := make([]float64, 0, len(fig.Points))
	for _, pt := range fig.Points {
		communes = append(communes, pt.Commune)
		values = append(values, pt.Value)
		populations = append(populations, pt.Population)
	}

	t := ScatterTitle(fig.Pollutant, fig.Year)
	body, err := renderPlotly(t, plotlyFigure{
		Data: []trace{{
			Type:          "scatter",
			Name:          fig.Pollutant.Label(),
			Mode:          "markers",
			X:             communes,
			Y:             values,
			CustomData:    populations,
			HoverTemplate: "%{x}<br>Population : %{customdata}<br>" + fig.Pollutant.Label() + " : %{y}<extra></extra>",
			Marker:        marker{Color: "#d62728", Size: 6},
		}},
		Layout: layout{
			Title: title{t},
			XAxis: axis{title{fmt.Sprintf("Population des communes > %d Hab.", PopulationFloor)}},
			YAxis: axis{title{fmt.Sprintf("%s (%s)", fig.Pollutant.Label(), fig.Pollutant.Unit())}},
		},
	})
	if err != nil {
		return nil, err
	}

	return &domain.ChartArtifact{
		Pollutant: fig.Pollutant,
		Year:      fig.Year,
		Kind:      domain.ChartKindScatter,
		Title:     t,
		Body:      body,
	}, nil
}

const MapTitle = "Carte interactive de la pollution de l'air"

func RenderMap(fig *MapFigure) (*domain.ChartArtifact, error) {
	data, err := sonic.ConfigStd.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("sonic.Marshal: %w", err)
	}

	var buf bytes.Buffer
	err = mapTmpl.Execute(&buf, struct {
		Title string
		Data  template.JS
	}{MapTitle, template.JS(data)})
	if err != nil {
		return nil, fmt.Errorf("mapTmpl.Execute: %w", err)
	}

	return &domain.ChartArtifact{
		Kind:  domain.ChartKindMap,
		Title: MapTitle,
		Body:  buf.Bytes(),
	}, nil
}

func renderPlotly(t string, fig plotlyFigure) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("sonic.Marshal: %w", err)
	}

	var buf bytes.Buffer
	err = plotlyTmpl.Execute(&buf, struct {
		Title  string
		Figure template.JS
	}{t, template.JS(data)})
	if err != nil {
		return nil, fmt.Errorf("plotlyTmpl.Execute: %w", err)
	}
	return buf.Bytes(), nil
}
