package domain

import "fmt"

type ChartKind string

const (
	ChartKindHistogram ChartKind = "histogram"
	ChartKindScatter   ChartKind = "scatter"
	ChartKindMap       ChartKind = "map"
)

type ChartNaming string

const (
	// ChartNamingKind: NO2_2004_scatter.html
	ChartNamingKind ChartNaming = "kind"
	// ChartNamingAnnual: NO2_moyenne_annuelle_2004.html
	ChartNamingAnnual ChartNaming = "annual"
)

const MapFileName = "interactive_pollution_map.html"

// ChartArtifact готовый html документ графика.
type ChartArtifact struct {
	Pollutant Pollutant
	Year      int
	Kind      ChartKind
	Title     string
	Body      []byte
}

func (a *ChartArtifact) FileName(naming ChartNaming) string {
	if a.Kind == ChartKindMap {
		return MapFileName
	}
	token := a.Pollutant.FileToken()
	if naming == ChartNamingAnnual {
		if a.Kind == ChartKindScatter {
			return fmt.Sprintf("%s_moyenne_annuelle_%d.html", token, a.Year)
		}
		return fmt.Sprintf("%s_%s_%d.html", token, a.Kind, a.Year)
	}
	return fmt.Sprintf("%s_%d_%s.html", token, a.Year, a.Kind)
}
