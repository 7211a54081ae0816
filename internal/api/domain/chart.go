package domain

const VegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// ChartSpec is a declarative Vega-Lite specification handed to the browser renderer.
type ChartSpec struct {
	Schema   string         `json:"$schema"`
	Data     ChartData      `json:"data"`
	Mark     any            `json:"mark"`
	Encoding map[string]any `json:"encoding"`
	Config   map[string]any `json:"config,omitempty"`
}

type ChartData struct {
	Values []any `json:"values"`
}

// ChartFilter carries the global dashboard filters applied to region charts.
type ChartFilter struct {
	Hemisphere string
	SubjectID  string
}

// PlaceholderChart is the empty spec rendered when chart data cannot be loaded.
func PlaceholderChart(mark string) ChartSpec {
	return ChartSpec{
		Schema:   VegaLiteSchema,
		Data:     ChartData{Values: []any{}},
		Mark:     mark,
		Encoding: map[string]any{},
	}
}

// IsPlaceholder reports whether the spec carries no data.
func (c ChartSpec) IsPlaceholder() bool {
	return len(c.Data.Values) == 0 && len(c.Encoding) == 0
}
