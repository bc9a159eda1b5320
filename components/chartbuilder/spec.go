package chartbuilder

import (
	"fmt"
	"math"
)

// AxisSpec describes the category axis plus any explicit value-axis bounds.
type AxisSpec struct {
	Labels      []string `json:"labels"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	SplitNumber int      `json:"split_number,omitempty"`
}

// SeriesSpec is one renderable series with its values pre-formatted for data
// labels and tooltips.
type SeriesSpec struct {
	Name      string    `json:"name"`
	Values    []float64 `json:"values"`
	Formatted []string  `json:"formatted"`
	Color     string    `json:"color"`
	Stack     string    `json:"stack,omitempty"`
	ValueKind ValueKind `json:"value_kind"`
}

// PieSlice is one wedge of a pie or donut chart.
type PieSlice struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Color     string  `json:"color"`
}

// TableSpec is the tabular rendition of chart data.
type TableSpec struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ChartSpec is the complete, renderer-agnostic description of one chart. It
// is a pure function of the definition and the adapted data, so two builds
// from the same inputs are byte-for-byte equal.
type ChartSpec struct {
	Title          string       `json:"title"`
	Kind           ChartKind    `json:"kind"`
	Horizontal     bool         `json:"horizontal"`
	Stacked        bool         `json:"stacked"`
	ShowDataLabels bool         `json:"show_data_labels"`
	XOffset        bool         `json:"x_offset"`
	Axis           AxisSpec     `json:"axis"`
	Series         []SeriesSpec `json:"series,omitempty"`
	Slices         []PieSlice   `json:"slices,omitempty"`
	DonutRadius    []string     `json:"donut_radius,omitempty"`
	Table          *TableSpec   `json:"table,omitempty"`
}

// stackableKinds are the chart kinds whose series may share a stack.
var stackableKinds = map[ChartKind]bool{
	KindBar:           true,
	KindBarHorizontal: true,
	KindArea:          true,
}

// Stackable reports whether the kind supports series stacking.
func Stackable(kind ChartKind) bool {
	return stackableKinds[kind]
}

// BuildSpec turns adapted chart data into a render-ready spec. It has no
// side effects and touches no clock, store, or network.
func BuildSpec(def ChartDefinition, data ChartData) (ChartSpec, error) {
	spec := ChartSpec{
		Title:          def.Name,
		Kind:           def.Kind,
		Horizontal:     def.Kind == KindBarHorizontal,
		Stacked:        def.Options.Stacked && Stackable(def.Kind),
		ShowDataLabels: def.Options.DataLabels,
		XOffset:        def.Options.XOffset,
		Axis: AxisSpec{
			Labels:      data.Labels,
			Min:         def.Options.YMin,
			Max:         def.Options.YMax,
			SplitNumber: splitNumber(def.Options),
		},
	}

	switch def.Kind {
	case KindBar, KindBarHorizontal, KindLine, KindArea:
		spec.Series = buildSeriesSpecs(data, spec.Stacked)
	case KindPie, KindDonut:
		spec.Slices = buildSlices(data)
		if def.Kind == KindDonut {
			spec.DonutRadius = []string{"40%", "70%"}
		}
	case KindTable:
		spec.Table = buildTable(data)
	default:
		return ChartSpec{}, fmt.Errorf("chartbuilder: unknown chart kind %q", def.Kind)
	}
	return spec, nil
}

// splitNumber derives the value-axis tick count from an explicit step. All
// three bounds must be set and the step must divide a positive range.
func splitNumber(options ChartOptions) int {
	if options.YMin == nil || options.YMax == nil || options.YStep == nil {
		return 0
	}
	span := *options.YMax - *options.YMin
	step := *options.YStep
	if span <= 0 || step <= 0 {
		return 0
	}
	return int(math.Round(span / step))
}

func buildSeriesSpecs(data ChartData, stacked bool) []SeriesSpec {
	specs := make([]SeriesSpec, len(data.Series))
	for i, s := range data.Series {
		formatted := make([]string, len(s.Values))
		for j := range s.Values {
			v := s.Values[j]
			formatted[j] = FormatDataLabel(v, s.ValueKind)
		}
		spec := SeriesSpec{
			Name:      s.Label,
			Values:    s.Values,
			Formatted: formatted,
			Color:     seriesColor(s.Color, i),
			ValueKind: s.ValueKind,
		}
		if stacked {
			spec.Stack = "total"
		}
		specs[i] = spec
	}
	return specs
}

// buildSlices flattens the first series into wedges, one per axis label.
// Pie charts ignore any additional series.
func buildSlices(data ChartData) []PieSlice {
	if len(data.Series) == 0 {
		return nil
	}
	first := data.Series[0]
	slices := make([]PieSlice, 0, len(data.Labels))
	for i, label := range data.Labels {
		var value float64
		if i < len(first.Values) {
			value = first.Values[i]
		}
		slices = append(slices, PieSlice{
			Name:      label,
			Value:     value,
			Formatted: FormatDataLabel(value, first.ValueKind),
			Color:     PaletteColor(i),
		})
	}
	return slices
}

// buildTable renders one row per axis label with every series as a column,
// values formatted per the series value kind.
func buildTable(data ChartData) *TableSpec {
	header := make([]string, 0, len(data.Series)+1)
	header = append(header, "")
	for _, s := range data.Series {
		header = append(header, s.Label)
	}
	rows := make([][]string, len(data.Labels))
	for i, label := range data.Labels {
		row := make([]string, 0, len(data.Series)+1)
		row = append(row, label)
		for _, s := range data.Series {
			if i < len(s.Values) {
				v := s.Values[i]
				row = append(row, FormatValue(&v, s.ValueKind))
			} else {
				row = append(row, FormatValue(nil, s.ValueKind))
			}
		}
		rows[i] = row
	}
	return &TableSpec{Header: header, Rows: rows}
}
