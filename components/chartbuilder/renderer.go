package chartbuilder

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// Renderer turns a ChartSpec into embeddable markup.
type Renderer interface {
	Render(spec ChartSpec) (string, error)
}

// EChartsRenderer renders chart specs to self-contained ECharts HTML.
type EChartsRenderer struct {
	theme      string
	height     string
	assetsHost string
}

// EChartsRendererOption customizes renderer behavior.
type EChartsRendererOption func(*EChartsRenderer)

// WithTheme overrides the default Westeros theme.
func WithTheme(theme string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.theme = theme
	}
}

// WithHeight sets the rendered chart height.
func WithHeight(height string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.height = height
	}
}

// WithAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithAssetsHost(host string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer with sensible defaults.
func NewEChartsRenderer(options ...EChartsRendererOption) *EChartsRenderer {
	r := &EChartsRenderer{
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render dispatches on the spec's kind. Table specs render as plain HTML;
// everything else goes through go-echarts.
func (r *EChartsRenderer) Render(spec ChartSpec) (string, error) {
	switch spec.Kind {
	case KindBar, KindBarHorizontal:
		return r.renderBar(spec)
	case KindLine, KindArea:
		return r.renderLine(spec)
	case KindPie, KindDonut:
		return r.renderPie(spec)
	case KindTable:
		return renderTable(spec)
	default:
		return "", fmt.Errorf("chartbuilder: unsupported chart kind %q", spec.Kind)
	}
}

func (r *EChartsRenderer) renderBar(spec ChartSpec) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(spec)...)
	bar.SetXAxis(spec.Axis.Labels)
	for _, s := range spec.Series {
		bar.AddSeries(s.Name, toBarData(s),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithBarChartOpts(opts.BarChart{Stack: s.Stack}),
		)
	}
	if spec.ShowDataLabels {
		bar.SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: barLabelPosition(spec),
		}))
	}
	if spec.Horizontal {
		bar.XYReversal()
	}
	return renderChart(bar)
}

func (r *EChartsRenderer) renderLine(spec ChartSpec) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(spec)...)
	// xOffset keeps the first point off the axis line by padding the
	// category axis on both sides.
	line.SetGlobalOptions(charts.WithXAxisOpts(opts.XAxis{
		BoundaryGap: opts.Bool(spec.XOffset),
	}))
	line.SetXAxis(spec.Axis.Labels)
	for _, s := range spec.Series {
		line.AddSeries(s.Name, toLineData(s),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(true),
				Stack:  s.Stack,
			}),
		)
	}
	if spec.Kind == KindArea {
		line.SetSeriesOptions(charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.35)}))
	}
	if spec.ShowDataLabels {
		line.SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}))
	}
	return renderChart(line)
}

func (r *EChartsRenderer) renderPie(spec ChartSpec) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(spec)...)
	pie.AddSeries(spec.Title, toPieData(spec.Slices))
	if len(spec.DonutRadius) > 0 {
		pie.SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{
			Radius: spec.DonutRadius,
		}))
	}
	if spec.ShowDataLabels {
		pie.SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	}
	return renderChart(pie)
}

// renderTable emits a plain HTML table; table charts have no canvas.
func renderTable(spec ChartSpec) (string, error) {
	if spec.Table == nil {
		return "", fmt.Errorf("chartbuilder: table spec is missing rows")
	}
	var b strings.Builder
	b.WriteString(`<table class="chart-table">`)
	b.WriteString("<thead><tr>")
	for _, cell := range spec.Table.Header {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(cell))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range spec.Table.Rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			tag := "td"
			if i == 0 {
				tag = "th"
			}
			b.WriteString("<" + tag + ">")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</" + tag + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String(), nil
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalChartOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "top"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
	if axis := valueAxis(spec.Axis); axis != nil {
		global = append(global, charts.WithYAxisOpts(*axis))
	}
	return global
}

// valueAxis maps explicit bounds onto the value axis, or nil when the axis
// should autoscale.
func valueAxis(axis AxisSpec) *opts.YAxis {
	if axis.Min == nil && axis.Max == nil && axis.SplitNumber == 0 {
		return nil
	}
	y := &opts.YAxis{SplitNumber: axis.SplitNumber}
	if axis.Min != nil {
		y.Min = *axis.Min
	}
	if axis.Max != nil {
		y.Max = *axis.Max
	}
	return y
}

func barLabelPosition(spec ChartSpec) string {
	if spec.Horizontal {
		return "right"
	}
	return "top"
}

func toBarData(s SeriesSpec) []opts.BarData {
	data := make([]opts.BarData, len(s.Values))
	for i, value := range s.Values {
		data[i] = opts.BarData{Value: value}
	}
	return data
}

func toLineData(s SeriesSpec) []opts.LineData {
	data := make([]opts.LineData, len(s.Values))
	for i, value := range s.Values {
		data[i] = opts.LineData{Value: value}
	}
	return data
}

func toPieData(slices []PieSlice) []opts.PieData {
	data := make([]opts.PieData, len(slices))
	for i, slice := range slices {
		data[i] = opts.PieData{
			Name:      slice.Name,
			Value:     slice.Value,
			ItemStyle: &opts.ItemStyle{Color: slice.Color},
		}
	}
	return data
}
