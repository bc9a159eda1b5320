package chartbuilder

import "context"

// DatasetKind distinguishes the two upload pipelines a workflow can carry.
type DatasetKind string

const (
	DatasetBalancete DatasetKind = "balancete"
	DatasetAnaliseJP DatasetKind = "analise_jp"
)

// ChartKind enumerates the chart types the wizard can produce.
type ChartKind string

const (
	KindBar           ChartKind = "bar"
	KindBarHorizontal ChartKind = "bar-horizontal"
	KindLine          ChartKind = "line"
	KindArea          ChartKind = "area"
	KindPie           ChartKind = "pie"
	KindDonut         ChartKind = "donut"
	KindTable         ChartKind = "table"
)

// ValueKind tags a series or metric with its display formatting.
type ValueKind string

const (
	ValueCurrency   ValueKind = "currency"
	ValuePercentage ValueKind = "percentage"
	ValueMultiplier ValueKind = "multiplier"
	ValueNumber     ValueKind = "number"
)

// MetricSelection is a user-chosen metric (balancete) or value field
// (analise_jp) with its display label and optional color override.
type MetricSelection struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ChartOptions is the options bag persisted with every chart definition.
type ChartOptions struct {
	Stacked         bool              `json:"stacked" yaml:"stacked"`
	DataLabels      bool              `json:"dataLabels" yaml:"dataLabels"`
	XOffset         bool              `json:"xOffset" yaml:"xOffset"`
	YMin            *float64          `json:"yMin,omitempty" yaml:"yMin,omitempty"`
	YMax            *float64          `json:"yMax,omitempty" yaml:"yMax,omitempty"`
	YStep           *float64          `json:"yStep,omitempty" yaml:"yStep,omitempty"`
	RowIndices      []int             `json:"row_indices,omitempty" yaml:"row_indices,omitempty"`
	Aggregate       bool              `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	IndicatorColors map[string]string `json:"indicator_colors,omitempty" yaml:"indicator_colors,omitempty"`
}

// DefaultChartOptions mirrors the wizard's initial draft: data labels and the
// axis offset on, everything else unset.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{DataLabels: true, XOffset: true}
}

// ChartDefinition is the canonical, persisted description of a chart. The
// wire payloads (nested or flattened, Portuguese field names) are folded into
// this shape once, at the API boundary.
type ChartDefinition struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string            `json:"name" yaml:"name"`
	Kind        ChartKind         `json:"chart_type" yaml:"chart_type"`
	DatasetKind DatasetKind       `json:"dataset_kind" yaml:"dataset_kind"`
	Category    string            `json:"category,omitempty" yaml:"category,omitempty"`
	Indicators  []string          `json:"indicators,omitempty" yaml:"indicators,omitempty"`
	Metrics     []MetricSelection `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Dimensions  []string          `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Options     ChartOptions      `json:"options" yaml:"options"`
}

// Series is a transformed view produced by the adapter, never persisted.
type Series struct {
	Key       string    `json:"key,omitempty"`
	Label     string    `json:"label"`
	Values    []float64 `json:"values"`
	Color     string    `json:"color,omitempty"`
	ValueKind ValueKind `json:"value_kind"`
}

// ChartData pairs one label axis with the series aligned to it.
type ChartData struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// SelectOption is a label/value pair offered by a dataset.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MetricOption describes a selectable balancete metric column.
type MetricOption struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	ValueKind ValueKind `json:"value_kind"`
}

// IndicatorRecord is one financial-statement line item of a balancete upload.
type IndicatorRecord struct {
	Indicator string             `json:"indicador"`
	Values    map[string]float64 `json:"values"`
	ValueKind ValueKind          `json:"tipo_valor"`
}

// BalanceteDataset is the indicator-by-period table extracted from an upload.
type BalanceteDataset struct {
	PeriodLabels     map[string]string `json:"period_labels"`
	Records          []IndicatorRecord `json:"records"`
	IndicatorOptions []SelectOption    `json:"indicator_options"`
	ValueOptions     []MetricOption    `json:"value_options"`
}

// Record returns the record matching the indicator name exactly, or nil.
func (d *BalanceteDataset) Record(indicator string) *IndicatorRecord {
	if d == nil {
		return nil
	}
	for i := range d.Records {
		if d.Records[i].Indicator == indicator {
			return &d.Records[i]
		}
	}
	return nil
}

// TotalIndicators reports how many indicators the upload carries.
func (d *BalanceteDataset) TotalIndicators() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// AnaliseDataset is one category's table of an analise_jp workflow.
type AnaliseDataset struct {
	Records       []map[string]string `json:"records"`
	Fields        []string            `json:"fields"`
	NumericFields []string            `json:"numeric_fields"`
}

// DimensionFields returns the categorical columns (fields not marked numeric).
func (d *AnaliseDataset) DimensionFields() []string {
	if d == nil {
		return nil
	}
	numeric := make(map[string]bool, len(d.NumericFields))
	for _, f := range d.NumericFields {
		numeric[f] = true
	}
	var out []string
	for _, f := range d.Fields {
		if !numeric[f] {
			out = append(out, f)
		}
	}
	return out
}

// Category identifies an analise_jp source category.
type Category struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// ChartStore persists chart definitions per workflow. Implementations must be
// safe for concurrent use.
type ChartStore interface {
	ListCharts(ctx context.Context, workflowID string) ([]ChartDefinition, error)
	CreateChart(ctx context.Context, workflowID string, def ChartDefinition) (ChartDefinition, error)
	UpdateChart(ctx context.Context, workflowID, chartID string, def ChartDefinition) (ChartDefinition, error)
	DeleteChart(ctx context.Context, workflowID, chartID string) error
}

// DatasetSource exposes the uploaded datasets a workflow owns. The chart
// builder only ever reads through this interface; ownership stays with the
// upload pipeline.
type DatasetSource interface {
	BalanceteDataset(ctx context.Context, workflowID string) (*BalanceteDataset, error)
	AnaliseDataset(ctx context.Context, workflowID, category string) (*AnaliseDataset, error)
	AnaliseCategories(ctx context.Context, workflowID string) ([]Category, error)
	SetIndicatorKind(ctx context.Context, workflowID, indicator string, kind ValueKind) error
}

// ChartEvent describes chart changes that transports might care about.
type ChartEvent struct {
	WorkflowID string          `json:"workflow_id"`
	ChartID    string          `json:"chart_id,omitempty"`
	Definition ChartDefinition `json:"definition"`
	Reason     string          `json:"reason"`
}

// RefreshHook notifies transports (REST/WebSocket) about chart changes.
type RefreshHook interface {
	ChartUpdated(ctx context.Context, event ChartEvent) error
}
