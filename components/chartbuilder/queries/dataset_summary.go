package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// DatasetSummaryInput identifies the workflow to summarize.
type DatasetSummaryInput struct {
	WorkflowID  string                   `json:"workflow_id"`
	DatasetKind chartbuilder.DatasetKind `json:"dataset_kind"`
}

// DatasetSummary is what the wizard needs to populate its selectors without
// pulling the full dataset.
type DatasetSummary struct {
	DatasetKind     chartbuilder.DatasetKind    `json:"dataset_kind"`
	TotalIndicators int                         `json:"total_indicators,omitempty"`
	Indicators      []chartbuilder.SelectOption `json:"indicators,omitempty"`
	Metrics         []chartbuilder.MetricOption `json:"metrics,omitempty"`
	Categories      []chartbuilder.Category     `json:"categories,omitempty"`
	Tables          []CategoryTable             `json:"tables,omitempty"`
}

// CategoryTable sizes one analise_jp category table for the grid view.
type CategoryTable struct {
	Slug    string `json:"slug"`
	Label   string `json:"label"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// DatasetSummaryQuery builds the wizard's selector payload from the
// workflow's dataset source.
type DatasetSummaryQuery struct {
	datasets chartbuilder.DatasetSource
}

// NewDatasetSummaryQuery builds the query.
func NewDatasetSummaryQuery(datasets chartbuilder.DatasetSource) *DatasetSummaryQuery {
	return &DatasetSummaryQuery{datasets: datasets}
}

var _ gocommand.Querier[DatasetSummaryInput, DatasetSummary] = (*DatasetSummaryQuery)(nil)

// Query summarizes the workflow's dataset for the wizard.
func (q *DatasetSummaryQuery) Query(ctx context.Context, input DatasetSummaryInput) (DatasetSummary, error) {
	summary := DatasetSummary{DatasetKind: input.DatasetKind}
	switch input.DatasetKind {
	case chartbuilder.DatasetAnaliseJP:
		categories, err := q.datasets.AnaliseCategories(ctx, input.WorkflowID)
		if err != nil {
			return DatasetSummary{}, err
		}
		summary.Categories = categories
		for _, category := range categories {
			ds, err := q.datasets.AnaliseDataset(ctx, input.WorkflowID, category.Slug)
			if err != nil {
				continue
			}
			summary.Tables = append(summary.Tables, CategoryTable{
				Slug:    category.Slug,
				Label:   category.Label,
				Rows:    len(ds.Records),
				Columns: len(ds.Fields),
			})
		}
	default:
		ds, err := q.datasets.BalanceteDataset(ctx, input.WorkflowID)
		if err != nil {
			return DatasetSummary{}, err
		}
		summary.DatasetKind = chartbuilder.DatasetBalancete
		summary.TotalIndicators = ds.TotalIndicators()
		summary.Indicators = ds.IndicatorOptions
		summary.Metrics = ds.ValueOptions
	}
	return summary, nil
}
