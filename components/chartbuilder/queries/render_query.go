package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// RenderChartInput asks for one chart's markup, shaped against the
// workflow's current dataset.
type RenderChartInput struct {
	WorkflowID string                       `json:"workflow_id"`
	Definition chartbuilder.ChartDefinition `json:"definition"`
}

// RenderedChart is the render result served to the dashboard grid.
type RenderedChart struct {
	ChartID string `json:"chart_id,omitempty"`
	HTML    string `json:"html"`
}

type renderService interface {
	RenderChart(ctx context.Context, workflowID string, def chartbuilder.ChartDefinition) (string, error)
}

// RenderChartQuery renders a definition through the service's cache.
type RenderChartQuery struct {
	service renderService
}

// NewRenderChartQuery builds the query.
func NewRenderChartQuery(service renderService) *RenderChartQuery {
	return &RenderChartQuery{service: service}
}

var _ gocommand.Querier[RenderChartInput, RenderedChart] = (*RenderChartQuery)(nil)

// Query renders the chart.
func (q *RenderChartQuery) Query(ctx context.Context, input RenderChartInput) (RenderedChart, error) {
	html, err := q.service.RenderChart(ctx, input.WorkflowID, input.Definition)
	if err != nil {
		return RenderedChart{}, err
	}
	return RenderedChart{ChartID: input.Definition.ID, HTML: html}, nil
}
