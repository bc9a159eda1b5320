package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// ChartListInput identifies the workflow whose charts to fetch.
type ChartListInput struct {
	WorkflowID string `json:"workflow_id"`
}

type listService interface {
	ListCharts(ctx context.Context, workflowID string) ([]chartbuilder.ChartDefinition, error)
}

// ChartListQuery fetches the persisted chart definitions of a workflow.
type ChartListQuery struct {
	service listService
}

// NewChartListQuery builds the query.
func NewChartListQuery(service listService) *ChartListQuery {
	return &ChartListQuery{service: service}
}

var _ gocommand.Querier[ChartListInput, []chartbuilder.ChartDefinition] = (*ChartListQuery)(nil)

// Query lists the workflow's charts.
func (q *ChartListQuery) Query(ctx context.Context, input ChartListInput) ([]chartbuilder.ChartDefinition, error) {
	return q.service.ListCharts(ctx, input.WorkflowID)
}
