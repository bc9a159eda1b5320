package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

type stubChartService struct {
	charts []chartbuilder.ChartDefinition
	html   string
	err    error
}

func (s *stubChartService) ListCharts(_ context.Context, workflowID string) ([]chartbuilder.ChartDefinition, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.charts, nil
}

func (s *stubChartService) RenderChart(_ context.Context, _ string, def chartbuilder.ChartDefinition) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

func TestChartListQuery(t *testing.T) {
	svc := &stubChartService{charts: []chartbuilder.ChartDefinition{
		{ID: "c1", Name: "Receitas", Kind: chartbuilder.KindBar},
		{ID: "c2", Name: "Margens", Kind: chartbuilder.KindLine},
	}}
	query := NewChartListQuery(svc)

	charts, err := query.Query(context.Background(), ChartListInput{WorkflowID: "wf1"})
	require.NoError(t, err)
	require.Len(t, charts, 2)
	assert.Equal(t, "Receitas", charts[0].Name)
}

func TestRenderChartQuery(t *testing.T) {
	svc := &stubChartService{html: "<div>chart</div>"}
	query := NewRenderChartQuery(svc)

	rendered, err := query.Query(context.Background(), RenderChartInput{
		WorkflowID: "wf1",
		Definition: chartbuilder.ChartDefinition{ID: "c1", Kind: chartbuilder.KindBar},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", rendered.ChartID)
	assert.Equal(t, "<div>chart</div>", rendered.HTML)
}

func TestRenderChartQueryPropagatesError(t *testing.T) {
	boom := errors.New("render failed")
	query := NewRenderChartQuery(&stubChartService{err: boom})

	_, err := query.Query(context.Background(), RenderChartInput{WorkflowID: "wf1"})
	assert.ErrorIs(t, err, boom)
}

func TestDatasetSummaryQueryBalancete(t *testing.T) {
	datasets := chartbuilder.NewInMemoryDatasetSource()
	datasets.SeedBalancete("wf1", &chartbuilder.BalanceteDataset{
		PeriodLabels: map[string]string{
			"valor_periodo_1": "Jan/2025",
			"valor_periodo_2": "Fev/2025",
		},
		Records: []chartbuilder.IndicatorRecord{
			{Indicator: "Receita Líquida"},
			{Indicator: "Despesas"},
		},
		IndicatorOptions: []chartbuilder.SelectOption{
			{Value: "Receita Líquida", Label: "Receita Líquida"},
			{Value: "Despesas", Label: "Despesas"},
		},
		ValueOptions: []chartbuilder.MetricOption{
			{Key: "valor_periodo_1", Label: "Jan/2025"},
		},
	})
	query := NewDatasetSummaryQuery(datasets)

	summary, err := query.Query(context.Background(), DatasetSummaryInput{WorkflowID: "wf1"})
	require.NoError(t, err)
	assert.Equal(t, chartbuilder.DatasetBalancete, summary.DatasetKind)
	assert.Equal(t, 2, summary.TotalIndicators)
	require.Len(t, summary.Indicators, 2)
	require.Len(t, summary.Metrics, 1)
	assert.Empty(t, summary.Categories)
}

func TestDatasetSummaryQueryAnalise(t *testing.T) {
	datasets := chartbuilder.NewInMemoryDatasetSource()
	datasets.SeedAnalise("wf1",
		chartbuilder.Category{Slug: "vendas", Label: "Vendas"},
		&chartbuilder.AnaliseDataset{
			Fields: []string{"regiao", "total"},
			Records: []map[string]string{
				{"regiao": "Sul", "total": "10"},
				{"regiao": "Norte", "total": "20"},
			},
		},
	)
	query := NewDatasetSummaryQuery(datasets)

	summary, err := query.Query(context.Background(), DatasetSummaryInput{
		WorkflowID:  "wf1",
		DatasetKind: chartbuilder.DatasetAnaliseJP,
	})
	require.NoError(t, err)
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, "vendas", summary.Categories[0].Slug)
	require.Len(t, summary.Tables, 1)
	assert.Equal(t, 2, summary.Tables[0].Rows)
	assert.Equal(t, 2, summary.Tables[0].Columns)
	assert.Zero(t, summary.TotalIndicators)
}

func TestDatasetSummaryQueryMissingWorkflow(t *testing.T) {
	query := NewDatasetSummaryQuery(chartbuilder.NewInMemoryDatasetSource())
	_, err := query.Query(context.Background(), DatasetSummaryInput{WorkflowID: "nope"})
	assert.Error(t, err)
}
