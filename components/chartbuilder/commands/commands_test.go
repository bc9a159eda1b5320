package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

type stubService struct {
	savedWorkflow string
	saved         chartbuilder.ChartDefinition
	deletedChart  string
	indicator     string
	indicatorKind chartbuilder.ValueKind
	notified      []chartbuilder.ChartEvent
	err           error
}

func (s *stubService) SaveChart(_ context.Context, workflowID string, def chartbuilder.ChartDefinition) (chartbuilder.ChartDefinition, error) {
	if s.err != nil {
		return chartbuilder.ChartDefinition{}, s.err
	}
	s.savedWorkflow = workflowID
	s.saved = def
	if def.ID == "" {
		def.ID = "created"
	}
	return def, nil
}

func (s *stubService) DeleteChart(_ context.Context, workflowID, chartID string) error {
	if s.err != nil {
		return s.err
	}
	s.savedWorkflow = workflowID
	s.deletedChart = chartID
	return nil
}

func (s *stubService) SetIndicatorKind(_ context.Context, workflowID, indicator string, kind chartbuilder.ValueKind) error {
	if s.err != nil {
		return s.err
	}
	s.savedWorkflow = workflowID
	s.indicator = indicator
	s.indicatorKind = kind
	return nil
}

func (s *stubService) NotifyChartUpdated(_ context.Context, event chartbuilder.ChartEvent) error {
	if s.err != nil {
		return s.err
	}
	s.notified = append(s.notified, event)
	return nil
}

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}

func TestSaveChartCommand(t *testing.T) {
	svc := &stubService{}
	telemetry := &recordingTelemetry{}
	cmd := NewSaveChartCommand(svc, telemetry)

	err := cmd.Execute(context.Background(), SaveChartInput{
		WorkflowID: "wf1",
		Definition: chartbuilder.ChartDefinition{Name: "Receitas", Kind: chartbuilder.KindBar},
	})
	require.NoError(t, err)
	assert.Equal(t, "wf1", svc.savedWorkflow)
	assert.Equal(t, "Receitas", svc.saved.Name)
	assert.Equal(t, []string{"chartbuilder.command.save"}, telemetry.events)
}

func TestSaveChartCommandPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	cmd := NewSaveChartCommand(&stubService{err: boom}, nil)
	telemetry := &recordingTelemetry{}
	cmd.telemetry = telemetry

	err := cmd.Execute(context.Background(), SaveChartInput{WorkflowID: "wf1"})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, telemetry.events)
}

func TestSaveChartCommandRequiresService(t *testing.T) {
	cmd := NewSaveChartCommand(nil, nil)
	assert.Error(t, cmd.Execute(context.Background(), SaveChartInput{}))
}

func TestDeleteChartCommand(t *testing.T) {
	svc := &stubService{}
	telemetry := &recordingTelemetry{}
	cmd := NewDeleteChartCommand(svc, telemetry)

	err := cmd.Execute(context.Background(), DeleteChartInput{WorkflowID: "wf1", ChartID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", svc.deletedChart)
	assert.Equal(t, []string{"chartbuilder.command.delete"}, telemetry.events)
}

func TestSetIndicatorKindCommand(t *testing.T) {
	svc := &stubService{}
	cmd := NewSetIndicatorKindCommand(svc, nil)

	err := cmd.Execute(context.Background(), SetIndicatorKindInput{
		WorkflowID: "wf1",
		Indicator:  "Receita Líquida",
		Kind:       chartbuilder.ValuePercentage,
	})
	require.NoError(t, err)
	assert.Equal(t, "Receita Líquida", svc.indicator)
	assert.Equal(t, chartbuilder.ValuePercentage, svc.indicatorKind)
}

func TestRefreshChartsCommand(t *testing.T) {
	svc := &stubService{}
	cmd := NewRefreshChartsCommand(svc, nil)

	event := chartbuilder.ChartEvent{WorkflowID: "wf1", ChartID: "c1", Reason: "update"}
	require.NoError(t, cmd.Execute(context.Background(), RefreshChartsInput{Event: event}))
	require.Len(t, svc.notified, 1)
	assert.Equal(t, event, svc.notified[0])
}
