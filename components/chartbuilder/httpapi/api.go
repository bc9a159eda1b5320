package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/commands"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/queries"
)

// Executor is the transport-facing surface of the chart builder: every
// mutation and read the HTTP layer needs, without exposing the service.
type Executor interface {
	Save(ctx context.Context, input commands.SaveChartInput) error
	Delete(ctx context.Context, input commands.DeleteChartInput) error
	IndicatorKind(ctx context.Context, input commands.SetIndicatorKindInput) error
	Refresh(ctx context.Context, input commands.RefreshChartsInput) error
	Charts(ctx context.Context, input queries.ChartListInput) ([]chartbuilder.ChartDefinition, error)
	Render(ctx context.Context, input queries.RenderChartInput) (queries.RenderedChart, error)
	Summary(ctx context.Context, input queries.DatasetSummaryInput) (queries.DatasetSummary, error)
}

// CommandExecutor wires commands and queries into an Executor.
type CommandExecutor struct {
	SaveCmd          gocommand.Commander[commands.SaveChartInput]
	DeleteCmd        gocommand.Commander[commands.DeleteChartInput]
	IndicatorKindCmd gocommand.Commander[commands.SetIndicatorKindInput]
	RefreshCmd       gocommand.Commander[commands.RefreshChartsInput]
	ChartsQuery      gocommand.Querier[queries.ChartListInput, []chartbuilder.ChartDefinition]
	RenderQuery      gocommand.Querier[queries.RenderChartInput, queries.RenderedChart]
	SummaryQuery     gocommand.Querier[queries.DatasetSummaryInput, queries.DatasetSummary]
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Save(ctx context.Context, input commands.SaveChartInput) error {
	return e.SaveCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Delete(ctx context.Context, input commands.DeleteChartInput) error {
	return e.DeleteCmd.Execute(ctx, input)
}

func (e *CommandExecutor) IndicatorKind(ctx context.Context, input commands.SetIndicatorKindInput) error {
	return e.IndicatorKindCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshChartsInput) error {
	return e.RefreshCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Charts(ctx context.Context, input queries.ChartListInput) ([]chartbuilder.ChartDefinition, error) {
	return e.ChartsQuery.Query(ctx, input)
}

func (e *CommandExecutor) Render(ctx context.Context, input queries.RenderChartInput) (queries.RenderedChart, error) {
	return e.RenderQuery.Query(ctx, input)
}

func (e *CommandExecutor) Summary(ctx context.Context, input queries.DatasetSummaryInput) (queries.DatasetSummary, error) {
	return e.SummaryQuery.Query(ctx, input)
}

// Handlers exposes plain net/http endpoints backed by shared commands, for
// hosts that do not mount the go-router integration.
type Handlers struct {
	Save          gocommand.Commander[commands.SaveChartInput]
	Delete        gocommand.Commander[commands.DeleteChartInput]
	IndicatorKind gocommand.Commander[commands.SetIndicatorKindInput]
	Charts        gocommand.Querier[queries.ChartListInput, []chartbuilder.ChartDefinition]
}

// HandleListCharts serves the workflow's chart definitions.
func (h *Handlers) HandleListCharts(w http.ResponseWriter, r *http.Request, workflowID string) {
	defs, err := h.Charts.Query(r.Context(), queries.ChartListInput{WorkflowID: workflowID})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"charts": defs})
}

// HandleSaveChart accepts a raw chart payload in either wire shape,
// normalizes it once, and persists it.
func (h *Handlers) HandleSaveChart(w http.ResponseWriter, r *http.Request, workflowID string) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	def, err := DecodeChartPayload(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.SaveChartInput{WorkflowID: workflowID, Definition: def}
	if err := h.Save.Execute(r.Context(), input); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleDeleteChart removes one chart.
func (h *Handlers) HandleDeleteChart(w http.ResponseWriter, r *http.Request, workflowID, chartID string) {
	input := commands.DeleteChartInput{WorkflowID: workflowID, ChartID: chartID}
	if err := h.Delete.Execute(r.Context(), input); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleIndicatorKind retags an indicator's value kind.
func (h *Handlers) HandleIndicatorKind(w http.ResponseWriter, r *http.Request, workflowID, indicator string) {
	var payload struct {
		Kind chartbuilder.ValueKind `json:"tipo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.SetIndicatorKindInput{
		WorkflowID: workflowID,
		Indicator:  indicator,
		Kind:       payload.Kind,
	}
	if err := h.IndicatorKind.Execute(r.Context(), input); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DecodeChartPayload folds a raw wire body into a validated definition.
func DecodeChartPayload(raw map[string]any) (chartbuilder.ChartDefinition, error) {
	if options, ok := raw["options"].(map[string]any); ok {
		if err := chartbuilder.ValidateOptionsPayload(options); err != nil {
			return chartbuilder.ChartDefinition{}, err
		}
	}
	return chartbuilder.NormalizeDefinition(raw)
}

func writeCommandError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var verr *chartbuilder.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, chartbuilder.ErrRequestInFlight):
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
