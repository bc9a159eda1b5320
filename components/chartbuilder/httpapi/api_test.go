package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/commands"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/queries"
)

type stubCommander[T any] struct {
	inputs []T
	err    error
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.inputs = append(s.inputs, msg)
	return s.err
}

type stubQuerier[I any, O any] struct {
	output O
	err    error
}

func (s *stubQuerier[I, O]) Query(_ context.Context, _ I) (O, error) {
	return s.output, s.err
}

func TestHandleSaveChartNormalizesPayload(t *testing.T) {
	save := &stubCommander[commands.SaveChartInput]{}
	h := &Handlers{Save: save}

	body := `{
		"nome": "Receitas",
		"chart_type": "bar",
		"indicadores": ["Receita Líquida"],
		"metricas": ["valor_periodo_1"],
		"options": {"stacked": true}
	}`
	req := httptest.NewRequest(http.MethodPost, "/charts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSaveChart(rec, req, "wf1")

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, save.inputs, 1)
	input := save.inputs[0]
	assert.Equal(t, "wf1", input.WorkflowID)
	assert.Equal(t, "Receitas", input.Definition.Name)
	assert.Equal(t, chartbuilder.KindBar, input.Definition.Kind)
	assert.True(t, input.Definition.Options.Stacked)
}

func TestHandleSaveChartRejectsBadOptions(t *testing.T) {
	save := &stubCommander[commands.SaveChartInput]{}
	h := &Handlers{Save: save}

	body := `{"nome": "x", "chart_type": "bar", "options": {"stacked": "sim"}}`
	req := httptest.NewRequest(http.MethodPost, "/charts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSaveChart(rec, req, "wf1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, save.inputs)
}

func TestHandleSaveChartMapsValidationError(t *testing.T) {
	save := &stubCommander[commands.SaveChartInput]{
		err: &chartbuilder.ValidationError{Field: "nome", Message: "Informe um nome para o gráfico"},
	}
	h := &Handlers{Save: save}

	body := `{"nome": "x", "chart_type": "bar"}`
	req := httptest.NewRequest(http.MethodPost, "/charts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSaveChart(rec, req, "wf1")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload["error"], "Informe um nome")
}

func TestHandleDeleteChartMapsInFlight(t *testing.T) {
	del := &stubCommander[commands.DeleteChartInput]{err: chartbuilder.ErrRequestInFlight}
	h := &Handlers{Delete: del}

	req := httptest.NewRequest(http.MethodDelete, "/charts/c1", nil)
	rec := httptest.NewRecorder()
	h.HandleDeleteChart(rec, req, "wf1", "c1")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleDeleteChart(t *testing.T) {
	del := &stubCommander[commands.DeleteChartInput]{}
	h := &Handlers{Delete: del}

	req := httptest.NewRequest(http.MethodDelete, "/charts/c1", nil)
	rec := httptest.NewRecorder()
	h.HandleDeleteChart(rec, req, "wf1", "c1")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, del.inputs, 1)
	assert.Equal(t, "c1", del.inputs[0].ChartID)
}

func TestHandleListCharts(t *testing.T) {
	h := &Handlers{Charts: &stubQuerier[queries.ChartListInput, []chartbuilder.ChartDefinition]{
		output: []chartbuilder.ChartDefinition{{ID: "c1", Name: "Receitas", Kind: chartbuilder.KindBar}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/charts", nil)
	rec := httptest.NewRecorder()
	h.HandleListCharts(rec, req, "wf1")

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Charts []chartbuilder.ChartDefinition `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Charts, 1)
	assert.Equal(t, "Receitas", payload.Charts[0].Name)
}

func TestHandleIndicatorKind(t *testing.T) {
	cmd := &stubCommander[commands.SetIndicatorKindInput]{}
	h := &Handlers{IndicatorKind: cmd}

	req := httptest.NewRequest(http.MethodPatch, "/indicadores/Receita/tipo", strings.NewReader(`{"tipo": "percentage"}`))
	rec := httptest.NewRecorder()
	h.HandleIndicatorKind(rec, req, "wf1", "Receita Líquida")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, cmd.inputs, 1)
	assert.Equal(t, "Receita Líquida", cmd.inputs[0].Indicator)
	assert.Equal(t, chartbuilder.ValuePercentage, cmd.inputs[0].Kind)
}

func TestCommandExecutorDelegates(t *testing.T) {
	save := &stubCommander[commands.SaveChartInput]{}
	render := &stubQuerier[queries.RenderChartInput, queries.RenderedChart]{
		output: queries.RenderedChart{ChartID: "c1", HTML: "<div/>"},
	}
	exec := &CommandExecutor{SaveCmd: save, RenderQuery: render}

	require.NoError(t, exec.Save(context.Background(), commands.SaveChartInput{WorkflowID: "wf1"}))
	require.Len(t, save.inputs, 1)

	rendered, err := exec.Render(context.Background(), queries.RenderChartInput{WorkflowID: "wf1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", rendered.ChartID)
}
