package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/commands"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/httpapi"
	"github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder/queries"
)

// Config wires go-router with the chart builder API and refresh hooks.
type Config[T any] struct {
	Router    router.Router[T]
	API       httpapi.Executor
	Broadcast *chartbuilder.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for chart endpoints.
type RouteConfig struct {
	Charts        string
	ChartID       string
	Render        string
	Summary       string
	IndicatorKind string
	WebSocket     string
}

// Register mounts the chart builder's REST and WebSocket routes.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api executor is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.Charts, router.WrapHandler(func(ctx router.Context) error {
		workflowID := ctx.Param("workflow_id")
		defs, err := cfg.API.Charts(ctx.Context(), queries.ChartListInput{WorkflowID: workflowID})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"charts": defs})
	}))

	group.Post(routes.Charts, router.WrapHandler(func(ctx router.Context) error {
		return handleSave(ctx, cfg.API, "")
	}))

	group.Put(routes.ChartID, router.WrapHandler(func(ctx router.Context) error {
		chartID := ctx.Param("chart_id")
		if chartID == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("chart id is required"))
		}
		return handleSave(ctx, cfg.API, chartID)
	}))

	group.Delete(routes.ChartID, router.WrapHandler(func(ctx router.Context) error {
		workflowID := ctx.Param("workflow_id")
		chartID := ctx.Param("chart_id")
		if chartID == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("chart id is required"))
		}
		input := commands.DeleteChartInput{WorkflowID: workflowID, ChartID: chartID}
		if err := cfg.API.Delete(ctx.Context(), input); err != nil {
			return respondCommandError(ctx, err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))

	group.Post(routes.Render, router.WrapHandler(func(ctx router.Context) error {
		workflowID := ctx.Param("workflow_id")
		var raw map[string]any
		if err := json.Unmarshal(ctx.Body(), &raw); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		def, err := httpapi.DecodeChartPayload(raw)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		rendered, err := cfg.API.Render(ctx.Context(), queries.RenderChartInput{
			WorkflowID: workflowID,
			Definition: def,
		})
		if err != nil {
			return respondCommandError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, rendered)
	}))

	group.Get(routes.Summary, router.WrapHandler(func(ctx router.Context) error {
		workflowID := ctx.Param("workflow_id")
		kind := chartbuilder.DatasetKind(ctx.Query("tipo"))
		summary, err := cfg.API.Summary(ctx.Context(), queries.DatasetSummaryInput{
			WorkflowID:  workflowID,
			DatasetKind: kind,
		})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, summary)
	}))

	group.Patch(routes.IndicatorKind, router.WrapHandler(func(ctx router.Context) error {
		workflowID := ctx.Param("workflow_id")
		indicator := ctx.Param("indicador")
		var payload struct {
			Kind chartbuilder.ValueKind `json:"tipo"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.SetIndicatorKindInput{
			WorkflowID: workflowID,
			Indicator:  indicator,
			Kind:       payload.Kind,
		}
		if err := cfg.API.IndicatorKind(ctx.Context(), input); err != nil {
			return respondCommandError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func handleSave(ctx router.Context, api httpapi.Executor, chartID string) error {
	workflowID := ctx.Param("workflow_id")
	var raw map[string]any
	if err := json.Unmarshal(ctx.Body(), &raw); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	def, err := httpapi.DecodeChartPayload(raw)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if chartID != "" {
		def.ID = chartID
	}
	input := commands.SaveChartInput{WorkflowID: workflowID, Definition: def}
	if err := api.Save(ctx.Context(), input); err != nil {
		return respondCommandError(ctx, err)
	}
	status := http.StatusCreated
	if chartID != "" {
		status = http.StatusOK
	}
	return ctx.JSON(status, map[string]string{"status": "saved"})
}

func registerWebSocket[T any](r router.Router[T], hook *chartbuilder.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func respondCommandError(ctx router.Context, err error) error {
	status := http.StatusInternalServerError
	var verr *chartbuilder.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, chartbuilder.ErrRequestInFlight):
		status = http.StatusConflict
	}
	return respondError(ctx, status, err)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Charts == "" {
		routes.Charts = "/workflow/:workflow_id/charts"
	}
	if routes.ChartID == "" {
		routes.ChartID = "/workflow/:workflow_id/charts/:chart_id"
	}
	if routes.Render == "" {
		routes.Render = "/workflow/:workflow_id/charts/render"
	}
	if routes.Summary == "" {
		routes.Summary = "/workflow/:workflow_id/dataset/summary"
	}
	if routes.IndicatorKind == "" {
		routes.IndicatorKind = "/workflow/:workflow_id/indicadores/:indicador/tipo"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/workflow/ws"
	}
	return routes
}
