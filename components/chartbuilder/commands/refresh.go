package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// RefreshChartsInput emits refresh notifications for a workflow's charts.
type RefreshChartsInput struct {
	Event chartbuilder.ChartEvent `json:"event"`
}

type refreshNotifier interface {
	NotifyChartUpdated(ctx context.Context, event chartbuilder.ChartEvent) error
}

// RefreshChartsCommand triggers refresh hooks without forcing transports.
type RefreshChartsCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshChartsCommand creates the command.
func NewRefreshChartsCommand(service refreshNotifier, telemetry Telemetry) *RefreshChartsCommand {
	return &RefreshChartsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshChartsInput] = (*RefreshChartsCommand)(nil)

// Execute notifies the chart builder's refresh hooks.
func (c *RefreshChartsCommand) Execute(ctx context.Context, msg RefreshChartsInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.NotifyChartUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chartbuilder.command.refresh", map[string]any{
		"workflow_id": msg.Event.WorkflowID,
		"chart_id":    msg.Event.ChartID,
	})
	return nil
}
