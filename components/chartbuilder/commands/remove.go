package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// DeleteChartInput identifies the chart to remove.
type DeleteChartInput struct {
	WorkflowID string `json:"workflow_id"`
	ChartID    string `json:"chart_id"`
}

type deleteService interface {
	DeleteChart(ctx context.Context, workflowID, chartID string) error
}

// DeleteChartCommand wraps Service.DeleteChart and records telemetry for
// auditing purposes.
type DeleteChartCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteChartCommand builds a command instance.
func NewDeleteChartCommand(service deleteService, telemetry Telemetry) *DeleteChartCommand {
	return &DeleteChartCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteChartInput] = (*DeleteChartCommand)(nil)

// Execute removes the chart.
func (c *DeleteChartCommand) Execute(ctx context.Context, msg DeleteChartInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if err := c.service.DeleteChart(ctx, msg.WorkflowID, msg.ChartID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chartbuilder.command.delete", map[string]any{
		"workflow_id": msg.WorkflowID,
		"chart_id":    msg.ChartID,
	})
	return nil
}
