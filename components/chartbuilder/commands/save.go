package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// SaveChartInput carries a chart create or update for one workflow. A
// definition without an ID creates; with an ID it updates.
type SaveChartInput struct {
	WorkflowID string                       `json:"workflow_id"`
	Definition chartbuilder.ChartDefinition `json:"definition"`
}

type saveService interface {
	SaveChart(ctx context.Context, workflowID string, def chartbuilder.ChartDefinition) (chartbuilder.ChartDefinition, error)
}

// SaveChartCommand wraps Service.SaveChart so transports can persist charts
// without linking directly against the service.
type SaveChartCommand struct {
	service   saveService
	telemetry Telemetry
}

// NewSaveChartCommand creates a command instance.
func NewSaveChartCommand(service saveService, telemetry Telemetry) *SaveChartCommand {
	return &SaveChartCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveChartInput] = (*SaveChartCommand)(nil)

// Execute delegates to the chart builder service.
func (c *SaveChartCommand) Execute(ctx context.Context, msg SaveChartInput) error {
	if c.service == nil {
		return errors.New("save command requires service")
	}
	saved, err := c.service.SaveChart(ctx, msg.WorkflowID, msg.Definition)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chartbuilder.command.save", map[string]any{
		"workflow_id": msg.WorkflowID,
		"chart_id":    saved.ID,
		"chart_type":  string(saved.Kind),
	})
	return nil
}
