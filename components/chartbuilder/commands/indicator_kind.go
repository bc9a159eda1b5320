package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// SetIndicatorKindInput retags how one balancete indicator's values are
// formatted across every chart of the workflow.
type SetIndicatorKindInput struct {
	WorkflowID string                 `json:"workflow_id"`
	Indicator  string                 `json:"indicador"`
	Kind       chartbuilder.ValueKind `json:"tipo"`
}

type indicatorService interface {
	SetIndicatorKind(ctx context.Context, workflowID, indicator string, kind chartbuilder.ValueKind) error
}

// SetIndicatorKindCommand wraps Service.SetIndicatorKind.
type SetIndicatorKindCommand struct {
	service   indicatorService
	telemetry Telemetry
}

// NewSetIndicatorKindCommand builds a command instance.
func NewSetIndicatorKindCommand(service indicatorService, telemetry Telemetry) *SetIndicatorKindCommand {
	return &SetIndicatorKindCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetIndicatorKindInput] = (*SetIndicatorKindCommand)(nil)

// Execute updates the indicator value kind.
func (c *SetIndicatorKindCommand) Execute(ctx context.Context, msg SetIndicatorKindInput) error {
	if c.service == nil {
		return errors.New("indicator kind command requires service")
	}
	if err := c.service.SetIndicatorKind(ctx, msg.WorkflowID, msg.Indicator, msg.Kind); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "chartbuilder.command.indicator_kind", map[string]any{
		"workflow_id": msg.WorkflowID,
		"indicator":   msg.Indicator,
		"kind":        string(msg.Kind),
	})
	return nil
}
