package chartbuilder

import (
	"fmt"
	"strings"
)

// WizardStep identifies a stage of the chart creation flow.
type WizardStep int

const (
	// StepKind picks the chart type.
	StepKind WizardStep = iota + 1
	// StepData picks indicators/metrics (balancete) or category, dimensions
	// and value fields (analise_jp).
	StepData
	// StepOptions tunes display options and previews the result.
	StepOptions
)

// Wizard drives the chart creation and edit flow. It owns a draft definition
// that only becomes visible to the rest of the system on Finish; closing the
// wizard discards the draft entirely.
type Wizard struct {
	step    WizardStep
	draft   ChartDefinition
	editing bool
}

// NewWizard starts a fresh draft for the given dataset kind.
func NewWizard(kind DatasetKind) *Wizard {
	return &Wizard{
		step: StepKind,
		draft: ChartDefinition{
			DatasetKind: kind,
			Options:     DefaultChartOptions(),
		},
	}
}

// EditWizard starts the flow pre-loaded with an existing chart. The original
// definition is copied; abandoning the edit leaves it untouched.
func EditWizard(def ChartDefinition) *Wizard {
	draft := def
	draft.Indicators = append([]string(nil), def.Indicators...)
	draft.Metrics = append([]MetricSelection(nil), def.Metrics...)
	draft.Dimensions = append([]string(nil), def.Dimensions...)
	draft.Options.RowIndices = append([]int(nil), def.Options.RowIndices...)
	if def.Options.IndicatorColors != nil {
		draft.Options.IndicatorColors = make(map[string]string, len(def.Options.IndicatorColors))
		for k, v := range def.Options.IndicatorColors {
			draft.Options.IndicatorColors[k] = v
		}
	}
	return &Wizard{step: StepKind, draft: draft, editing: true}
}

// Step returns the current stage.
func (w *Wizard) Step() WizardStep { return w.step }

// Editing reports whether the wizard was opened on an existing chart.
func (w *Wizard) Editing() bool { return w.editing }

// Draft returns the working definition. Mutations through the setters below
// keep the draft consistent; the returned copy is safe to inspect.
func (w *Wizard) Draft() ChartDefinition { return w.draft }

// SelectKind records the chart type. Changing the kind away from a stackable
// one clears the stacked flag so the draft never carries an impossible
// combination.
func (w *Wizard) SelectKind(kind ChartKind) error {
	if !KnownChartKind(kind) {
		return &ValidationError{Field: "chart_type", Message: fmt.Sprintf("Tipo de gráfico desconhecido: %q", kind)}
	}
	w.draft.Kind = kind
	if !Stackable(kind) {
		w.draft.Options.Stacked = false
	}
	return nil
}

// SetName records the chart title.
func (w *Wizard) SetName(name string) { w.draft.Name = name }

// SetCategory records the analise_jp source category and drops selections
// that belonged to the previous category.
func (w *Wizard) SetCategory(category string) {
	if w.draft.Category != category {
		w.draft.Dimensions = nil
		w.draft.Metrics = nil
		w.draft.Options.RowIndices = nil
	}
	w.draft.Category = category
}

// ToggleIndicator adds or removes a balancete indicator from the selection.
func (w *Wizard) ToggleIndicator(indicator string) {
	for i, existing := range w.draft.Indicators {
		if existing == indicator {
			w.draft.Indicators = append(w.draft.Indicators[:i], w.draft.Indicators[i+1:]...)
			return
		}
	}
	w.draft.Indicators = append(w.draft.Indicators, indicator)
}

// SetMetrics replaces the metric selection.
func (w *Wizard) SetMetrics(metrics []MetricSelection) {
	w.draft.Metrics = append([]MetricSelection(nil), metrics...)
}

// SetDimensions replaces the analise_jp dimension selection.
func (w *Wizard) SetDimensions(dimensions []string) {
	w.draft.Dimensions = append([]string(nil), dimensions...)
}

// SetRowIndices restricts which dataset rows feed the chart.
func (w *Wizard) SetRowIndices(indices []int) {
	w.draft.Options.RowIndices = append([]int(nil), indices...)
}

// SetIndicatorColor overrides one indicator's series color.
func (w *Wizard) SetIndicatorColor(indicator, color string) {
	if w.draft.Options.IndicatorColors == nil {
		w.draft.Options.IndicatorColors = make(map[string]string)
	}
	w.draft.Options.IndicatorColors[indicator] = color
}

// SetOptions replaces the display options, preserving selections. Stacking
// is dropped when the current kind cannot stack.
func (w *Wizard) SetOptions(options ChartOptions) {
	options.RowIndices = w.draft.Options.RowIndices
	options.IndicatorColors = w.draft.Options.IndicatorColors
	if !Stackable(w.draft.Kind) {
		options.Stacked = false
	}
	w.draft.Options = options
}

// Next advances one step, refusing with the step's validation message when
// the draft is incomplete.
func (w *Wizard) Next() error {
	switch w.step {
	case StepKind:
		if w.draft.Kind == "" {
			return &ValidationError{Field: "chart_type", Message: "Selecione um tipo de gráfico"}
		}
		w.step = StepData
	case StepData:
		if err := w.validateData(); err != nil {
			return err
		}
		w.step = StepOptions
	case StepOptions:
		return &ValidationError{Field: "step", Message: "O assistente já está na última etapa"}
	}
	return nil
}

// Back returns to the previous step. Selections are kept.
func (w *Wizard) Back() {
	if w.step > StepKind {
		w.step--
	}
}

// Finish runs full validation and returns the completed definition.
func (w *Wizard) Finish() (ChartDefinition, error) {
	if err := ValidateDefinition(w.draft); err != nil {
		return ChartDefinition{}, err
	}
	return w.draft, nil
}

// Reset discards the draft, as closing the wizard modal does. The dataset
// kind is kept so the flow can restart immediately.
func (w *Wizard) Reset() {
	kind := w.draft.DatasetKind
	*w = Wizard{
		step: StepKind,
		draft: ChartDefinition{
			DatasetKind: kind,
			Options:     DefaultChartOptions(),
		},
	}
}

// validateData gates the Step2 → Step3 transition: the name is trimmed and
// committed here, and the data selection must be complete.
func (w *Wizard) validateData() error {
	w.draft.Name = strings.TrimSpace(w.draft.Name)
	if w.draft.Name == "" {
		return &ValidationError{Field: "nome", Message: "Informe um nome para o gráfico"}
	}
	switch w.draft.DatasetKind {
	case DatasetBalancete:
		if len(w.draft.Indicators) == 0 {
			return &ValidationError{Field: "indicadores", Message: "Selecione pelo menos um indicador"}
		}
		if len(w.draft.Metrics) == 0 {
			return &ValidationError{Field: "metricas", Message: "Selecione pelo menos uma métrica"}
		}
	case DatasetAnaliseJP:
		if w.draft.Category == "" {
			return &ValidationError{Field: "categoria", Message: "Selecione uma categoria"}
		}
		if len(w.draft.Metrics) == 0 {
			return &ValidationError{Field: "metricas", Message: "Selecione pelo menos um campo de valor"}
		}
		if len(w.draft.Dimensions) == 0 {
			return &ValidationError{Field: "dimensoes", Message: "Selecione pelo menos uma dimensão"}
		}
	}
	return nil
}
