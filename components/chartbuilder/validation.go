package chartbuilder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError carries a user-facing refusal message for one field of the
// wizard draft. Messages are served verbatim to the dashboard, hence the
// Portuguese.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("chartbuilder: %s: %s", e.Field, e.Message)
}

var knownKinds = map[ChartKind]bool{
	KindBar:           true,
	KindBarHorizontal: true,
	KindLine:          true,
	KindArea:          true,
	KindPie:           true,
	KindDonut:         true,
	KindTable:         true,
}

// KnownChartKind reports whether the kind is part of the catalog.
func KnownChartKind(kind ChartKind) bool {
	return knownKinds[kind]
}

var settableValueKinds = map[ValueKind]bool{
	ValueCurrency:   true,
	ValuePercentage: true,
	ValueMultiplier: true,
}

// ValidateValueKind guards indicator value-kind updates. Only the three
// display kinds may be assigned; "number" is an internal default.
func ValidateValueKind(kind ValueKind) error {
	if !settableValueKinds[kind] {
		return &ValidationError{Field: "tipo", Message: fmt.Sprintf("Tipo de valor inválido: %q", kind)}
	}
	return nil
}

// ValidateDefinition enforces the wizard's completion rules on a definition
// before it is persisted or rendered.
func ValidateDefinition(def ChartDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return &ValidationError{Field: "nome", Message: "Informe um nome para o gráfico"}
	}
	if !KnownChartKind(def.Kind) {
		return &ValidationError{Field: "chart_type", Message: fmt.Sprintf("Tipo de gráfico desconhecido: %q", def.Kind)}
	}

	switch def.DatasetKind {
	case DatasetBalancete:
		if len(def.Indicators) == 0 {
			return &ValidationError{Field: "indicadores", Message: "Selecione pelo menos um indicador"}
		}
		if len(def.Metrics) == 0 {
			return &ValidationError{Field: "metricas", Message: "Selecione pelo menos uma métrica"}
		}
		for _, m := range def.Metrics {
			if !KnownBalanceteMetric(m.Key) {
				return &ValidationError{Field: "metricas", Message: fmt.Sprintf("Métrica desconhecida: %q", m.Key)}
			}
		}
	case DatasetAnaliseJP:
		if def.Category == "" {
			return &ValidationError{Field: "categoria", Message: "Selecione uma categoria"}
		}
		if len(def.Metrics) == 0 {
			return &ValidationError{Field: "metricas", Message: "Selecione pelo menos um campo de valor"}
		}
		if len(def.Dimensions) == 0 {
			return &ValidationError{Field: "dimensoes", Message: "Selecione pelo menos uma dimensão"}
		}
	default:
		return &ValidationError{Field: "dataset_kind", Message: fmt.Sprintf("Origem de dados desconhecida: %q", def.DatasetKind)}
	}
	return nil
}

// chartOptionsSchema constrains the raw options bag accepted at the API
// boundary, before it is folded into ChartOptions.
const chartOptionsSchema = `{
	"type": "object",
	"properties": {
		"stacked":    {"type": "boolean"},
		"dataLabels": {"type": "boolean"},
		"xOffset":    {"type": "boolean"},
		"aggregate":  {"type": "boolean"},
		"yMin":  {"type": ["number", "string", "null"]},
		"yMax":  {"type": ["number", "string", "null"]},
		"yStep": {"type": ["number", "string", "null"]},
		"row_indices": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0}
		},
		"indicator_colors": {
			"type": "object",
			"additionalProperties": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"}
		}
	},
	"additionalProperties": true
}`

var (
	optionsSchemaOnce sync.Once
	optionsSchema     *jsonschema.Schema
	optionsSchemaErr  error
)

func compiledOptionsSchema() (*jsonschema.Schema, error) {
	optionsSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("chart_options.json", bytes.NewReader([]byte(chartOptionsSchema))); err != nil {
			optionsSchemaErr = fmt.Errorf("chartbuilder: load options schema: %w", err)
			return
		}
		optionsSchema, optionsSchemaErr = compiler.Compile("chart_options.json")
	})
	return optionsSchema, optionsSchemaErr
}

// ValidateOptionsPayload checks a raw options bag against the schema. A nil
// bag is valid; every field is optional.
func ValidateOptionsPayload(options map[string]any) error {
	if options == nil {
		return nil
	}
	schema, err := compiledOptionsSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("chartbuilder: marshal options: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("chartbuilder: normalize options: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("chartbuilder: options failed validation: %w", err)
	}
	return nil
}
