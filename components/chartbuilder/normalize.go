package chartbuilder

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeDefinition folds a raw chart row from the reporting API into the
// canonical ChartDefinition. The API historically served two shapes: the
// current one with a nested options object, and a legacy flattened one with
// row_indices and indicator_colors at the top level. Both fold into the same
// definition, and normalizing an already-normalized row is a no-op.
func NormalizeDefinition(raw map[string]any) (ChartDefinition, error) {
	if raw == nil {
		return ChartDefinition{}, fmt.Errorf("chartbuilder: chart payload is empty")
	}

	def := ChartDefinition{
		ID:         valueString(raw, "id"),
		Name:       firstString(raw, "nome", "name"),
		Kind:       ChartKind(firstString(raw, "chart_type", "tipo_grafico", "kind")),
		Category:   firstString(raw, "categoria", "category"),
		Indicators: valueStrings(raw["indicadores"], raw["indicators"]),
		Metrics:    normalizeMetrics(raw["metricas"], raw["metrics"]),
		Dimensions: valueStrings(raw["dimensoes"], raw["dimensions"]),
		Options:    DefaultChartOptions(),
	}

	options := optionsMap(raw["options"])
	if options == nil {
		// Legacy flattened shape keeps the option fields on the row itself.
		options = raw
	}
	applyOptions(&def.Options, options)

	if colors := valueStringMap(raw["indicador_cores"]); len(colors) > 0 {
		def.Options.IndicatorColors = colors
	}

	def.DatasetKind = resolveDatasetKind(raw, def)

	if def.Kind == "" {
		return ChartDefinition{}, fmt.Errorf("chartbuilder: chart %q has no chart_type", def.Name)
	}
	return def, nil
}

// NormalizeDefinitions folds a list of raw rows, skipping nothing: a bad row
// fails the whole batch so callers never render a partial dashboard silently.
func NormalizeDefinitions(rows []map[string]any) ([]ChartDefinition, error) {
	out := make([]ChartDefinition, 0, len(rows))
	for i, row := range rows {
		def, err := NormalizeDefinition(row)
		if err != nil {
			return nil, fmt.Errorf("chartbuilder: chart at index %d: %w", i, err)
		}
		out = append(out, def)
	}
	return out, nil
}

// SavePayload builds the wire body for chart create/update calls. Field
// names follow the reporting API's Portuguese contract.
func SavePayload(def ChartDefinition) map[string]any {
	metrics := make([]map[string]any, len(def.Metrics))
	for i, m := range def.Metrics {
		entry := map[string]any{"key": m.Key, "label": m.Label}
		if m.Color != "" {
			entry["color"] = m.Color
		}
		metrics[i] = entry
	}

	options := map[string]any{
		"stacked":    def.Options.Stacked,
		"dataLabels": def.Options.DataLabels,
		"xOffset":    def.Options.XOffset,
	}
	if def.Options.YMin != nil {
		options["yMin"] = *def.Options.YMin
	}
	if def.Options.YMax != nil {
		options["yMax"] = *def.Options.YMax
	}
	if def.Options.YStep != nil {
		options["yStep"] = *def.Options.YStep
	}
	if len(def.Options.RowIndices) > 0 {
		options["row_indices"] = def.Options.RowIndices
	}
	if def.Options.Aggregate {
		options["aggregate"] = true
	}
	if len(def.Options.IndicatorColors) > 0 {
		options["indicator_colors"] = def.Options.IndicatorColors
	}

	payload := map[string]any{
		"nome":       def.Name,
		"chart_type": string(def.Kind),
		"metricas":   metrics,
		"options":    options,
	}
	if len(def.Indicators) > 0 {
		payload["indicadores"] = def.Indicators
	}
	if len(def.Options.IndicatorColors) > 0 {
		payload["indicador_cores"] = def.Options.IndicatorColors
	}
	if def.Category != "" {
		payload["categoria"] = def.Category
	}
	if len(def.Dimensions) > 0 {
		payload["dimensoes"] = def.Dimensions
	}
	return payload
}

func applyOptions(options *ChartOptions, m map[string]any) {
	if v, ok := m["stacked"]; ok {
		options.Stacked = valueBool(v)
	}
	if v, ok := m["dataLabels"]; ok {
		options.DataLabels = valueBool(v)
	}
	if v, ok := m["xOffset"]; ok {
		options.XOffset = valueBool(v)
	}
	if v, ok := m["aggregate"]; ok {
		options.Aggregate = valueBool(v)
	}
	options.YMin = valueFloatPtr(m["yMin"], options.YMin)
	options.YMax = valueFloatPtr(m["yMax"], options.YMax)
	options.YStep = valueFloatPtr(m["yStep"], options.YStep)
	if indices := valueInts(m["row_indices"]); len(indices) > 0 {
		options.RowIndices = indices
	}
	if colors := valueStringMap(m["indicator_colors"]); len(colors) > 0 {
		options.IndicatorColors = colors
	}
}

// optionsMap unwraps the options bag, which the API sometimes serves as a
// JSON-encoded string.
func optionsMap(v any) map[string]any {
	switch value := v.(type) {
	case map[string]any:
		return value
	case string:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(value), &out); err != nil {
			return nil
		}
		return out
	default:
		return nil
	}
}

func resolveDatasetKind(raw map[string]any, def ChartDefinition) DatasetKind {
	if kind := firstString(raw, "dataset_kind", "tipo_workflow"); kind != "" {
		return DatasetKind(kind)
	}
	if len(def.Dimensions) > 0 || def.Category != "" {
		return DatasetAnaliseJP
	}
	return DatasetBalancete
}

func normalizeMetrics(candidates ...any) []MetricSelection {
	for _, candidate := range candidates {
		items, ok := candidate.([]any)
		if !ok {
			if typed, isTyped := candidate.([]MetricSelection); isTyped {
				return append([]MetricSelection(nil), typed...)
			}
			continue
		}
		out := make([]MetricSelection, 0, len(items))
		for _, item := range items {
			switch value := item.(type) {
			case string:
				out = append(out, MetricSelection{Key: value})
			case map[string]any:
				out = append(out, MetricSelection{
					Key:   firstString(value, "key", "campo", "value"),
					Label: firstString(value, "label", "nome"),
					Color: firstString(value, "color", "cor"),
				})
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := valueString(m, key); s != "" {
			return s
		}
	}
	return ""
}

func valueString(m map[string]any, key string) string {
	switch value := m[key].(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

func valueStrings(candidates ...any) []string {
	for _, candidate := range candidates {
		switch value := candidate.(type) {
		case []string:
			return append([]string(nil), value...)
		case []any:
			out := make([]string, 0, len(value))
			for _, item := range value {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func valueBool(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(value, "true") || value == "1"
	case float64:
		return value != 0
	case int:
		return value != 0
	default:
		return false
	}
}

func valueFloatPtr(v any, fallback *float64) *float64 {
	switch value := v.(type) {
	case float64:
		out := value
		return &out
	case int:
		out := float64(value)
		return &out
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return &f
		}
	}
	return fallback
}

func valueInts(v any) []int {
	switch value := v.(type) {
	case []int:
		return append([]int(nil), value...)
	case []any:
		out := make([]int, 0, len(value))
		for _, item := range value {
			switch n := item.(type) {
			case float64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			case json.Number:
				if i, err := n.Int64(); err == nil {
					out = append(out, int(i))
				}
			}
		}
		return out
	default:
		return nil
	}
}

func valueStringMap(v any) map[string]string {
	raw, ok := v.(map[string]any)
	if !ok {
		if typed, isTyped := v.(map[string]string); isTyped {
			out := make(map[string]string, len(typed))
			for k, val := range typed {
				out[k] = val
			}
			return out
		}
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok && s != "" {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
