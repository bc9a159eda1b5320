package chartbuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// balanceteMetric describes one of the fixed balancete metric columns.
type balanceteMetric struct {
	FallbackLabel string
	ValueKind     ValueKind
	Period        bool
}

// balanceteMetrics is the fixed metric catalog of the balancete pipeline.
// The percentage-difference metric is always tagged percentage regardless of
// the indicator's configured value kind.
var balanceteMetrics = map[string]balanceteMetric{
	"valor_periodo_1":      {FallbackLabel: "Período 1", ValueKind: ValueCurrency, Period: true},
	"valor_periodo_2":      {FallbackLabel: "Período 2", ValueKind: ValueCurrency, Period: true},
	"diferenca_absoluta":   {FallbackLabel: "Diferença Absoluta", ValueKind: ValueCurrency},
	"diferenca_percentual": {FallbackLabel: "Diferença %", ValueKind: ValuePercentage},
}

// KnownBalanceteMetric reports whether key is one of the fixed metric columns.
func KnownBalanceteMetric(key string) bool {
	_, ok := balanceteMetrics[key]
	return ok
}

// BalanceteMetricKind returns the value kind a metric column carries.
func BalanceteMetricKind(key string) ValueKind {
	if meta, ok := balanceteMetrics[key]; ok {
		return meta.ValueKind
	}
	return ValueNumber
}

// periodValued reports whether a metric selection refers to a literal
// reporting period rather than a computed difference.
func periodValued(m MetricSelection) bool {
	if meta, ok := balanceteMetrics[m.Key]; ok {
		return meta.Period
	}
	label := strings.ToLower(m.Label)
	return strings.Contains(label, "período") || strings.Contains(label, "periodo")
}

func allPeriodValued(metrics []MetricSelection) bool {
	for _, m := range metrics {
		if !periodValued(m) {
			return false
		}
	}
	return len(metrics) > 0
}

// DatasetBundle carries the datasets an adapter run may need. Exactly one of
// the two members is consulted, chosen by the definition's dataset kind.
type DatasetBundle struct {
	Balancete *BalanceteDataset
	Analise   *AnaliseDataset
}

// BuildChartData expands a chart definition against its dataset into one
// label axis and N series. This is the single dispatch point over dataset
// kinds; chart-kind specifics live in the per-kind builders below.
func BuildChartData(def ChartDefinition, ds DatasetBundle) (ChartData, error) {
	switch def.DatasetKind {
	case DatasetBalancete:
		if ds.Balancete == nil {
			return ChartData{}, fmt.Errorf("chartbuilder: balancete dataset is required for chart %q", def.Name)
		}
		return buildBalanceteData(def, ds.Balancete), nil
	case DatasetAnaliseJP:
		if ds.Analise == nil {
			return ChartData{}, fmt.Errorf("chartbuilder: analise_jp dataset is required for chart %q", def.Name)
		}
		return buildAnaliseData(def, ds.Analise), nil
	default:
		return ChartData{}, fmt.Errorf("chartbuilder: unknown dataset kind %q", def.DatasetKind)
	}
}

// buildBalanceteData shapes indicator × metric selections into series.
//
// The natural axis is the indicator name with one series per metric. Two
// transpositions apply when every selected metric is period-valued:
//   - line/area swaps the axis to the metric labels (the periods) and emits
//     one series per indicator, colored by the indicator's configured color;
//   - bar with more than one metric keeps indicators on the axis and emits
//     one series per period. Bar charts never swap to per-indicator series.
//
// A missing record or field yields 0 for that position.
func buildBalanceteData(def ChartDefinition, ds *BalanceteDataset) ChartData {
	lookup := func(indicator, metricKey string) float64 {
		record := ds.Record(indicator)
		if record == nil {
			return 0
		}
		return record.Values[metricKey]
	}

	transpose := (def.Kind == KindLine || def.Kind == KindArea) &&
		len(def.Metrics) > 1 && allPeriodValued(def.Metrics)

	if transpose {
		labels := make([]string, len(def.Metrics))
		for i, m := range def.Metrics {
			labels[i] = metricLabel(m, ds)
		}
		series := make([]Series, len(def.Indicators))
		for i, indicator := range def.Indicators {
			values := make([]float64, len(def.Metrics))
			for j, m := range def.Metrics {
				values[j] = lookup(indicator, m.Key)
			}
			kind := BalanceteMetricKind(def.Metrics[0].Key)
			if record := ds.Record(indicator); record != nil && record.ValueKind != "" {
				kind = record.ValueKind
			}
			series[i] = Series{
				Label:     indicator,
				Values:    values,
				Color:     seriesColor(def.Options.IndicatorColors[indicator], i),
				ValueKind: kind,
			}
		}
		return ChartData{Labels: labels, Series: series}
	}

	labels := append([]string(nil), def.Indicators...)
	series := make([]Series, len(def.Metrics))
	for i, m := range def.Metrics {
		values := make([]float64, len(def.Indicators))
		for j, indicator := range def.Indicators {
			values[j] = lookup(indicator, m.Key)
		}
		series[i] = Series{
			Key:       m.Key,
			Label:     metricLabel(m, ds),
			Values:    values,
			Color:     seriesColor(m.Color, i),
			ValueKind: BalanceteMetricKind(m.Key),
		}
	}
	return ChartData{Labels: labels, Series: series}
}

func metricLabel(m MetricSelection, ds *BalanceteDataset) string {
	if m.Label != "" {
		return m.Label
	}
	for _, option := range ds.ValueOptions {
		if option.Key == m.Key {
			return option.Label
		}
	}
	if meta, ok := balanceteMetrics[m.Key]; ok {
		return meta.FallbackLabel
	}
	return m.Key
}

// buildAnaliseData shapes dimension/value selections into series. Row-index
// filtering restricts contributing records while preserving their order;
// out-of-range indices are skipped. With aggregation enabled, records are
// grouped by the selected dimension tuple and each value field is summed per
// group (see aggregate.go).
func buildAnaliseData(def ChartDefinition, ds *AnaliseDataset) ChartData {
	records := filterRows(ds.Records, def.Options.RowIndices)

	if def.Options.Aggregate {
		return aggregateAnalise(def, records)
	}

	labels := make([]string, len(records))
	for i, row := range records {
		labels[i] = analiseLabel(row.record, def.Dimensions, row.index)
	}

	series := make([]Series, len(def.Metrics))
	for i, m := range def.Metrics {
		values := make([]float64, len(records))
		for j, row := range records {
			values[j] = coerceFloat(row.record[m.Key])
		}
		label := m.Label
		if label == "" {
			label = m.Key
		}
		series[i] = Series{
			Key:       m.Key,
			Label:     label,
			Values:    values,
			Color:     seriesColor(m.Color, i),
			ValueKind: ValueNumber,
		}
	}
	return ChartData{Labels: labels, Series: series}
}

type indexedRecord struct {
	index  int
	record map[string]string
}

func filterRows(records []map[string]string, indices []int) []indexedRecord {
	if len(indices) == 0 {
		out := make([]indexedRecord, len(records))
		for i, record := range records {
			out[i] = indexedRecord{index: i, record: record}
		}
		return out
	}
	var out []indexedRecord
	for _, index := range indices {
		if index >= 0 && index < len(records) {
			out = append(out, indexedRecord{index: index, record: records[index]})
		}
	}
	return out
}

// analiseLabel joins the record's dimension values; rows without any
// dimension value fall back to their 1-based position.
func analiseLabel(record map[string]string, dimensions []string, index int) string {
	var parts []string
	for _, dimension := range dimensions {
		if value := strings.TrimSpace(record[dimension]); value != "" {
			parts = append(parts, value)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Linha %d", index+1)
	}
	return strings.Join(parts, " • ")
}

// coerceFloat parses a cell the way the upload pipeline does: plain floats
// first, then pt-BR decimal commas. Anything else contributes 0.
func coerceFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", ".")
	if v, err := strconv.ParseFloat(normalized, 64); err == nil {
		return v
	}
	return 0
}
