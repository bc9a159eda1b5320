package chartbuilder

import "strings"

// aggregateAnalise groups the filtered records by their dimension tuple and
// sums each selected value field per group. Group order follows first
// appearance in the input, so repeated renders of the same dataset stay
// stable.
func aggregateAnalise(def ChartDefinition, records []indexedRecord) ChartData {
	type group struct {
		label string
		sums  []float64
	}

	index := make(map[string]int)
	var groups []group

	for _, row := range records {
		key := dimensionKey(row.record, def.Dimensions)
		at, ok := index[key]
		if !ok {
			at = len(groups)
			index[key] = at
			groups = append(groups, group{
				label: analiseLabel(row.record, def.Dimensions, row.index),
				sums:  make([]float64, len(def.Metrics)),
			})
		}
		for i, m := range def.Metrics {
			groups[at].sums[i] += coerceFloat(row.record[m.Key])
		}
	}

	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.label
	}

	series := make([]Series, len(def.Metrics))
	for i, m := range def.Metrics {
		values := make([]float64, len(groups))
		for j := range groups {
			values[j] = groups[j].sums[i]
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

// dimensionKey builds the grouping key from the raw dimension values. The
// unit separator keeps values containing spaces or bullets unambiguous.
func dimensionKey(record map[string]string, dimensions []string) string {
	parts := make([]string, len(dimensions))
	for i, dimension := range dimensions {
		parts[i] = strings.TrimSpace(record[dimension])
	}
	return strings.Join(parts, "\x1f")
}
