package chartbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() ChartData {
	return ChartData{
		Labels: []string{"Receita", "Despesa"},
		Series: []Series{
			{Key: "valor_periodo_1", Label: "Jan/2026", Values: []float64{100, 80}, ValueKind: ValueCurrency},
			{Key: "valor_periodo_2", Label: "Fev/2026", Values: []float64{140, 90}, ValueKind: ValueCurrency},
		},
	}
}

func TestBuildSpecIsPure(t *testing.T) {
	def := ChartDefinition{Name: "Comparativo", Kind: KindBar, Options: DefaultChartOptions()}
	first, err := BuildSpec(def, sampleData())
	require.NoError(t, err)
	second, err := BuildSpec(def, sampleData())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildSpecStackingOnlyForStackableKinds(t *testing.T) {
	options := DefaultChartOptions()
	options.Stacked = true

	bar, err := BuildSpec(ChartDefinition{Name: "b", Kind: KindBar, Options: options}, sampleData())
	require.NoError(t, err)
	assert.True(t, bar.Stacked)
	assert.Equal(t, "total", bar.Series[0].Stack)

	line, err := BuildSpec(ChartDefinition{Name: "l", Kind: KindLine, Options: options}, sampleData())
	require.NoError(t, err)
	assert.False(t, line.Stacked)
	assert.Empty(t, line.Series[0].Stack)
}

func TestBuildSpecHorizontalBar(t *testing.T) {
	spec, err := BuildSpec(ChartDefinition{Name: "h", Kind: KindBarHorizontal, Options: DefaultChartOptions()}, sampleData())
	require.NoError(t, err)
	assert.True(t, spec.Horizontal)
	assert.Equal(t, []string{"Receita", "Despesa"}, spec.Axis.Labels)
}

func TestBuildSpecPieUsesFirstSeries(t *testing.T) {
	spec, err := BuildSpec(ChartDefinition{Name: "p", Kind: KindPie, Options: DefaultChartOptions()}, sampleData())
	require.NoError(t, err)
	require.Len(t, spec.Slices, 2)
	assert.Equal(t, "Receita", spec.Slices[0].Name)
	assert.Equal(t, 100.0, spec.Slices[0].Value)
	assert.Equal(t, PaletteColor(0), spec.Slices[0].Color)
	assert.Equal(t, PaletteColor(1), spec.Slices[1].Color)
	assert.Empty(t, spec.DonutRadius)
}

func TestBuildSpecDonutRadius(t *testing.T) {
	spec, err := BuildSpec(ChartDefinition{Name: "d", Kind: KindDonut, Options: DefaultChartOptions()}, sampleData())
	require.NoError(t, err)
	assert.Equal(t, []string{"40%", "70%"}, spec.DonutRadius)
}

func TestBuildSpecTableFormatsCells(t *testing.T) {
	spec, err := BuildSpec(ChartDefinition{Name: "t", Kind: KindTable, Options: DefaultChartOptions()}, sampleData())
	require.NoError(t, err)
	require.NotNil(t, spec.Table)
	assert.Equal(t, []string{"", "Jan/2026", "Fev/2026"}, spec.Table.Header)
	require.Len(t, spec.Table.Rows, 2)
	assert.Equal(t, []string{"Receita", "R$ 100,00", "R$ 140,00"}, spec.Table.Rows[0])
}

func TestSplitNumberFromStep(t *testing.T) {
	min, max, step := 0.0, 100.0, 25.0
	spec, err := BuildSpec(ChartDefinition{
		Name: "s",
		Kind: KindBar,
		Options: ChartOptions{
			YMin:  &min,
			YMax:  &max,
			YStep: &step,
		},
	}, sampleData())
	require.NoError(t, err)
	assert.Equal(t, 4, spec.Axis.SplitNumber)

	// step without bounds is ignored
	noBounds, err := BuildSpec(ChartDefinition{Name: "n", Kind: KindBar, Options: ChartOptions{YStep: &step}}, sampleData())
	require.NoError(t, err)
	assert.Zero(t, noBounds.Axis.SplitNumber)
}

func TestBuildSpecUnknownKind(t *testing.T) {
	_, err := BuildSpec(ChartDefinition{Name: "x", Kind: ChartKind("radar")}, sampleData())
	assert.Error(t, err)
}
