package chartbuilder

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const missingValue = "-"

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatValue renders a value for tooltips and detail overlays according to
// its value kind. A nil or NaN value renders as "-". Unknown kinds fall back
// to currency, matching the dashboard's historical behavior.
func FormatValue(value *float64, kind ValueKind) string {
	if value == nil || math.IsNaN(*value) {
		return missingValue
	}
	switch kind {
	case ValuePercentage:
		return FormatPercentage(*value)
	case ValueMultiplier:
		return FormatMultiplier(*value)
	case ValueNumber:
		return FormatNumber(*value)
	default:
		return FormatCurrency(*value)
	}
}

// FormatCurrency renders a BRL amount with pt-BR thousand grouping.
func FormatCurrency(value float64) string {
	return ptBR.Sprintf("R$ %.2f", value)
}

// FormatPercentage renders with two decimals and a trailing percent sign.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// FormatMultiplier renders with two decimals and a trailing "x".
func FormatMultiplier(value float64) string {
	return fmt.Sprintf("%.2fx", value)
}

// FormatNumber renders a plain number with pt-BR grouping.
func FormatNumber(value float64) string {
	return ptBR.Sprintf("%.2f", value)
}

// FormatDataLabel renders on-chart value labels. Currency compacts to K/M
// suffixes beyond the magnitude thresholds so bars stay readable.
func FormatDataLabel(value float64, kind ValueKind) string {
	switch kind {
	case ValuePercentage:
		return FormatPercentage(value)
	case ValueMultiplier:
		return FormatMultiplier(value)
	case ValueNumber:
		return FormatNumber(value)
	default:
		return formatCompactCurrency(value)
	}
}

func formatCompactCurrency(value float64) string {
	abs := math.Abs(value)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("R$ %.2fM", value/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("R$ %.2fK", value/1_000)
	default:
		return FormatCurrency(value)
	}
}
