package chartbuilder

// palette is the ordered set of hues cycled through when a series carries no
// explicit color override. Assignment is positional, so repeated renders of
// unchanged data stay visually stable.
var palette = []string{
	"#4ade80",
	"#38bdf8",
	"#f97316",
	"#a78bfa",
	"#f472b6",
	"#facc15",
	"#22d3ee",
	"#fb7185",
	"#34d399",
	"#60a5fa",
}

// PaletteColor returns the deterministic color for a series position.
func PaletteColor(position int) string {
	if position < 0 {
		position = -position
	}
	return palette[position%len(palette)]
}

// PaletteSize reports how many hues the palette cycles through.
func PaletteSize() int { return len(palette) }

// seriesColor resolves a series color: explicit override first, then the
// positional palette.
func seriesColor(override string, position int) string {
	if override != "" {
		return override
	}
	return PaletteColor(position)
}
