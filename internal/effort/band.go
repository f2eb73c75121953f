package effort

// Band is a colour band for a completion percentage.
type Band string

// Completion bands, from most to least complete.
const (
	BandBlue   Band = "blue"
	BandCyan   Band = "cyan"
	BandGreen  Band = "green"
	BandLime   Band = "lime"
	BandYellow Band = "yellow"
	BandOrange Band = "orange"
	BandRed    Band = "red"
)

// CompletionBand maps a completion percentage to its colour band.
func CompletionBand(pct float64) Band {
	switch {
	case pct >= 99:
		return BandBlue
	case pct >= 75:
		return BandCyan
	case pct >= 60:
		return BandGreen
	case pct >= 45:
		return BandLime
	case pct >= 30:
		return BandYellow
	case pct >= 15:
		return BandOrange
	default:
		return BandRed
	}
}

// Hex returns the colour used when rendering the band.
func (b Band) Hex() string {
	switch b {
	case BandBlue:
		return "#2563eb"
	case BandCyan:
		return "#06b6d4"
	case BandGreen:
		return "#22c55e"
	case BandLime:
		return "#a3e635"
	case BandYellow:
		return "#facc15"
	case BandOrange:
		return "#fb923c"
	default:
		return "#dc2626"
	}
}
