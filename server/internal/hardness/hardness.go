package hardness

// Category is an ordinal rock hardness label.
type Category string

// Category constants returned by Classify, softest first.
const (
	Soft     Category = "soft rock"
	Medium   Category = "medium rock"
	Hard     Category = "hard rock"
	VeryHard Category = "very hard rock"
)

// Duration breakpoints in minutes. Classify and Index both switch segment
// at these values.
const (
	ThresholdMedium   = 16.0
	ThresholdHard     = 24.0
	ThresholdVeryHard = 40.0
	ThresholdSaturate = 60.0
)

// MaxIndex is the value Index returns for any duration above ThresholdSaturate.
const MaxIndex = 100.0

var ordered = []Category{Soft, Medium, Hard, VeryHard}

// colors follow the palette used by the dashboard since its first release.
var colors = map[Category]string{
	Soft:     "#98FB98",
	Medium:   "#FFD700",
	Hard:     "#e74c3c",
	VeryHard: "#BA55D3",
}

// Categories returns all categories ordered from softest to hardest.
func Categories() []Category {
	out := make([]Category, len(ordered))
	copy(out, ordered)
	return out
}

// Classify maps a drilling duration in minutes to its hardness category.
// Negative durations fall into Soft.
func Classify(minutes float64) Category {
	switch {
	case minutes < ThresholdMedium:
		return Soft
	case minutes < ThresholdHard:
		return Medium
	case minutes < ThresholdVeryHard:
		return Hard
	default:
		return VeryHard
	}
}

// Index returns the hardness index (0–100) for a drilling duration in minutes.
//
// The function is piecewise linear, 25 points per segment:
//
//	T < 0         0
//	0  ≤ T ≤ 16   25 · T/16
//	16 < T ≤ 24   25 + 25 · (T−16)/8
//	24 < T ≤ 40   50 + 25 · (T−24)/16
//	40 < T ≤ 60   75 + 25 · (T−40)/20
//	T > 60        100
func Index(minutes float64) float64 {
	switch {
	case minutes < 0:
		return 0
	case minutes <= ThresholdMedium:
		return 25 * (minutes / ThresholdMedium)
	case minutes <= ThresholdHard:
		return 25 + 25*((minutes-ThresholdMedium)/(ThresholdHard-ThresholdMedium))
	case minutes <= ThresholdVeryHard:
		return 50 + 25*((minutes-ThresholdHard)/(ThresholdVeryHard-ThresholdHard))
	case minutes <= ThresholdSaturate:
		return 75 + 25*((minutes-ThresholdVeryHard)/(ThresholdSaturate-ThresholdVeryHard))
	default:
		return MaxIndex
	}
}

// Rank returns the 0-based position of c from softest to hardest, or -1 if c
// is not a known category.
func (c Category) Rank() int {
	for i, o := range ordered {
		if o == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool { return c.Rank() >= 0 }

// Color returns the hex display colour for c. Unknown categories are grey.
func (c Category) Color() string {
	if col, ok := colors[c]; ok {
		return col
	}
	return "#808080"
}

func (c Category) String() string { return string(c) }
