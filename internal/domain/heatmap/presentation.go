package heatmap

// GradientBucket is the discrete color classification of a score relative
// to the global score range of its result
type GradientBucket int

const (
	GradientStrongNegative GradientBucket = iota
	GradientNegative
	GradientWeakNegative
	GradientNeutral
	GradientWeakPositive
	GradientPositive
	GradientStrongPositive
)

// String returns the bucket's display name
func (b GradientBucket) String() string {
	switch b {
	case GradientStrongNegative:
		return "strong_negative"
	case GradientNegative:
		return "negative"
	case GradientWeakNegative:
		return "weak_negative"
	case GradientNeutral:
		return "neutral"
	case GradientWeakPositive:
		return "weak_positive"
	case GradientPositive:
		return "positive"
	case GradientStrongPositive:
		return "strong_positive"
	default:
		return "unknown"
	}
}

// Gradient cut points over the normalized position. Comparisons are strict,
// so a position exactly at a cut point lands in the higher bucket.
var gradientCuts = [...]float64{0.20, 0.35, 0.45, 0.55, 0.65, 0.80}

// GradientFor normalizes score into the [globalMin, globalMax] range and
// maps the position to one of seven buckets. When the range is degenerate
// (globalMax == globalMin) the position is defined as 0.5.
func GradientFor(score, globalMin, globalMax float64) GradientBucket {
	position := 0.5
	if globalMax != globalMin {
		position = (score - globalMin) / (globalMax - globalMin)
	}

	for i, cut := range gradientCuts {
		if position < cut {
			return GradientBucket(i)
		}
	}
	return GradientStrongPositive
}

// ConfidenceOpacity maps confidence in [0,100] linearly onto display
// opacity in [0.3, 1.0], clamping out-of-range inputs to the nearest bound
func ConfidenceOpacity(confidence float64) float64 {
	if confidence <= 0 {
		return 0.3
	}
	if confidence >= 100 {
		return 1.0
	}
	return 0.3 + confidence/100*0.7
}
