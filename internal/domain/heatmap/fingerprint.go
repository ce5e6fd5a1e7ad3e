package heatmap

import (
	"strconv"
	"strings"
)

// fingerprintVersion guards against stale cache entries after a format change
const fingerprintVersion = "v1"

// unset marks optional numeric fields that carry no value, so that an
// absent bound can never be confused with a zero bound
const unset = "*"

// Fingerprint builds the deterministic cache key for the filter. The
// underlying list is sorted before joining, so permutations of the same set
// collapse to one key; all numeric fields are serialized in a fixed order
// with labeled separators, so adjacent fields can never run together.
// Call on a Normalized filter.
func (f Filter) Fingerprint() string {
	var sb strings.Builder

	sb.WriteString(fingerprintVersion)
	sb.WriteString("|u=")
	sb.WriteString(strings.Join(f.Underlyings, ","))
	sb.WriteString("|b=")
	sb.WriteString(string(f.ExpiryBucket))
	sb.WriteString("|m=")
	sb.WriteString(string(f.ScoringMode))
	sb.WriteString("|c=")
	sb.WriteString(formatFloat(f.MinConfidence))
	sb.WriteString("|lo=")
	sb.WriteString(formatOptFloat(f.MinScore))
	sb.WriteString("|hi=")
	sb.WriteString(formatOptFloat(f.MaxScore))
	if f.StrikeRange != nil {
		sb.WriteString("|ks=")
		sb.WriteString(f.StrikeRange.Min.String())
		sb.WriteString("|ke=")
		sb.WriteString(f.StrikeRange.Max.String())
	} else {
		sb.WriteString("|ks=")
		sb.WriteString(unset)
		sb.WriteString("|ke=")
		sb.WriteString(unset)
	}

	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return unset
	}
	return formatFloat(*v)
}
