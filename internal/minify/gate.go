package minify

import "math"

// DefaultUsefulPercent is the smallest reduction worth keeping.
const DefaultUsefulPercent = 20

// ReductionPercent is 100*(1-newSize/oldSize) rounded to two decimals.
// A non-positive oldSize yields 0.
func ReductionPercent(oldSize, newSize int64) float64 {
	if oldSize <= 0 {
		return 0
	}
	pct := 100 * (1 - float64(newSize)/float64(oldSize))
	return math.Round(pct*100) / 100
}

// Gate accepts a run when its reduction reaches UsefulPercent.
type Gate struct {
	UsefulPercent float64
}

// Accept reports whether pct meets the threshold. The boundary is inclusive.
func (g Gate) Accept(pct float64) bool {
	return pct >= g.UsefulPercent
}
