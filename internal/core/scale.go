package core

import "math"

// ScaleRange computes the colour bounds shared by every panel: the min and
// max of the observations that fall inside rng. A non-nil bound overrides
// the computed one. With no observation in range both computed bounds are 0.
func ScaleRange(series Series, rng MonthRange, minOverride, maxOverride *float64) ColorScaleRange {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, o := range series {
		if !rng.Contains(o.Date.Month()) || math.IsNaN(o.Value) {
			continue
		}
		minV = math.Min(minV, o.Value)
		maxV = math.Max(maxV, o.Value)
	}
	if math.IsInf(minV, 1) {
		minV, maxV = 0, 0
	}
	if minOverride != nil {
		minV = *minOverride
	}
	if maxOverride != nil {
		maxV = *maxOverride
	}
	return ColorScaleRange{Min: minV, Max: maxV}
}
