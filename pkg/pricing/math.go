// Package pricing implements the estimate pricing and margin reconciliation
// engine: business metrics derived from company settings, per-line-item
// cost/rate/margin reconciliation against a frozen pricing snapshot, and
// estimate-level totals with true-cost reconstruction. Every function is pure;
// callers own persistence.
package pricing

// safeDiv returns n/d, substituting 0 for a zero denominator so downstream
// math never sees NaN or Inf.
func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// clampMargin bounds a margin percentage to [0, 99] so 1-m/100 stays a
// positive divisor.
func clampMargin(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 99 {
		return 99
	}
	return pct
}
