/*
Package exec holds the pure node executor functions the DAG invokes once
per tick: (as-of time, input series, params) -> outputs (spec §4.5).
math.go collects the shared statistical reductions, grounded on
original_source/arkin-insights/src/math.rs (re-derived from scratch since
no equivalent stats helper module exists anywhere in the example pack).
*/
package exec

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func sumWhere(xs []float64, keep func(float64) bool, transform func(float64) float64) float64 {
	total := 0.0
	for _, x := range xs {
		if keep(x) {
			total += transform(x)
		}
	}
	return total
}

func identity(x float64) float64 { return x }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sortFloats(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func min(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func max(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func absolutRange(xs []float64) float64 {
	return max(xs) - min(xs)
}

func relativeRange(xs []float64) float64 {
	lo, hi := min(xs), max(xs)
	if lo == 0 {
		return math.NaN()
	}
	return (hi - lo) / lo
}

// relativePosition is where the most recent sample sits within the
// range's [min, max] span, 0 at the low end and 1 at the high end.
func relativePosition(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	lo, hi := min(xs), max(xs)
	if hi == lo {
		return 0.5
	}
	return (xs[len(xs)-1] - lo) / (hi - lo)
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	var acc float64
	for _, x := range xs {
		d := x - m
		acc += d * d
	}
	return acc / float64(len(xs)-1)
}

func stdDev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

// annualizedVolatility scales the sample standard deviation of returns by
// sqrt(periods-per-year), assuming one sample per trading day as the
// original implementation does absent an explicit sampling frequency.
func annualizedVolatility(xs []float64) float64 {
	const tradingDaysPerYear = 252
	return stdDev(xs) * math.Sqrt(tradingDaysPerYear)
}

func skew(xs []float64) float64 {
	n := float64(len(xs))
	if n < 3 {
		return math.NaN()
	}
	m := mean(xs)
	sd := stdDev(xs)
	if sd == 0 {
		return math.NaN()
	}
	var acc float64
	for _, x := range xs {
		acc += math.Pow((x-m)/sd, 3)
	}
	return (n / ((n - 1) * (n - 2))) * acc
}

func kurtosis(xs []float64) float64 {
	n := float64(len(xs))
	if n < 4 {
		return math.NaN()
	}
	m := mean(xs)
	sd := stdDev(xs)
	if sd == 0 {
		return math.NaN()
	}
	var acc float64
	for _, x := range xs {
		acc += math.Pow((x-m)/sd, 4)
	}
	excess := (n*(n+1))/((n-1)*(n-2)*(n-3))*acc - (3*(n-1)*(n-1))/((n-2)*(n-3))
	return excess
}

// quantile uses linear interpolation between closest ranks, matching the
// common statistics-crate default.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sortFloats(sorted)
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func iqr(xs []float64) float64 {
	return quantile(xs, 0.75) - quantile(xs, 0.25)
}

// autocorrelation is the Pearson correlation of the series against itself
// shifted by lag samples.
func autocorrelation(xs []float64, lag int) float64 {
	if lag <= 0 || lag >= len(xs) {
		return math.NaN()
	}
	return correlation(xs[:len(xs)-lag], xs[lag:])
}

func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if m == 0 {
		return math.NaN()
	}
	return stdDev(xs) / m
}

func covariance(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	var acc float64
	for i := range xs {
		acc += (xs[i] - mx) * (ys[i] - my)
	}
	return acc / float64(len(xs)-1)
}

func correlation(xs, ys []float64) float64 {
	sx, sy := stdDev(xs), stdDev(ys)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	return covariance(xs, ys) / (sx * sy)
}

func cosineSimilarity(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) == 0 {
		return math.NaN()
	}
	var dot, nx, ny float64
	for i := range xs {
		dot += xs[i] * ys[i]
		nx += xs[i] * xs[i]
		ny += ys[i] * ys[i]
	}
	if nx == 0 || ny == 0 {
		return math.NaN()
	}
	return dot / (math.Sqrt(nx) * math.Sqrt(ny))
}

// beta regresses ys (e.g. an asset's returns) against xs (e.g. a market
// benchmark's returns): cov(x,y) / var(x).
func beta(xs, ys []float64) float64 {
	vx := variance(xs)
	if vx == 0 {
		return math.NaN()
	}
	return covariance(xs, ys) / vx
}

func weightedMean(values, weights []float64) float64 {
	if len(values) != len(weights) || len(values) == 0 {
		return math.NaN()
	}
	var num, den float64
	for i := range values {
		num += values[i] * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func imbalance(a, b float64) float64 {
	if a+b == 0 {
		return math.NaN()
	}
	return (a - b) / (a + b)
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}

func spread(a, b float64) float64 {
	return a - b
}

// pointElasticity is (delta a / a) / (delta b / b) between a pair of
// current/previous samples, grounded on two_value.rs's Elasticity arm.
func pointElasticity(aCurrent, aPrevious, bCurrent, bPrevious float64) float64 {
	if aPrevious == 0 || bPrevious == 0 {
		return math.NaN()
	}
	da := (aCurrent - aPrevious) / aPrevious
	db := (bCurrent - bPrevious) / bPrevious
	if db == 0 {
		return math.NaN()
	}
	return da / db
}

func absChange(current, previous float64) float64 {
	return current - previous
}

func pctChange(current, previous float64) float64 {
	if previous == 0 {
		return math.NaN()
	}
	return (current - previous) / previous
}

func logChange(current, previous float64) float64 {
	if previous <= 0 || current <= 0 {
		return math.NaN()
	}
	return math.Log(current / previous)
}

func difference(current, previous float64) float64 {
	return current - previous
}

// round6 rounds a computed value to 6 decimal places, matching every
// Rust feature implementation's `(value * 1_000_000.0).round() / 1_000_000.0`.
func round6(v float64) float64 {
	return math.Round(v*1_000_000) / 1_000_000
}
