// Package statistics holds the descriptive statistics used to summarise a
// benchmark column: distributions, bootstrap confidence intervals and
// normalized gain. Accuracies are percentages in [0, 100].
package statistics

import (
	"math"
	"math/rand"
	"slices"
)

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// Distribution describes a sample of values.
type Distribution struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Describe computes the distribution of values. StdDev is the sample
// standard deviation and is 0 for fewer than two values.
func Describe(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return Distribution{
		N:      n,
		Mean:   Mean(values),
		StdDev: StdDev(values),
		Min:    sorted[0],
		Median: median,
		Max:    sorted[n-1],
	}
}

// Mean computes the arithmetic mean. Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the sample standard deviation (Bessel's correction).
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// ConfidenceInterval is a percentile bootstrap interval around a mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidenceLevel"`
	NumBootstraps   int     `json:"numBootstraps"`
}

// BootstrapCI computes a bootstrap confidence interval of the mean using the
// percentile method. confidenceLevel should be in (0, 1), e.g. 0.95. The
// resampling is driven by seed, so equal inputs give equal intervals. With
// fewer than 2 values the interval collapses to the mean.
func BootstrapCI(values []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(values)
	m := Mean(values)
	if n < 2 {
		return ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: confidenceLevel}
	}

	rng := rand.New(rand.NewSource(seed))
	iters := DefaultBootstrapIterations

	bootMeans := make([]float64, iters)
	for i := range iters {
		sum := 0.0
		for range n {
			sum += values[rng.Intn(n)]
		}
		bootMeans[i] = sum / float64(n)
	}
	slices.Sort(bootMeans)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := min(int(math.Floor((1.0-alpha/2.0)*float64(iters))), iters-1)

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// IsSignificant reports whether the interval excludes zero.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

// NormalizedGain computes Hake's normalized gain on the percentage scale:
//
//	g = (post - pre) / (100 - pre)
//
// A base model already at 100 has no headroom and yields 0; reaching 100
// yields 1.
func NormalizedGain(pre, post float64) float64 {
	if pre >= 100 {
		return 0
	}
	if post >= 100 {
		return 1
	}
	if math.Abs(post-pre) < 1e-12 {
		return 0
	}
	return (post - pre) / (100 - pre)
}
