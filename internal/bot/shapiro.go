package bot

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	errShapiroSampleSize = errors.New("shapiro-wilk: need at least 3 observations")
	errShapiroConstant   = errors.New("shapiro-wilk: all observations are identical")
)

// ShapiroWilk tests the sample for normality using Royston's approximation
// of the W statistic. It returns W and the p-value of the null hypothesis
// that the sample was drawn from a normal distribution.
func ShapiroWilk(sample []float64) (w, p float64, err error) {
	n := len(sample)
	if n < 3 {
		return 0, 0, errShapiroSampleSize
	}
	x := append([]float64(nil), sample...)
	sort.Float64s(x)
	if x[0] == x[n-1] {
		return 0, 0, errShapiroConstant
	}

	a := shapiroCoefficients(n)
	mean := stat.Mean(x, nil)
	var num, ss float64
	for i, v := range x {
		num += a[i] * v
		ss += (v - mean) * (v - mean)
	}
	w = num * num / ss
	if w > 1 {
		w = 1
	}
	return w, shapiroPValue(w, n), nil
}

func shapiroCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}

	m := make([]float64, n)
	var mm float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		mm += m[i] * m[i]
	}

	u := 1 / math.Sqrt(float64(n))
	an := m[n-1]/math.Sqrt(mm) + poly(u, 0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056)
	a[n-1], a[0] = an, -an

	var phi float64
	if n > 5 {
		an1 := m[n-2]/math.Sqrt(mm) + poly(u, 0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633)
		a[n-2], a[1] = an1, -an1
		phi = (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
		return a
	}
	phi = (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	for i := 1; i < n-1; i++ {
		a[i] = m[i] / math.Sqrt(phi)
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if w >= 1 {
		return 1
	}
	fn := float64(n)
	switch {
	case n == 3:
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Max(0, math.Min(1, p))
	case n <= 11:
		gamma := 0.459*fn - 2.273
		arg := gamma - math.Log(1-w)
		if arg <= 0 {
			return 0
		}
		y := -math.Log(arg)
		mu := poly(fn, 0.5440, -0.39978, 0.025054, -0.0006714)
		sigma := math.Exp(poly(fn, 1.3822, -0.77857, 0.062767, -0.0020322))
		return distuv.UnitNormal.Survival((y - mu) / sigma)
	default:
		ln := math.Log(fn)
		y := math.Log(1 - w)
		mu := poly(ln, -1.5861, -0.31082, -0.083751, 0.0038915)
		sigma := math.Exp(poly(ln, -0.4803, -0.082676, 0.0030302))
		return distuv.UnitNormal.Survival((y - mu) / sigma)
	}
}

// poly evaluates c[0] + c[1]x + c[2]x² + ... by Horner's rule.
func poly(x float64, c ...float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
