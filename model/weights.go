// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"
)

// weight returns the frequency factor w(π_i, π_j) multiplying S_ij.
// An unknown scheme is a programming error and panics.
func weight(s FreqScheme, pi, pj float64) float64 {
	switch s {
	case FreqEqual:
		return 1
	case FreqTarget:
		return pj
	case FreqSqrt:
		return math.Sqrt(pj / pi)
	case FreqFixation:
		return fixation(math.Log(pj / pi))
	default:
		panic(fmt.Sprintf("model: unknown frequency scheme %d", int(s)))
	}
}

// weightDeriv returns ∂w given ∂π_i and ∂π_j.
func weightDeriv(s FreqScheme, pi, pj, dpi, dpj float64) float64 {
	switch s {
	case FreqEqual:
		return 0
	case FreqTarget:
		return dpj
	case FreqSqrt:
		return 0.5 * math.Sqrt(pj/pi) * (dpj/pj - dpi/pi)
	case FreqFixation:
		return fixationDeriv(math.Log(pj/pi)) * (dpj/pj - dpi/pi)
	default:
		panic(fmt.Sprintf("model: unknown frequency scheme %d", int(s)))
	}
}

// fixation is the Halpern–Bruno factor x/(1−e^{−x}), f(0)=1.
func fixation(x float64) float64 {
	if math.Abs(x) < 1e-2 {
		x2 := x * x
		return 1 + x/2 + x2/12 - x2*x2/720
	}

	return x / -math.Expm1(-x)
}

// fixationDeriv is f'(x) = (1 − e^{−x} − x·e^{−x}) / (1 − e^{−x})².
func fixationDeriv(x float64) float64 {
	if math.Abs(x) < 1e-2 {
		x2 := x * x
		return 0.5 + x/6 - x*x2/180 + x*x2*x2/5040
	}
	em := -math.Expm1(-x)

	return (em - x*math.Exp(-x)) / (em * em)
}
