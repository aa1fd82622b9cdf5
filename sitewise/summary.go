// SPDX-License-Identifier: MIT

package sitewise

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Summary aggregates a scan over informative sites.
type Summary struct {
	Sites       int
	Informative int
	Positive    int // ω > 1 at level alpha
	Negative    int // ω < 1 at level alpha

	MeanOmega   float64
	MedianOmega float64
	OmegaP95    float64
	MeanLRT     float64

	// LogL is Σ weight·ℓ(ω̂) over all sites, the likelihood of the
	// site-by-site model.
	LogL float64
}

// Summarize aggregates sites. Statistics over no informative site are NaN.
func Summarize(sites []Site, alpha float64) Summary {
	s := Summary{Sites: len(sites)}
	var omegas, lrts stats.Float64Data
	for _, site := range sites {
		s.LogL += site.Weight * site.LogL
		if !site.Informative {
			continue
		}
		s.Informative++
		omegas = append(omegas, site.Omega)
		lrts = append(lrts, site.LRT)
		if site.PValue < alpha {
			switch {
			case site.Omega > 1:
				s.Positive++
			case site.Omega < 1:
				s.Negative++
			}
		}
	}

	s.MeanOmega, s.MedianOmega, s.OmegaP95, s.MeanLRT = math.NaN(), math.NaN(), math.NaN(), math.NaN()
	if len(omegas) == 0 {
		return s
	}
	s.MeanOmega, _ = stats.Mean(omegas)
	s.MedianOmega, _ = stats.Median(omegas)
	s.OmegaP95, _ = stats.Percentile(omegas, 95)
	s.MeanLRT, _ = lrts.Mean()

	return s
}
