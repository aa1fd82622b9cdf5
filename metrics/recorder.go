// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "selection"

// Recorder groups the pipeline metrics.
type Recorder struct {
	likelihoodEvals prometheus.Counter
	gradientEvals   prometheus.Counter
	iterations      prometheus.Counter
	rejectedSteps   prometheus.Counter
	hessianResets   prometheus.Counter
	sites           prometheus.Counter
	fitIterations   prometheus.Histogram
}

// NewRecorder registers the metrics on reg under namespace (DefaultNamespace
// when empty). Registering twice on one registry panics, as with promauto.
func NewRecorder(reg prometheus.Registerer, namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)

	return &Recorder{
		likelihoodEvals: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likelihood_evaluations_total",
			Help:      "Total tree log-likelihood evaluations",
		}),
		gradientEvals: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gradient_evaluations_total",
			Help:      "Total analytic gradient evaluations",
		}),
		iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_iterations_total",
			Help:      "Total optimizer iterations",
		}),
		rejectedSteps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_rejected_steps_total",
			Help:      "Steps that fell back to a line search",
		}),
		hessianResets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_hessian_resets_total",
			Help:      "Inverse-Hessian resets after a failed curvature check",
		}),
		sites: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sites_analysed_total",
			Help:      "Site patterns analysed for selection",
		}),
		fitIterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_iterations",
			Help:      "Optimizer iterations per fit",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}),
	}
}

// LikelihoodEvaluated counts one log-likelihood evaluation.
func (r *Recorder) LikelihoodEvaluated() {
	if r != nil {
		r.likelihoodEvals.Inc()
	}
}

// GradientEvaluated counts one gradient evaluation.
func (r *Recorder) GradientEvaluated() {
	if r != nil {
		r.gradientEvals.Inc()
	}
}

// Iteration counts one optimizer iteration.
func (r *Recorder) Iteration() {
	if r != nil {
		r.iterations.Inc()
	}
}

// StepRejected counts a step that needed the line-search fallback.
func (r *Recorder) StepRejected() {
	if r != nil {
		r.rejectedSteps.Inc()
	}
}

// HessianReset counts an inverse-Hessian reset.
func (r *Recorder) HessianReset() {
	if r != nil {
		r.hessianResets.Inc()
	}
}

// SitesAnalysed adds n analysed site patterns.
func (r *Recorder) SitesAnalysed(n int) {
	if r != nil && n > 0 {
		r.sites.Add(float64(n))
	}
}

// FitFinished records the iteration count of one optimizer run.
func (r *Recorder) FitFinished(iterations int) {
	if r != nil {
		r.fitIterations.Observe(float64(iterations))
	}
}
