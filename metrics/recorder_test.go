// SPDX-License-Identifier: MIT

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/metrics"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.Metric, len(families))
	for _, f := range families {
		require.Len(t, f.GetMetric(), 1)
		out[f.GetName()] = f.GetMetric()[0]
	}

	return out
}

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg, "")
	r.LikelihoodEvaluated()
	r.LikelihoodEvaluated()
	r.GradientEvaluated()
	r.Iteration()
	r.StepRejected()
	r.HessianReset()
	r.SitesAnalysed(7)
	r.SitesAnalysed(-1)
	r.FitFinished(12)

	m := gather(t, reg)
	assert.Equal(t, 2.0, m["selection_likelihood_evaluations_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, m["selection_gradient_evaluations_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, m["selection_optimizer_iterations_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, m["selection_optimizer_rejected_steps_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, m["selection_optimizer_hessian_resets_total"].GetCounter().GetValue())
	assert.Equal(t, 7.0, m["selection_sites_analysed_total"].GetCounter().GetValue())
	assert.Equal(t, uint64(1), m["selection_fit_iterations"].GetHistogram().GetSampleCount())
	assert.Equal(t, 12.0, m["selection_fit_iterations"].GetHistogram().GetSampleSum())
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.LikelihoodEvaluated()
		r.GradientEvaluated()
		r.Iteration()
		r.StepRejected()
		r.HessianReset()
		r.SitesAnalysed(3)
		r.FitFinished(4)
	})
}

func TestRecorder_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewRecorder(reg, "custom").Iteration()
	_, ok := gather(t, reg)["custom_optimizer_iterations_total"]
	assert.True(t, ok)
}
