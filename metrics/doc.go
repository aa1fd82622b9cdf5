// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus counters for the fitting pipeline:
// likelihood and gradient evaluations, optimizer iterations, rejected steps,
// inverse-Hessian resets, analysed sites and a histogram of iterations per
// fit.
//
// A nil *Recorder is valid and records nothing, so numeric code can call it
// unconditionally.
package metrics
