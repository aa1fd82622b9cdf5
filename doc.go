// SPDX-License-Identifier: MIT

// Package ete is a numerical core for fitting continuous-time Markov
// substitution models to an alignment on a fixed phylogenetic tree and for
// testing selection site by site.
//
// The work is split into small single-purpose packages:
//
//	matrix/      dense row-major matrices, products, symmetric eigensolver
//	linesearch/  Brent 1-D minimization, Ridders root finding
//	gencode/     NCBI genetic codes in ACGT codon order
//	model/       substitution models: rate matrix, P(t), ∂P/∂θ, scale cache
//	tree/        arena tree with explicit-stack traversals
//	alignment/   compressed site patterns with weights
//	likelihood/  two-pass pruning engine, analytic gradient, Fit
//	optim/       bounded quasi-Newton trust-region minimizer
//	sitewise/    per-site ω maximization and likelihood-ratio test
//	config/      YAML configuration and logger setup
//	metrics/     Prometheus counters for evaluations and iterations
//
// Dependency order, leaves first: matrix, linesearch → model, optim →
// likelihood → sitewise. The optimizer only sees an objective closure, so it can
// be used on any box-constrained smooth problem.
//
// Quick example (two taxa, Jukes–Cantor):
//
//	t := tree.New("root")
//	_, _ = t.AddChild(t.Root(), "a", 0.1)
//	_, _ = t.AddChild(t.Root(), "b", 0.2)
//	pats, _ := alignment.Compress([]string{"a", "b"}, [][]int{{0, 1, 2}, {0, 1, 3}}, 4, -1)
//	m, _ := model.New(model.JC69(), model.FreqEqual, nil)
//	eng, _ := likelihood.New(t, m, pats)
//	logL, err := eng.LogLikelihood()
package ete
