// SPDX-License-Identifier: MIT

// Package sitewise tests every site pattern for selection.
//
// For each pattern the selection ratio ω of a codon model is fitted to that
// site alone, all other parameters and the branch lengths held fixed, and
// compared with the neutral fit ω = 1 by a likelihood-ratio test against
// χ²₁. Site rate matrices are normalised by the neutral scale, the Scale of
// the model at ω = 1, so branch lengths keep their meaning across sites.
//
// Sites are independent given the model and the tree, so Analyze spreads
// them over a bounded pool of goroutines, each with its own model clone and
// likelihood engine. No multiple-testing correction is applied.
package sitewise
