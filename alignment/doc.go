// SPDX-License-Identifier: MIT

// Package alignment holds a multiple-sequence alignment compressed into
// weighted site patterns, the form consumed by the likelihood engine.
//
// States are integers in [0, States); the gap sentinel marks missing data
// and must lie outside that range. Compress merges identical columns in
// first-appearance order and records each pattern's multiplicity as its
// weight, plus the site→pattern map for reporting per-site results.
//
// Classify flags the degenerate patterns that need no pruning: AllGap and
// SingleObserved (exactly one taxon with a state).
//
// Encoding helpers turn nucleotide or codon strings into state rows.
package alignment
