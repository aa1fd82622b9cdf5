// SPDX-License-Identifier: MIT

// Package gencode provides the NCBI genetic codes used by codon substitution
// models.
//
// Codons are addressed by an integer in [0,64) built from nucleotides in
// alphabetical order A=0, C=1, G=2, T=3:
//
//	codon = 16·first + 4·second + third
//
// so AAA=0, AAC=1, …, TTT=63. NCBI publishes its tables in TCAG order; they
// are re-indexed once at package initialisation.
//
// A Code separates sense codons from stop codons and assigns each sense codon
// a dense index in [0, NumSense()) which is the state index of codon rate
// matrices.
//
// Supported tables: 1, 2, 3, 4, 5, 6, 9, 10, 11.
//
// Errors:
//   - ErrUnknownCode: no table with the requested id.
//   - ErrBadCodon: malformed codon string or index out of range.
package gencode
