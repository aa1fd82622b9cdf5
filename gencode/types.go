// SPDX-License-Identifier: MIT

package gencode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCode is returned when a genetic code id has no table.
	ErrUnknownCode = errors.New("gencode: unknown genetic code")

	// ErrBadCodon indicates a codon string that is not three of ACGT, or an
	// index outside [0,64).
	ErrBadCodon = errors.New("gencode: invalid codon")
)

// Nucleotide indices.
const (
	A = iota
	C
	G
	T
)

// NumCodons is the number of codons including stops.
const NumCodons = 64

// Stop is the amino-acid letter of stop codons.
const Stop byte = '*'

// nucleotides maps an index to its letter.
const nucleotides = "ACGT"

// Code is one genetic code.
// Values are immutable after construction and safe for concurrent use.
type Code struct {
	ID   int
	Name string

	aa       [NumCodons]byte // amino acid per codon, ACGT order
	sense    []int           // sense codons in ascending order
	senseIdx [NumCodons]int  // codon → dense sense index, −1 for stops
}

func gencodeErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
