// SPDX-License-Identifier: MIT

package gencode

import (
	"fmt"
	"strings"
)

// Lookup returns the genetic code with NCBI id.
func Lookup(id int) (*Code, error) {
	c, ok := codes[id]
	if !ok {
		return nil, gencodeErrorf(fmt.Sprintf("Lookup(%d)", id), ErrUnknownCode)
	}

	return c, nil
}

// MustLookup is Lookup that panics on an unknown id.
func MustLookup(id int) *Code {
	c, err := Lookup(id)
	if err != nil {
		panic(err)
	}

	return c
}

// Standard returns NCBI table 1.
func Standard() *Code { return codes[1] }

// NumSense returns the number of sense codons.
func (c *Code) NumSense() int { return len(c.sense) }

// SenseCodons returns a copy of the sense codons in ascending order.
func (c *Code) SenseCodons() []int {
	out := make([]int, len(c.sense))
	copy(out, c.sense)

	return out
}

// Codon returns the codon at dense sense index i.
func (c *Code) Codon(i int) int { return c.sense[i] }

// SenseIndex returns the dense index of codon, or −1 for a stop codon.
func (c *Code) SenseIndex(codon int) int {
	if codon < 0 || codon >= NumCodons {
		return -1
	}

	return c.senseIdx[codon]
}

// Translate returns the amino-acid letter of codon ('*' for stops).
func (c *Code) Translate(codon int) (byte, error) {
	if codon < 0 || codon >= NumCodons {
		return 0, gencodeErrorf("Translate", ErrBadCodon)
	}

	return c.aa[codon], nil
}

// IsStop reports whether codon is a stop codon.
func (c *Code) IsStop(codon int) bool {
	return codon >= 0 && codon < NumCodons && c.aa[codon] == Stop
}

// IsSynonymous reports whether two sense codons encode the same amino acid.
// Codons are in ACGT numbering; out-of-range input reports false.
func (c *Code) IsSynonymous(i, j int) bool {
	if i < 0 || i >= NumCodons || j < 0 || j >= NumCodons {
		return false
	}

	return c.aa[i] == c.aa[j] && c.aa[i] != Stop
}

// Diff describes how two codons differ.
type Diff struct {
	Count    int // number of differing positions
	Position int // last differing position (0..2), −1 if identical
	From, To int // nucleotides at Position
}

// Compare returns the positional difference between codons a and b.
func Compare(a, b int) Diff {
	d := Diff{Position: -1}
	for pos := 0; pos < 3; pos++ {
		shift := uint(2 * (2 - pos))
		na, nb := (a>>shift)&3, (b>>shift)&3
		if na != nb {
			d.Count++
			d.Position, d.From, d.To = pos, na, nb
		}
	}

	return d
}

// IsTransition reports whether a→b is a purine (A↔G) or pyrimidine (C↔T)
// exchange.
func IsTransition(a, b int) bool {
	return (a == A && b == G) || (a == G && b == A) ||
		(a == C && b == T) || (a == T && b == C)
}

// NucPair returns the index of the unordered nucleotide pair {a,b}, a≠b, in
// the order AC, AG, AT, CG, CT, GT.
func NucPair(a, b int) int {
	if a > b {
		a, b = b, a
	}
	switch {
	case a == A:
		return b - 1 // AC=0 AG=1 AT=2
	case a == C:
		return b + 1 // CG=3 CT=4
	default:
		return 5
	}
}

// CodonString returns the three-letter form of codon.
func CodonString(codon int) string {
	if codon < 0 || codon >= NumCodons {
		return "???"
	}

	return string([]byte{nucleotides[codon>>4], nucleotides[(codon>>2)&3], nucleotides[codon&3]})
}

// ParseCodon converts a three-letter codon (case-insensitive, U accepted for
// T) to its index.
func ParseCodon(s string) (int, error) {
	if len(s) != 3 {
		return -1, gencodeErrorf(fmt.Sprintf("ParseCodon(%q)", s), ErrBadCodon)
	}
	codon := 0
	for _, r := range strings.ToUpper(s) {
		if r == 'U' {
			r = 'T'
		}
		n := strings.IndexRune(nucleotides, r)
		if n < 0 {
			return -1, gencodeErrorf(fmt.Sprintf("ParseCodon(%q)", s), ErrBadCodon)
		}
		codon = codon<<2 | n
	}

	return codon, nil
}
