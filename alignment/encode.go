// SPDX-License-Identifier: MIT

package alignment

import (
	"fmt"

	"github.com/etetoolkit/ete-sub002/gencode"
)

// EncodeNucleotides maps A,C,G,T/U (any case) to 0..3 and every other
// character to Gap.
func EncodeNucleotides(seq string) []int {
	out := make([]int, len(seq))
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'a':
			out[i] = gencode.A
		case 'C', 'c':
			out[i] = gencode.C
		case 'G', 'g':
			out[i] = gencode.G
		case 'T', 't', 'U', 'u':
			out[i] = gencode.T
		default:
			out[i] = Gap
		}
	}

	return out
}

// EncodeCodons maps each triplet of seq to its dense sense-codon index under
// code. Triplets containing anything but ACGTU become Gap; stop codons are
// rejected with ErrState.
func EncodeCodons(seq string, code *gencode.Code) ([]int, error) {
	if len(seq)%3 != 0 {
		return nil, alignmentErrorf("EncodeCodons", ErrShape)
	}
	out := make([]int, len(seq)/3)
	for i := range out {
		c, err := gencode.ParseCodon(seq[3*i : 3*i+3])
		if err != nil {
			out[i] = Gap
			continue
		}
		idx := code.SenseIndex(c)
		if idx < 0 {
			return nil, alignmentErrorf(fmt.Sprintf("EncodeCodons(codon %d %s)", i, gencode.CodonString(c)), ErrState)
		}
		out[i] = idx
	}

	return out, nil
}
