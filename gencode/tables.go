// SPDX-License-Identifier: MIT

package gencode

import "sort"

// ncbi holds translation strings in NCBI TCAG order.
var ncbi = map[int]struct {
	name  string
	table string
}{
	1:  {"Standard", "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"},
	2:  {"Vertebrate Mitochondrial", "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSS**VVVVAAAADDEEGGGG"},
	3:  {"Yeast Mitochondrial", "FFLLSSSSYY**CCWWTTTTPPPPHHQQRRRRIIMMTTTTNNKKSSRRVVVVAAAADDEEGGGG"},
	4:  {"Mold, Protozoan, Coelenterate Mitochondrial and Mycoplasma", "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"},
	5:  {"Invertebrate Mitochondrial", "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSSSSVVVVAAAADDEEGGGG"},
	6:  {"Ciliate, Dasycladacean and Hexamita Nuclear", "FFLLSSSSYYQQCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"},
	9:  {"Echinoderm and Flatworm Mitochondrial", "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNNKSSSSVVVVAAAADDEEGGGG"},
	10: {"Euplotid Nuclear", "FFLLSSSSYY**CCCWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"},
	11: {"Bacterial, Archaeal and Plant Plastid", "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"},
}

// tcag maps an ACGT nucleotide index to its TCAG position.
var tcag = [4]int{A: 2, C: 1, G: 3, T: 0}

var codes = func() map[int]*Code {
	out := make(map[int]*Code, len(ncbi))
	for id, src := range ncbi {
		out[id] = build(id, src.name, src.table)
	}

	return out
}()

// build re-indexes an NCBI table into ACGT codon order.
func build(id int, name, table string) *Code {
	c := &Code{ID: id, Name: name}
	for codon := 0; codon < NumCodons; codon++ {
		n1, n2, n3 := codon>>4, (codon>>2)&3, codon&3
		c.aa[codon] = table[16*tcag[n1]+4*tcag[n2]+tcag[n3]]
		if c.aa[codon] == Stop {
			c.senseIdx[codon] = -1
			continue
		}
		c.senseIdx[codon] = len(c.sense)
		c.sense = append(c.sense, codon)
	}

	return c
}

// IDs lists the supported genetic code ids in ascending order.
func IDs() []int {
	ids := make([]int, 0, len(codes))
	for id := range codes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}
