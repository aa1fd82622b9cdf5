// SPDX-License-Identifier: MIT

package alignment

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Patterns is a compressed alignment. Columns[p][k] is the state of taxon k
// in pattern p.
type Patterns struct {
	Taxa    []string
	States  int
	Gap     int
	Columns [][]int
	Weights []float64

	// Sites maps each original alignment column to its pattern; nil when the
	// patterns were supplied directly.
	Sites []int
}

func checkGap(states, gap int) error {
	if states < 1 {
		return ErrShape
	}
	if gap >= 0 && gap < states {
		return ErrGap
	}

	return nil
}

func checkState(v, states, gap int) bool { return v == gap || (v >= 0 && v < states) }

// Compress builds patterns from rows[taxon][site].
//
// Implementation:
//   - Stage 1: validate shape, gap and states.
//   - Stage 2: key each column by its varint encoding; the first occurrence
//     creates a pattern, later ones add 1 to its weight.
//
// Errors: ErrShape, ErrGap, ErrState.
//
// Complexity: O(taxa·sites) time, O(taxa·patterns) memory.
func Compress(taxa []string, rows [][]int, states, gap int) (*Patterns, error) {
	const tag = "Compress"
	if err := checkGap(states, gap); err != nil {
		return nil, alignmentErrorf(tag, err)
	}
	if len(taxa) == 0 || len(rows) != len(taxa) {
		return nil, alignmentErrorf(tag, ErrShape)
	}
	nsite := len(rows[0])
	for k, r := range rows {
		if len(r) != nsite {
			return nil, alignmentErrorf(fmt.Sprintf("%s(row %d)", tag, k), ErrShape)
		}
		for s, v := range r {
			if !checkState(v, states, gap) {
				return nil, alignmentErrorf(fmt.Sprintf("%s(row %d, site %d)", tag, k, s), ErrState)
			}
		}
	}

	p := &Patterns{
		Taxa:   append([]string(nil), taxa...),
		States: states,
		Gap:    gap,
		Sites:  make([]int, nsite),
	}
	index := make(map[string]int)
	key := make([]byte, 0, 2*len(taxa))
	for s := 0; s < nsite; s++ {
		key = key[:0]
		for k := range rows {
			key = binary.AppendVarint(key, int64(rows[k][s]))
		}
		if id, ok := index[string(key)]; ok {
			p.Weights[id]++
			p.Sites[s] = id
			continue
		}
		col := make([]int, len(taxa))
		for k := range rows {
			col[k] = rows[k][s]
		}
		id := len(p.Columns)
		index[string(key)] = id
		p.Columns = append(p.Columns, col)
		p.Weights = append(p.Weights, 1)
		p.Sites[s] = id
	}

	return p, nil
}

// New builds Patterns from explicit columns and weights.
//
// Errors: ErrShape, ErrGap, ErrState, ErrWeight.
func New(taxa []string, columns [][]int, weights []float64, states, gap int) (*Patterns, error) {
	const tag = "New"
	if err := checkGap(states, gap); err != nil {
		return nil, alignmentErrorf(tag, err)
	}
	if len(taxa) == 0 || len(columns) != len(weights) {
		return nil, alignmentErrorf(tag, ErrShape)
	}
	p := &Patterns{
		Taxa:    append([]string(nil), taxa...),
		States:  states,
		Gap:     gap,
		Columns: make([][]int, len(columns)),
		Weights: append([]float64(nil), weights...),
	}
	for i, c := range columns {
		if len(c) != len(taxa) {
			return nil, alignmentErrorf(fmt.Sprintf("%s(pattern %d)", tag, i), ErrShape)
		}
		for _, v := range c {
			if !checkState(v, states, gap) {
				return nil, alignmentErrorf(fmt.Sprintf("%s(pattern %d)", tag, i), ErrState)
			}
		}
		if w := weights[i]; w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, alignmentErrorf(fmt.Sprintf("%s(pattern %d)", tag, i), ErrWeight)
		}
		p.Columns[i] = append([]int(nil), c...)
	}

	return p, nil
}

// Len is the number of patterns.
func (p *Patterns) Len() int { return len(p.Columns) }

// NumTaxa is the number of sequences.
func (p *Patterns) NumTaxa() int { return len(p.Taxa) }

// NumSites is the number of original columns (Σ weights when Sites is nil).
func (p *Patterns) NumSites() int {
	if p.Sites != nil {
		return len(p.Sites)
	}

	return int(p.TotalWeight())
}

// TotalWeight is Σ weights.
func (p *Patterns) TotalWeight() float64 {
	var s float64
	for _, w := range p.Weights {
		s += w
	}

	return s
}

// TaxonIndex returns the row of name, or −1.
func (p *Patterns) TaxonIndex(name string) int {
	for k, t := range p.Taxa {
		if t == name {
			return k
		}
	}

	return -1
}

// Classify labels pattern i; the second result is the observed state of a
// SingleObserved pattern.
func (p *Patterns) Classify(i int) (Class, int) {
	observed, state := 0, p.Gap
	for _, v := range p.Columns[i] {
		if v == p.Gap {
			continue
		}
		observed++
		state = v
		if observed > 1 {
			return Full, p.Gap
		}
	}
	if observed == 0 {
		return AllGap, p.Gap
	}

	return SingleObserved, state
}

// Subset returns the patterns at idx, in that order, with their weights.
// Sites is dropped.
func (p *Patterns) Subset(idx ...int) (*Patterns, error) {
	out := &Patterns{
		Taxa:    p.Taxa,
		States:  p.States,
		Gap:     p.Gap,
		Columns: make([][]int, len(idx)),
		Weights: make([]float64, len(idx)),
	}
	for k, i := range idx {
		if i < 0 || i >= len(p.Columns) {
			return nil, alignmentErrorf(fmt.Sprintf("Subset(%d)", i), ErrPattern)
		}
		out.Columns[k] = p.Columns[i]
		out.Weights[k] = p.Weights[i]
	}

	return out, nil
}

// Frequencies returns weighted empirical state frequencies with pseudo added
// to every count. Gaps are ignored; with no data and pseudo = 0 the result
// is uniform.
func (p *Patterns) Frequencies(pseudo float64) []float64 {
	f := make([]float64, p.States)
	for i := range f {
		f[i] = pseudo
	}
	for i, col := range p.Columns {
		for _, v := range col {
			if v != p.Gap {
				f[v] += p.Weights[i]
			}
		}
	}
	var sum float64
	for _, v := range f {
		sum += v
	}
	for i := range f {
		if sum > 0 {
			f[i] /= sum
		} else {
			f[i] = 1 / float64(p.States)
		}
	}

	return f
}
