// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/etetoolkit/ete-sub002/matrix"
)

// Fixed marks a Table entry whose exchangeability is the constant 1.
const Fixed = -1

// Table is a family whose exchangeabilities are looked up from a fixed
// position→parameter table over the upper triangle of S, in row-major order
// (0,1), (0,2), …, (0,B−1), (1,2), ….
type Table struct {
	name     string
	states   int
	index    []int
	names    []string
	defaults []float64
	lower    []float64
	upper    []float64
	uses     [][]int // parameter → upper-triangle positions
}

var _ Family = (*Table)(nil)

// NewTable validates and builds a Table family.
//
// index has B(B−1)/2 entries, each Fixed or a parameter number in
// [0, len(defaults)). Parameters are bounded to [1e-4, 1e3].
func NewTable(name string, states int, index []int, defaults []float64) (*Table, error) {
	tag := fmt.Sprintf("NewTable(%s)", name)
	if states < 2 || len(index) != states*(states-1)/2 {
		return nil, modelErrorf(tag, ErrBadTable)
	}
	uses := make([][]int, len(defaults))
	for pos, k := range index {
		if k == Fixed {
			continue
		}
		if k < 0 || k >= len(defaults) {
			return nil, modelErrorf(tag, ErrBadTable)
		}
		uses[k] = append(uses[k], pos)
	}
	t := &Table{
		name:     name,
		states:   states,
		index:    append([]int(nil), index...),
		names:    make([]string, len(defaults)),
		defaults: append([]float64(nil), defaults...),
		lower:    make([]float64, len(defaults)),
		upper:    make([]float64, len(defaults)),
		uses:     uses,
	}
	for k := range defaults {
		if len(uses[k]) == 0 {
			return nil, modelErrorf(tag, ErrBadTable)
		}
		t.names[k] = fmt.Sprintf("r%d", k)
		t.lower[k], t.upper[k] = rateMin, rateMax
	}

	return t, nil
}

// withNames overrides the generated parameter names.
func (t *Table) withNames(names ...string) *Table {
	copy(t.names, names)

	return t
}

func (t *Table) Name() string { return t.name }
func (t *Table) States() int { return t.states }
func (t *Table) NumParams() int { return len(t.defaults) }
func (t *Table) ParamNames() []string { return append([]string(nil), t.names...) }
func (t *Table) Defaults() []float64 { return append([]float64(nil), t.defaults...) }
func (t *Table) Bounds() (lo, hi []float64) {
	return append([]float64(nil), t.lower...), append([]float64(nil), t.upper...)
}

// Exchange fills S from the table.
func (t *Table) Exchange(params []float64, S *matrix.Dense) {
	S.Zero()
	pos := 0
	for i := 0; i < t.states; i++ {
		for j := i + 1; j < t.states; j++ {
			v := 1.0
			if k := t.index[pos]; k != Fixed {
				v = params[k]
			}
			setSym(S, i, j, v)
			pos++
		}
	}
}

// ExchangeDeriv sets 1 at every position that reads params[p].
func (t *Table) ExchangeDeriv(_ []float64, p int, dS *matrix.Dense) {
	dS.Zero()
	for _, pos := range t.uses[p] {
		i, j := t.unrank(pos)
		setSym(dS, i, j, 1)
	}
}

// unrank maps an upper-triangle position back to (i, j).
func (t *Table) unrank(pos int) (int, int) {
	i := 0
	for rowLen := t.states - 1; pos >= rowLen; rowLen-- {
		pos -= rowLen
		i++
	}

	return i, i + 1 + pos
}

func mustTable(name string, states int, index []int, defaults []float64) *Table {
	t, err := NewTable(name, states, index, defaults)
	if err != nil {
		panic(err)
	}

	return t
}

func fixedIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = Fixed
	}

	return idx
}

// JC69 is the Jukes–Cantor nucleotide family (no parameters).
func JC69() *Table { return mustTable("jc69", 4, fixedIndex(6), nil) }

// K80 is the Kimura two-parameter family: transitions AG and CT scaled by kappa.
func K80() *Table {
	//                        AC     AG  AT     CG     CT  GT
	return mustTable("k80", 4, []int{Fixed, 0, Fixed, Fixed, 0, Fixed}, []float64{2}).withNames("kappa")
}

// GTR is the general time-reversible nucleotide family, GT fixed at 1.
func GTR() *Table {
	return mustTable("gtr", 4, []int{0, 1, 2, 3, 4, Fixed}, []float64{1, 2, 1, 1, 2}).
		withNames("AC", "AG", "AT", "CG", "CT")
}

// Poisson20 is the equal-rates amino-acid family.
func Poisson20() *Table { return mustTable("poisson20", 20, fixedIndex(190), nil) }

// GTR20 is the general amino-acid family: 189 free exchangeabilities, the
// last pair fixed at 1.
func GTR20() *Table {
	idx := make([]int, 190)
	def := make([]float64, 189)
	for i := range def {
		idx[i] = i
		def[i] = 1
	}
	idx[189] = Fixed

	return mustTable("gtr20", 20, idx, def)
}
