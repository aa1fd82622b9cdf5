// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/etetoolkit/ete-sub002/gencode"
	"github.com/etetoolkit/ete-sub002/matrix"
)

// codonPair is one single-nucleotide exchange between sense codons i < j
// (dense sense indices).
type codonPair struct {
	i, j   int
	ts     bool // transition
	nonsyn bool // changes the amino acid
	nuc    int  // gencode.NucPair of the exchanged nucleotides
}

// codonPairs enumerates every pair of sense codons differing at exactly one
// position.
func codonPairs(code *gencode.Code) []codonPair {
	sense := code.SenseCodons()
	pairs := make([]codonPair, 0, 9*len(sense)/2)
	for i, ci := range sense {
		for j := i + 1; j < len(sense); j++ {
			cj := sense[j]
			d := gencode.Compare(ci, cj)
			if d.Count != 1 {
				continue
			}
			pairs = append(pairs, codonPair{
				i:      i,
				j:      j,
				ts:     gencode.IsTransition(d.From, d.To),
				nonsyn: !code.IsSynonymous(ci, cj),
				nuc:    gencode.NucPair(d.From, d.To),
			})
		}
	}

	return pairs
}

func setSym(m *matrix.Dense, i, j int, v float64) {
	m.Row(i)[j] = v
	m.Row(j)[i] = v
}

// Codon parameter bounds.
const (
	kappaMin, kappaMax = 1e-4, 1e3
	omegaMin, omegaMax = 1e-6, 1e3
	rateMin, rateMax   = 1e-4, 1e3
)

// CodonM0 is the single-ω codon family with parameters {kappa, omega}.
type CodonM0 struct {
	code  *gencode.Code
	pairs []codonPair
}

// NewCodonM0 returns the M0 family over the sense codons of code.
func NewCodonM0(code *gencode.Code) *CodonM0 {
	return &CodonM0{code: code, pairs: codonPairs(code)}
}

var (
	_ Family    = (*CodonM0)(nil)
	_ Selective = (*CodonM0)(nil)
)

func (f *CodonM0) Name() string { return fmt.Sprintf("codon-m0/%d", f.code.ID) }
func (f *CodonM0) States() int { return f.code.NumSense() }
func (f *CodonM0) NumParams() int { return 2 }
func (f *CodonM0) ParamNames() []string { return []string{"kappa", "omega"} }
func (f *CodonM0) Defaults() []float64 { return []float64{2, 0.5} }
func (f *CodonM0) OmegaIndex() int { return 1 }
func (f *CodonM0) Code() *gencode.Code { return f.code }
func (f *CodonM0) Bounds() (lo, hi []float64) {
	return []float64{kappaMin, omegaMin}, []float64{kappaMax, omegaMax}
}

// Exchange sets S_ij = κ^[transition] · ω^[non-synonymous] for single-step
// neighbours and 0 elsewhere.
func (f *CodonM0) Exchange(params []float64, S *matrix.Dense) {
	S.Zero()
	kappa, omega := params[0], params[1]
	for _, p := range f.pairs {
		v := 1.0
		if p.ts {
			v *= kappa
		}
		if p.nonsyn {
			v *= omega
		}
		setSym(S, p.i, p.j, v)
	}
}

// ExchangeDeriv writes ∂S/∂κ (p=0) or ∂S/∂ω (p=1).
func (f *CodonM0) ExchangeDeriv(params []float64, p int, dS *matrix.Dense) {
	dS.Zero()
	kappa, omega := params[0], params[1]
	for _, cp := range f.pairs {
		var v float64
		switch p {
		case 0:
			if !cp.ts {
				continue
			}
			v = 1
			if cp.nonsyn {
				v = omega
			}
		case 1:
			if !cp.nonsyn {
				continue
			}
			v = 1
			if cp.ts {
				v = kappa
			}
		}
		setSym(dS, cp.i, cp.j, v)
	}
}

// CodonGTR is the codon family with a general nucleotide exchange process:
// parameters {AC, AG, AT, CG, CT, omega}; the GT rate is fixed at 1.
type CodonGTR struct {
	code  *gencode.Code
	pairs []codonPair
}

// NewCodonGTR returns the full codon family over the sense codons of code.
func NewCodonGTR(code *gencode.Code) *CodonGTR {
	return &CodonGTR{code: code, pairs: codonPairs(code)}
}

var (
	_ Family    = (*CodonGTR)(nil)
	_ Selective = (*CodonGTR)(nil)
)

const gtrFixedPair = 5 // GT

func (f *CodonGTR) Name() string { return fmt.Sprintf("codon-gtr/%d", f.code.ID) }
func (f *CodonGTR) States() int { return f.code.NumSense() }
func (f *CodonGTR) NumParams() int { return 6 }
func (f *CodonGTR) OmegaIndex() int { return 5 }
func (f *CodonGTR) Code() *gencode.Code { return f.code }
func (f *CodonGTR) ParamNames() []string {
	return []string{"AC", "AG", "AT", "CG", "CT", "omega"}
}
func (f *CodonGTR) Defaults() []float64 { return []float64{1, 2, 1, 1, 2, 0.5} }
func (f *CodonGTR) Bounds() (lo, hi []float64) {
	return []float64{rateMin, rateMin, rateMin, rateMin, rateMin, omegaMin},
		[]float64{rateMax, rateMax, rateMax, rateMax, rateMax, omegaMax}
}

func (f *CodonGTR) nucRate(params []float64, pair int) float64 {
	if pair == gtrFixedPair {
		return 1
	}

	return params[pair]
}

// Exchange sets S_ij = r_{nuc(i,j)} · ω^[non-synonymous].
func (f *CodonGTR) Exchange(params []float64, S *matrix.Dense) {
	S.Zero()
	omega := params[5]
	for _, p := range f.pairs {
		v := f.nucRate(params, p.nuc)
		if p.nonsyn {
			v *= omega
		}
		setSym(S, p.i, p.j, v)
	}
}

// ExchangeDeriv writes ∂S/∂params[p].
func (f *CodonGTR) ExchangeDeriv(params []float64, p int, dS *matrix.Dense) {
	dS.Zero()
	omega := params[5]
	for _, cp := range f.pairs {
		var v float64
		switch {
		case p == 5:
			if !cp.nonsyn {
				continue
			}
			v = f.nucRate(params, cp.nuc)
		case cp.nuc == p:
			v = 1
			if cp.nonsyn {
				v = omega
			}
		default:
			continue
		}
		setSym(dS, cp.i, cp.j, v)
	}
}
