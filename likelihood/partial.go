// SPDX-License-Identifier: MIT

package likelihood

import "math"

// partial is a patterns×B buffer with a per-pattern log-scale and the number
// of multiplications since it was last rescaled.
type partial struct {
	v       []float64
	scale   []float64
	pending int
}

func (p *partial) resize(npat, B int) {
	n := npat * B
	if cap(p.v) >= n {
		p.v = p.v[:n]
	} else {
		p.v = make([]float64, n)
	}
	if cap(p.scale) >= npat {
		p.scale = p.scale[:npat]
	} else {
		p.scale = make([]float64, npat)
	}
}

func (p *partial) fill(x float64) {
	for i := range p.v {
		p.v[i] = x
	}
	for i := range p.scale {
		p.scale[i] = 0
	}
	p.pending = 0
}

func (p *partial) copyFrom(q *partial) {
	copy(p.v, q.v)
	copy(p.scale, q.scale)
	p.pending = q.pending
}

// mul multiplies q into p element-wise.
func (p *partial) mul(q *partial) {
	for i, x := range q.v {
		p.v[i] *= x
	}
	for i, s := range q.scale {
		p.scale[i] += s
	}
	p.pending += q.pending + 1
}

// rescale divides every pattern row by its maximum once pending reaches
// every, folding the log of the factor into the scale. Rows whose maximum is
// zero or not finite are left alone.
func (p *partial) rescale(B, every int) {
	if p.pending < every {
		return
	}
	for k := range p.scale {
		row := p.v[k*B : (k+1)*B]
		var m float64
		for _, x := range row {
			if x > m {
				m = x
			}
		}
		if m <= 0 || math.IsInf(m, 0) {
			continue
		}
		inv := 1 / m
		for i := range row {
			row[i] *= inv
		}
		p.scale[k] += math.Log(m)
	}
	p.pending = 0
}

func (p *partial) row(k, B int) []float64 { return p.v[k*B : (k+1)*B] }
