// SPDX-License-Identifier: MIT
// Package matrix - symmetric eigen-decomposition.
//
// Purpose:
//   - EigenSym is the production path: gonum's symmetric tridiagonal QR
//     (LAPACK dsyev semantics) returning ascending eigenvalues.
//   - Eigen is the classical Jacobi rotation method; it needs no external
//     code, serves as the fallback when gonum reports non-convergence, and
//     as an independent oracle in tests.
//
// Both return eigenvectors as the COLUMNS of the returned matrix, so that
// A = V·diag(λ)·Vᵀ for symmetric A.

package matrix

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	opEigen    = "Eigen"
	opEigenSym = "EigenSym"
)

// Eigen performs Jacobi eigenvalue decomposition on a symmetric matrix m.
// It returns the eigenvalues and a matrix Q whose columns are eigenvectors.
//
// Implementation:
//   - Stage 1: ValidateSymmetric(m, tol); copy into a working Dense A; Q = I.
//   - Stage 2: repeat: pick pivot (p,q) maximizing |A[p,q]|; stop when < tol;
//     apply the rotation to A and accumulate it into Q.
//   - Stage 3: eigenvalues are diag(A).
//
// Errors:
//   - ErrDimensionMismatch (non-square), ErrAsymmetry (not symmetric within tol),
//     ErrEigenFailed (max off-diagonal ≥ tol after maxIter rotations).
//
// Complexity:
//   - Time O(maxIter * n²) (pivot search dominates), Space O(n²).
//
// AI-Hints:
//   - Good defaults: tol≈1e-12, maxIter≈50·n² for n≤64.
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := m.Rows()
	A, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			A.data[i*n+j], _ = m.At(i, j)
		}
	}
	Q, _ := NewIdentity(n) // n > 0 already validated

	var (
		iter               int
		p, q               int
		maxOff, off        float64
		app, aqq, apq      float64
		aip, aiq, qip, qiq float64
		newIP, newIQ       float64
		theta, t, c, s     float64
	)
	for iter = 0; iter < maxIter; iter++ {
		// J.1: find pivot (p,q) maximizing |A[p,q]|
		maxOff = 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off = math.Abs(A.data[i*n+j])
				if off > maxOff {
					maxOff, p, q = off, i, j
				}
			}
		}
		// J.2: converged
		if maxOff < tol {
			break
		}

		// J.3: rotation parameters; θ = (aqq−app)/(2·apq), t = sign(θ)/(|θ|+√(θ²+1))
		app = A.data[p*n+p]
		aqq = A.data[q*n+q]
		apq = A.data[p*n+q]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		// J.4: apply rotation to A
		for i := 0; i < n; i++ {
			if i == p || i == q {
				continue
			}
			aip = A.data[i*n+p]
			aiq = A.data[i*n+q]
			newIP = c*aip - s*aiq
			newIQ = s*aip + c*aiq
			A.data[i*n+p], A.data[p*n+i] = newIP, newIP
			A.data[i*n+q], A.data[q*n+i] = newIQ, newIQ
		}
		A.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		A.data[q*n+q] = s*s*app + 2*c*s*apq + c*c*aqq
		A.data[p*n+q], A.data[q*n+p] = 0, 0

		// J.5: accumulate rotation into Q
		for i := 0; i < n; i++ {
			qip = Q.data[i*n+p]
			qiq = Q.data[i*n+q]
			Q.data[i*n+p] = c*qip - s*qiq
			Q.data[i*n+q] = s*qip + c*qiq
		}
	}
	if iter == maxIter {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}

	eigs := make([]float64, n)
	for i := 0; i < n; i++ {
		eigs[i] = A.data[i*n+i]
	}

	return eigs, Q, nil
}

// EigenSym decomposes a symmetric matrix m into ascending eigenvalues and
// orthonormal eigenvectors (columns of the returned Dense).
//
// Implementation:
//   - Stage 1: ValidateSymmetric(m, tol); copy the averaged upper triangle
//     into a gonum SymDense (rounding asymmetry is discarded).
//   - Stage 2: mat.EigenSym.Factorize with vectors.
//   - Stage 3: on factorization failure, fall back to Jacobi (Eigen) and sort
//     its output ascending so both paths share one contract.
//
// Errors:
//   - ErrNilMatrix / ErrDimensionMismatch / ErrAsymmetry (validation).
//   - ErrEigenFailed if both backends fail.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func EigenSym(m Matrix, tol float64) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigenSym, err)
	}
	n := m.Rows()
	sym := mat.NewSymDense(n, nil)
	var aij, aji float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			aij, _ = m.At(i, j)
			aji, _ = m.At(j, i)
			sym.SetSym(i, j, 0.5*(aij+aji))
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); ok {
		vals := es.Values(nil)
		var ev mat.Dense
		es.VectorsTo(&ev)
		out := NewSquare(n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out.data[i*n+j] = ev.At(i, j)
			}
		}

		return vals, out, nil
	}

	// Fallback: Jacobi on the symmetrized copy.
	vals, vecs, err := Eigen(symDenseView{sym}, DefaultJacobiTol, DefaultJacobiMaxIter)
	if err != nil {
		return nil, nil, matrixErrorf(opEigenSym, ErrEigenFailed)
	}
	sortEigen(vals, vecs)

	return vals, vecs, nil
}

// sortEigen orders eigenpairs by ascending eigenvalue, permuting columns.
func sortEigen(vals []float64, vecs *Dense) {
	n := len(vals)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })

	sortedVals := make([]float64, n)
	sortedVecs := NewSquare(n)
	for col, src := range idx {
		sortedVals[col] = vals[src]
		for i := 0; i < n; i++ {
			sortedVecs.data[i*n+col] = vecs.data[i*n+src]
		}
	}
	copy(vals, sortedVals)
	copy(vecs.data, sortedVecs.data)
}

// symDenseView adapts a gonum SymDense to the Matrix interface (read-only use).
type symDenseView struct{ s *mat.SymDense }

func (v symDenseView) Rows() int { r, _ := v.s.Dims(); return r }
func (v symDenseView) Cols() int { _, c := v.s.Dims(); return c }

func (v symDenseView) At(i, j int) (float64, error) {
	n := v.Rows()
	if i < 0 || i >= n || j < 0 || j >= n {
		return 0, denseErrorf(ctxAt, i, j, ErrOutOfRange)
	}

	return v.s.At(i, j), nil
}

func (v symDenseView) Set(i, j int, x float64) error {
	n := v.Rows()
	if i < 0 || i >= n || j < 0 || j >= n {
		return denseErrorf(ctxSet, i, j, ErrOutOfRange)
	}
	v.s.SetSym(i, j, x)

	return nil
}

func (v symDenseView) Clone() Matrix {
	c := mat.NewSymDense(v.Rows(), nil)
	c.CopySym(v.s)

	return symDenseView{c}
}
