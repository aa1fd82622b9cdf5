// SPDX-License-Identifier: MIT

package matrix_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/matrix"
)

func TestNewDenseDefaultZero(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{
		{3, 3},
		{4, 61},
	} {
		name := fmt.Sprintf("%dx%d", tc.rows, tc.cols)
		t.Run(name, func(t *testing.T) {
			m := MustDense(t, tc.rows, tc.cols)
			for _, v := range m.Data() {
				require.Zero(t, v)
			}
			assert.Len(t, m.Data(), tc.rows*tc.cols)
		})
	}
}

func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(3, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	assert.Panics(t, func() { matrix.NewSquare(0) })
}

func TestDense_AtSet_OutOfRange(t *testing.T) {
	m := MustDense(t, 2, 2)
	_, err := m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
}

func TestDense_RowIsView(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	m.Row(1)[0] = 9
	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)
}

func TestDense_CloneIsIndependent(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	c := m.CloneDense()
	require.NoError(t, c.Set(0, 0, 42))
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.0, v)
}

func TestDense_CopyFrom(t *testing.T) {
	src := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	dst := MustDense(t, 2, 2)
	require.NoError(t, dst.CopyFrom(src))
	assert.Equal(t, src.Data(), dst.Data())

	bad := MustDense(t, 3, 2)
	assert.ErrorIs(t, bad.CopyFrom(src), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, dst.CopyFrom(nil), matrix.ErrNilMatrix)
}

func TestNewDenseFrom_Ragged(t *testing.T) {
	_, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestDense_SetIdentity(t *testing.T) {
	m := MustFrom(t, [][]float64{{5, 6}, {7, 8}})
	m.SetIdentity()
	assert.Equal(t, []float64{1, 0, 0, 1}, m.Data())
}
