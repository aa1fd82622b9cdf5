// SPDX-License-Identifier: MIT

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/gencode"
	"github.com/etetoolkit/ete-sub002/model"
)

func TestSnapshot_RoundTripReproducesP(t *testing.T) {
	for name, m := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			if m.NumParams() > 0 {
				require.NoError(t, m.Update(0, 1.7))
			}
			m.SetRate(1.3)
			before := mustP(t, m, 0.42)

			data, err := model.MarshalSnapshot(m)
			require.NoError(t, err)

			// Perturb, then restore.
			for p := 0; p < m.NumParams(); p++ {
				require.NoError(t, m.Update(p, m.Param(p)*1.5))
			}
			m.SetRate(0.5)
			require.NoError(t, m.RestoreSnapshot(data))
			assert.Less(t, maxAbsDiff(before, mustP(t, m, 0.42)), 1e-13)

			// A fresh model of the same family restores identically.
			fresh := fixtures(t)[name]
			require.NoError(t, fresh.RestoreSnapshot(data))
			assert.Less(t, maxAbsDiff(before, mustP(t, fresh, 0.42)), 1e-13)
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	m := mustModel(t, model.GTR(), model.FreqSqrt, randomFreqs(4, 11))
	a, err := model.MarshalSnapshot(m)
	require.NoError(t, err)
	b, err := model.MarshalSnapshot(m)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSnapshot_Mismatch(t *testing.T) {
	gtr := mustModel(t, model.GTR(), model.FreqTarget, nil)
	data, err := model.MarshalSnapshot(gtr)
	require.NoError(t, err)

	k80 := mustModel(t, model.K80(), model.FreqTarget, nil)
	assert.ErrorIs(t, k80.RestoreSnapshot(data), model.ErrSnapshot)

	sqrt := mustModel(t, model.GTR(), model.FreqSqrt, nil)
	assert.ErrorIs(t, sqrt.RestoreSnapshot(data), model.ErrSnapshot)

	assert.Error(t, gtr.RestoreSnapshot([]byte{0xff, 0xff}))

	m0 := mustModel(t, model.NewCodonM0(gencode.Standard()), model.FreqEqual, nil)
	other := mustModel(t, model.NewCodonM0(gencode.MustLookup(2)), model.FreqEqual, nil)
	data, err = model.MarshalSnapshot(m0)
	require.NoError(t, err)
	assert.ErrorIs(t, other.RestoreSnapshot(data), model.ErrSnapshot)
}
