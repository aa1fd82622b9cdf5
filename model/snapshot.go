// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot field names.
const (
	snapFamily = "family"
	snapScheme = "scheme"
	snapParams = "params"
	snapFreqs  = "freqs"
	snapRate   = "rate"
)

// MarshalSnapshot serialises the parameter state of m (family name, scheme,
// parameters, π and rate multiplier) as a protobuf Struct.
func MarshalSnapshot(m *Model) ([]byte, error) {
	const tag = "MarshalSnapshot"
	s, err := structpb.NewStruct(map[string]any{
		snapFamily: m.fam.Name(),
		snapScheme: m.scheme.String(),
		snapParams: floatsToAny(m.params),
		snapFreqs:  floatsToAny(m.pi),
		snapRate:   m.rate,
	})
	if err != nil {
		return nil, modelErrorf(tag, err)
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, modelErrorf(tag, err)
	}

	return data, nil
}

// RestoreSnapshot loads a snapshot produced by MarshalSnapshot into m.
// Family, scheme and vector lengths must match. The model is marked dirty,
// so the next use rebuilds and re-factorises Q.
//
// Errors: ErrSnapshot, protobuf decode errors.
func (m *Model) RestoreSnapshot(data []byte) error {
	const tag = "RestoreSnapshot"
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return modelErrorf(tag, err)
	}
	f := s.GetFields()
	if f[snapFamily].GetStringValue() != m.fam.Name() || f[snapScheme].GetStringValue() != m.scheme.String() {
		return modelErrorf(tag, ErrSnapshot)
	}
	params, err := anyToFloats(f[snapParams], len(m.params))
	if err != nil {
		return modelErrorf(tag, err)
	}
	freqs, err := anyToFloats(f[snapFreqs], len(m.pi))
	if err != nil {
		return modelErrorf(tag, err)
	}
	rate := f[snapRate].GetNumberValue()
	if rate <= 0 {
		return modelErrorf(tag, fmt.Errorf("%w: rate %g", ErrSnapshot, rate))
	}

	copy(m.params, params)
	copy(m.pi, freqs)
	m.syncFreqs()
	m.rate = rate
	m.invalidate()

	return nil
}

func floatsToAny(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}

	return out
}

func anyToFloats(v *structpb.Value, n int) ([]float64, error) {
	list := v.GetListValue()
	if list == nil || len(list.GetValues()) != n {
		return nil, errors.Join(ErrSnapshot, fmt.Errorf("want %d values", n))
	}
	out := make([]float64, n)
	for i, x := range list.GetValues() {
		out[i] = x.GetNumberValue()
	}

	return out, nil
}
