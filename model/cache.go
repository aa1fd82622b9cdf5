// SPDX-License-Identifier: MIT

package model

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// CacheKey identifies a Scale value: the model identity plus a SHA3-256
// digest of its parameter snapshot.
type CacheKey struct {
	Model  uuid.UUID
	Digest [32]byte
}

// ScaleCache memoises natural Scale values. Safe for concurrent use.
type ScaleCache struct {
	mu     sync.RWMutex
	values map[CacheKey]float64
	hits   uint64
	misses uint64
}

// NewScaleCache returns an empty cache.
func NewScaleCache() *ScaleCache {
	return &ScaleCache{values: make(map[CacheKey]float64)}
}

// Key digests scheme, parameters and π of m with params overridden where
// override[i] is not NaN. Pass nil to use the current parameters.
func Key(m *Model, override []float64) CacheKey {
	h := sha3.New256()
	var buf [8]byte
	write := func(x float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	h.Write([]byte(m.fam.Name()))
	write(float64(m.scheme))
	for i, p := range m.params {
		if i < len(override) && !math.IsNaN(override[i]) {
			p = override[i]
		}
		write(p)
	}
	for _, p := range m.pi {
		write(p)
	}
	k := CacheKey{Model: m.id}
	copy(k.Digest[:], h.Sum(nil))

	return k
}

// Get returns the cached value for k.
func (c *ScaleCache) Get(k CacheKey) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[k]

	return v, ok
}

// Put stores v under k.
func (c *ScaleCache) Put(k CacheKey, v float64) {
	c.mu.Lock()
	c.values[k] = v
	c.mu.Unlock()
}

// Invalidate drops every entry of one model identity.
func (c *ScaleCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.values {
		if k.Model == id {
			delete(c.values, k)
		}
	}
}

// Reset empties the cache and its counters.
func (c *ScaleCache) Reset() {
	c.mu.Lock()
	c.values = make(map[CacheKey]float64)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

// Len is the number of cached values.
func (c *ScaleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.values)
}

// Stats returns hit and miss counts of NeutralScale lookups.
func (c *ScaleCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hits, c.misses
}

// NeutralScale returns the natural Scale of m with ω set to 1, computing it
// on a clone on a cache miss. m itself is not modified. A nil cache disables
// memoisation.
//
// Errors: ErrParamIndex when the family has no ω.
func NeutralScale(m *Model, cache *ScaleCache) (float64, error) {
	sel, ok := m.fam.(Selective)
	if !ok {
		return 0, modelErrorf("NeutralScale", ErrParamIndex)
	}
	omega := sel.OmegaIndex()

	override := make([]float64, omega+1)
	for i := range override {
		override[i] = math.NaN()
	}
	override[omega] = 1
	k := Key(m, override)
	if cache != nil {
		if v, hit := cache.Get(k); hit {
			cache.count(true)
			return v, nil
		}
		cache.count(false)
	}

	c := m.Clone()
	c.ReleaseScale()
	_ = c.Update(omega, 1) // omega < NumParams by construction
	v := c.NaturalScale()
	if cache != nil {
		cache.Put(k, v)
	}

	return v, nil
}

func (c *ScaleCache) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}
