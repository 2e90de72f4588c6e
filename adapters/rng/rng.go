package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"costwise/domain/core"
	"costwise/ports"
)

// Adapter implements ports.RNG with streams derived from a base seed and an
// FNV hash of the stream name. Two streams with different names never share
// a sequence, and a given (name, seed) pair always reproduces one.
type Adapter struct{}

// New creates an RNG adapter.
func New() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named
// operation.
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name == "" {
		return nil, core.NewInvalidParameterError("name", "stream name is required")
	}

	h := fnv.New64a()
	h.Write([]byte(name))
	derived := seed ^ int64(h.Sum64())

	return rand.New(rand.NewSource(derived)), nil
}

var _ ports.RNG = (*Adapter)(nil)
