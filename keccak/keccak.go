// Package keccak provides a byte-alphabet duplex sponge over the
// Keccak-f[1600] permutation, with a rate of 136 bytes and a 64-byte
// capacity.
//
// This is not SHA-3. The permutation is the SHA-3 one, but the sponge runs
// in overwrite mode with no padding rule, and the initial state carries the
// domain-separator seed in its capacity.
package keccak

import (
	"github.com/consensys/spongefish"
	"github.com/consensys/spongefish/internal/keccakf"
)

// NewPermutation returns a fresh, zero Keccak-f[1600] duplex state.
func NewPermutation() spongefish.Permutation[byte] {
	return &keccakf.State{}
}

// New returns a duplex sponge seeded with iv.
func New(iv [32]byte) (*spongefish.DuplexSponge[byte], error) {
	return spongefish.NewDuplexSponge(NewPermutation(), iv)
}

// NewArthur returns a prover transcript for ds over a Keccak sponge.
func NewArthur(ds spongefish.DomainSeparator, opts ...spongefish.ArthurOption) (*spongefish.Arthur[byte], error) {
	return spongefish.NewArthur(NewPermutation(), spongefish.ByteCodec{}, ds, opts...)
}

// NewMerlin returns a verifier transcript replaying transcript against ds
// over a Keccak sponge.
func NewMerlin(ds spongefish.DomainSeparator, transcript []byte) (*spongefish.Merlin[byte], error) {
	return spongefish.NewMerlin(NewPermutation(), spongefish.ByteCodec{}, ds, transcript)
}
