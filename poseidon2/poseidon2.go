// Package poseidon2 provides a duplex sponge native to the BN254 scalar
// field, built on the Poseidon2 permutation of gnark-crypto. Units are
// fr.Element values; protocols over BN254 absorb witnesses and squeeze
// challenges without ever leaving the field, which is what makes the
// transcript cheap to re-verify inside a circuit.
package poseidon2

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	poseidonbn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/consensys/spongefish"
)

// Sponge geometry: one rate element, two capacity elements. The capacity
// holds at least 508 bits, comfortably above the 256-bit security of the
// seed.
const (
	width = 3
	rate  = 1
)

// Poseidon2 round numbers for BN254, t=3.
const (
	fullRounds    = 8
	partialRounds = 56
)

type permutation struct {
	h     *poseidonbn254.Permutation
	state [width]fr.Element
}

func (p *permutation) Width() int { return width }

func (p *permutation) Rate() int { return rate }

func (p *permutation) State() []fr.Element { return p.state[:] }

// Initialize embeds the seed into the capacity as two 128-bit halves; both
// fit a field element without reduction.
func (p *permutation) Initialize(iv [32]byte) {
	p.state[rate].SetBytes(iv[:16])
	p.state[rate+1].SetBytes(iv[16:])
}

func (p *permutation) Permute() {
	// width is fixed at construction, the only error condition
	_ = p.h.Permutation(p.state[:])
}

func (p *permutation) Wipe() {
	for i := range p.state {
		p.state[i].SetZero()
	}
}

// NewPermutation returns a fresh, zero Poseidon2 duplex state.
func NewPermutation() spongefish.Permutation[fr.Element] {
	return &permutation{h: poseidonbn254.NewPermutation(width, fullRounds, partialRounds)}
}

// New returns a duplex sponge seeded with iv.
func New(iv [32]byte) (*spongefish.DuplexSponge[fr.Element], error) {
	return spongefish.NewDuplexSponge(NewPermutation(), iv)
}

// Codec is the UnitCodec of the fr alphabet: 32-byte canonical big-endian
// encoding per element.
type Codec struct{}

func (Codec) UnitSize() int { return fr.Bytes }

func (Codec) WriteUnits(w io.Writer, units []fr.Element) error {
	for i := range units {
		b := units[i].Bytes()
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

func (Codec) ReadUnits(r io.Reader, units []fr.Element) error {
	var buf [fr.Bytes]byte
	for i := range units {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		if err := units[i].SetBytesCanonical(buf[:]); err != nil {
			return fmt.Errorf("%w: %s", spongefish.ErrDecoding, err)
		}
	}
	return nil
}

func (Codec) WipeUnits(units []fr.Element) {
	for i := range units {
		units[i].SetZero()
	}
}

// NewArthur returns a prover transcript for ds over a Poseidon2 sponge.
func NewArthur(ds spongefish.DomainSeparator, opts ...spongefish.ArthurOption) (*spongefish.Arthur[fr.Element], error) {
	return spongefish.NewArthur(NewPermutation(), Codec{}, ds, opts...)
}

// NewMerlin returns a verifier transcript replaying transcript against ds
// over a Poseidon2 sponge.
func NewMerlin(ds spongefish.DomainSeparator, transcript []byte) (*spongefish.Merlin[fr.Element], error) {
	return spongefish.NewMerlin(NewPermutation(), Codec{}, ds, transcript)
}
