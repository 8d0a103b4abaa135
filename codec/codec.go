// Package codec converts algebraic values to and from transcript bytes.
//
// For byte-alphabet sponges, field challenges are extracted by rejection
// sampling: squeeze just enough bytes to cover the field's bit length, mask
// the excess bits and retry while the candidate falls outside the field.
// The result is uniform, unlike a single modular reduction.
//
// Native-alphabet sponges (see the poseidon2 package) embed field elements
// directly as units and need no conversion at all; their UnitCodec is the
// whole codec.
package codec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/spongefish"
)

// Transcript is the pattern-gated byte surface of a transcript role: both
// Arthur and Merlin over the byte alphabet satisfy it.
type Transcript interface {
	Absorb([]byte) error
	Squeeze([]byte) error
}

// Stream is an unbounded squeeze stream with no declared length, such as a
// raw duplex sponge or the prover's private randomness channel. Rejection
// sampling needs one, since its consumption is data-dependent.
type Stream interface {
	Squeeze([]byte)
}

// wideSlack is the number of extra squeezed bytes used by SqueezeElement.
// 128 bits of slack keep the reduction bias below 2^-128.
const wideSlack = 16

// Field converts elements of Z/modulus to and from their canonical
// fixed-width big-endian encoding.
type Field struct {
	modulus *big.Int
	bits    int
	size    int
}

// NewField builds a codec for Z/modulus. The modulus must exceed 1; it is
// not required to be prime.
func NewField(modulus *big.Int) (*Field, error) {
	if modulus == nil || modulus.Cmp(big.NewInt(1)) <= 0 {
		return nil, errors.New("modulus must exceed 1")
	}
	bits := modulus.BitLen()
	return &Field{
		modulus: new(big.Int).Set(modulus),
		bits:    bits,
		size:    (bits + 7) / 8,
	}, nil
}

// EncodedLen returns the canonical encoding width in bytes.
func (f *Field) EncodedLen() int { return f.size }

// ChallengeLen returns the squeeze length a domain separator must declare
// for one SqueezeElement challenge.
func (f *Field) ChallengeLen() int { return f.size + wideSlack }

// Encode returns the canonical encoding of x.
func (f *Field) Encode(x *big.Int) ([]byte, error) {
	if x.Sign() < 0 || x.Cmp(f.modulus) >= 0 {
		return nil, fmt.Errorf("%w: value outside field", spongefish.ErrDecoding)
	}
	return x.FillBytes(make([]byte, f.size)), nil
}

// Decode is the inverse of Encode. It rejects non-canonical input: wrong
// width or a value at or above the modulus.
func (f *Field) Decode(b []byte) (*big.Int, error) {
	if len(b) != f.size {
		return nil, fmt.Errorf("%w: got %d bytes, field encodes to %d", spongefish.ErrDecoding, len(b), f.size)
	}
	x := new(big.Int).SetBytes(b)
	if x.Cmp(f.modulus) >= 0 {
		return nil, fmt.Errorf("%w: value outside field", spongefish.ErrDecoding)
	}
	return x, nil
}

// topMask clears the bits of the leading byte that exceed the field's bit
// length, so each draw is uniform over [0, 2^bits) and accepted with
// probability at least 1/2.
func (f *Field) topMask() byte {
	if r := f.bits % 8; r != 0 {
		return byte(1<<r) - 1
	}
	return 0xff
}

// Sample draws a uniform field element from stream by rejection sampling.
// Consumption is data-dependent, so this requires an unbounded stream; for
// pattern-gated transcripts use SqueezeElement.
func (f *Field) Sample(stream Stream) *big.Int {
	buf := make([]byte, f.size)
	mask := f.topMask()
	for {
		stream.Squeeze(buf)
		buf[0] &= mask
		x := new(big.Int).SetBytes(buf)
		if x.Cmp(f.modulus) < 0 {
			return x
		}
	}
}

// SqueezeElement draws a field challenge through a pattern-gated
// transcript. It squeezes exactly ChallengeLen bytes and reduces, trading
// the exact uniformity of Sample for a fixed, declarable length; the 128
// bits of slack keep the bias below 2^-128. The domain separator entry must
// declare ChallengeLen bytes.
func (f *Field) SqueezeElement(t Transcript) (*big.Int, error) {
	buf := make([]byte, f.ChallengeLen())
	if err := t.Squeeze(buf); err != nil {
		return nil, err
	}
	x := new(big.Int).SetBytes(buf)
	return x.Mod(x, f.modulus), nil
}

// AbsorbElement absorbs the canonical encoding of x.
func (f *Field) AbsorbElement(t Transcript, x *big.Int) error {
	b, err := f.Encode(x)
	if err != nil {
		return err
	}
	return t.Absorb(b)
}
