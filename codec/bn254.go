package codec

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/spongefish"
)

// Encoded widths of the BN254 types on the transcript wire.
const (
	SizeFr = fr.Bytes
	SizeG1 = bn254.SizeOfG1AffineCompressed
)

// EncodeFr returns the canonical big-endian encoding of e.
func EncodeFr(e *fr.Element) []byte {
	b := e.Bytes()
	return b[:]
}

// DecodeFr rejects non-canonical encodings instead of reducing them.
func DecodeFr(b []byte) (fr.Element, error) {
	var e fr.Element
	if len(b) != SizeFr {
		return e, fmt.Errorf("%w: got %d bytes, fr encodes to %d", spongefish.ErrDecoding, len(b), SizeFr)
	}
	if err := e.SetBytesCanonical(b); err != nil {
		return fr.Element{}, fmt.Errorf("%w: %s", spongefish.ErrDecoding, err)
	}
	return e, nil
}

// AbsorbFr absorbs the canonical encoding of e.
func AbsorbFr(t Transcript, e *fr.Element) error {
	return t.Absorb(EncodeFr(e))
}

// NextFr reads the next declared fr element from a verifier transcript.
func NextFr(t Transcript) (fr.Element, error) {
	buf := make([]byte, SizeFr)
	if err := t.Absorb(buf); err != nil {
		return fr.Element{}, err
	}
	return DecodeFr(buf)
}

// SqueezeFr derives one fr challenge. The domain separator entry must
// declare FrChallengeLen bytes.
func SqueezeFr(t Transcript) (fr.Element, error) {
	buf := make([]byte, FrChallengeLen)
	if err := t.Squeeze(buf); err != nil {
		return fr.Element{}, err
	}
	var e fr.Element
	e.SetBytes(buf)
	return e, nil
}

// FrChallengeLen is the squeeze length behind SqueezeFr.
const FrChallengeLen = SizeFr + wideSlack

// SampleFr draws a uniform fr element from an unbounded stream by rejection
// sampling, for prover-side blinding factors.
func SampleFr(stream Stream) fr.Element {
	f, _ := NewField(fr.Modulus())
	var e fr.Element
	e.SetBigInt(f.Sample(stream))
	return e
}

// EncodeG1 returns the compressed encoding of p.
func EncodeG1(p *bn254.G1Affine) []byte {
	b := p.Bytes()
	return b[:]
}

// DecodeG1 rejects encodings that are not points of the right subgroup.
func DecodeG1(b []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if len(b) != SizeG1 {
		return p, fmt.Errorf("%w: got %d bytes, compressed G1 encodes to %d", spongefish.ErrDecoding, len(b), SizeG1)
	}
	if _, err := p.SetBytes(b); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("%w: %s", spongefish.ErrDecoding, err)
	}
	return p, nil
}

// AbsorbG1 absorbs the compressed encoding of p.
func AbsorbG1(t Transcript, p *bn254.G1Affine) error {
	return t.Absorb(EncodeG1(p))
}

// NextG1 reads the next declared G1 point from a verifier transcript.
func NextG1(t Transcript) (bn254.G1Affine, error) {
	buf := make([]byte, SizeG1)
	if err := t.Absorb(buf); err != nil {
		return bn254.G1Affine{}, err
	}
	return DecodeG1(buf)
}
