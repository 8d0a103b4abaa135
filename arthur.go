package spongefish

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/consensys/spongefish/internal/keccakf"
	"github.com/consensys/spongefish/internal/zeroize"
)

// rngDomain separates the prover's private sponge seed from the public one.
var rngDomain = []byte{0, 'p', 'r', 'o', 'v', 'e', 'r', '-', 'r', 'n', 'g'}

type arthurConfig struct {
	entropy io.Reader
	seed    *[32]byte
}

// ArthurOption configures a prover transcript.
type ArthurOption func(*arthurConfig)

// WithEntropy replaces the prover's entropy source, crypto/rand.Reader by
// default. Meant for deterministic tests and hierarchical derivation; a
// production prover should leave it alone.
func WithEntropy(r io.Reader) ArthurOption {
	return func(c *arthurConfig) { c.entropy = r }
}

// WithSecretSeed fixes the prover's private seed instead of drawing it from
// the entropy source.
func WithSecretSeed(seed [32]byte) ArthurOption {
	return func(c *arthurConfig) { c.seed = &seed }
}

// Arthur is the prover's transcript role. Besides driving the Safe engine it
// accumulates every absorbed message into the byte transcript sent to the
// verifier, and owns a private randomness channel: a second duplex sponge
// seeded with a secret seed, fed fresh OS entropy and every public message,
// so a weakness in any single source does not expose the derived randomness
// while the result stays bound to this proof instance.
//
// Close must run on every exit path; it wipes the secret seed and the
// private sponge.
type Arthur[U any] struct {
	safe  *Safe[U]
	codec UnitCodec[U]

	transcript bytes.Buffer

	seed    [32]byte
	entropy io.Reader
	rng     *DuplexSponge[byte]

	closed bool
}

// NewArthur builds a prover transcript for ds over the permutation p.
func NewArthur[U any](p Permutation[U], uc UnitCodec[U], ds DomainSeparator, opts ...ArthurOption) (*Arthur[U], error) {
	cfg := arthurConfig{entropy: rand.Reader}
	for _, opt := range opts {
		opt(&cfg)
	}

	safe, err := NewSafe(p, ds)
	if err != nil {
		return nil, err
	}

	a := &Arthur[U]{safe: safe, codec: uc, entropy: cfg.entropy}

	if cfg.seed != nil {
		a.seed = *cfg.seed
	} else if err := a.fillEntropy(a.seed[:]); err != nil {
		return nil, err
	}

	// The private sponge is seeded by the same pattern under a distinct
	// domain, then mixes in the secret seed and a first entropy draw.
	dsBytes, err := ds.Bytes()
	if err != nil {
		return nil, err
	}
	rngIV := sha3.Sum256(append(dsBytes, rngDomain...))
	a.rng, err = NewDuplexSponge[byte](&keccakf.State{}, rngIV)
	if err != nil {
		return nil, err
	}
	a.rng.Absorb(a.seed[:])

	var fresh [32]byte
	if err := a.fillEntropy(fresh[:]); err != nil {
		return nil, err
	}
	a.rng.Absorb(fresh[:])
	zeroize.Bytes(fresh[:])

	return a, nil
}

func (a *Arthur[U]) fillEntropy(buf []byte) error {
	if _, err := io.ReadFull(a.entropy, buf); err != nil {
		return fmt.Errorf("%w: %s", ErrEntropy, err)
	}
	return nil
}

// Absorb adds a prover message to the transcript: the units go into the
// public sponge, their canonical bytes into the outgoing transcript and
// into the private sponge.
func (a *Arthur[U]) Absorb(units []U) error {
	if err := a.safe.Absorb(units); err != nil {
		return err
	}
	mark := a.transcript.Len()
	if err := a.codec.WriteUnits(&a.transcript, units); err != nil {
		return err
	}
	a.rng.Absorb(a.transcript.Bytes()[mark:])
	return nil
}

// Squeeze draws verifier challenge units. Challenges are not written to the
// transcript; the verifier recomputes them.
func (a *Arthur[U]) Squeeze(out []U) error {
	return a.safe.Squeeze(out)
}

// Ratchet performs a declared state ratchet.
func (a *Arthur[U]) Ratchet() error {
	return a.safe.Ratchet()
}

// PrivateBytes fills buf with ephemeral prover randomness, suitable for
// blinding factors and commitment openings. Each draw mixes a fresh read
// from the entropy source into the private sponge before squeezing.
func (a *Arthur[U]) PrivateBytes(buf []byte) error {
	if a.closed {
		return errors.New("private randomness drawn after Close")
	}
	var fresh [32]byte
	if err := a.fillEntropy(fresh[:]); err != nil {
		return err
	}
	a.rng.Absorb(fresh[:])
	zeroize.Bytes(fresh[:])
	a.rng.Squeeze(buf)
	return nil
}

// Transcript checks that the declared pattern has been fully executed and
// returns the proof bytes to send to the verifier.
func (a *Arthur[U]) Transcript() ([]byte, error) {
	if err := a.safe.Finish(); err != nil {
		return nil, err
	}
	out := make([]byte, a.transcript.Len())
	copy(out, a.transcript.Bytes())
	return out, nil
}

// Close wipes the secret seed, the private sponge and the public sponge.
// Safe to call more than once and mandatory on every exit path, including
// aborts.
func (a *Arthur[U]) Close() {
	if a.closed {
		return
	}
	a.closed = true
	zeroize.Bytes(a.seed[:])
	a.rng.Wipe()
	a.safe.Wipe()
}
