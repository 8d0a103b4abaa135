// Package spongefish implements the Fiat-Shamir transform over a duplex
// sponge: interactive public-coin protocols are made non-interactive by
// deriving every verifier challenge from a running hash of the interaction
// so far.
//
// A protocol first declares its exact shape as a DomainSeparator: the ordered
// list of absorb and squeeze operations it will perform, each with a length
// and a label. The separator is compiled into the initial state of a duplex
// sponge, so two protocols with different separators produce unrelated
// challenge streams. At runtime a Safe engine checks every absorb/squeeze
// call against the declared pattern and fails the transcript on the first
// divergence.
//
// Two roles drive the engine. Arthur is the prover: it absorbs protocol
// messages, squeezes challenges, and may draw private randomness from a
// second, secretly seeded sponge mixed with OS entropy. Merlin is the
// verifier: it replays the same pattern against the byte transcript received
// from the prover and recomputes every challenge from public data alone.
//
// Sponges are generic over the alphabet they operate on. The keccak
// subpackage provides a byte-alphabet sponge built on the Keccak-f[1600]
// permutation; the poseidon2 subpackage provides a sponge native to the
// BN254 scalar field. The codec subpackage converts field and group elements
// to and from transcript bytes, with uniform challenge extraction.
package spongefish

import (
	"github.com/blang/semver/v4"
)

// Version of the library and of the domain-separator envelope format.
var Version = semver.MustParse("0.1.0")
