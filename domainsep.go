package spongefish

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// Op identifies one kind of sponge operation in a domain separator.
type Op byte

const (
	// OpAbsorb feeds prover data into the sponge.
	OpAbsorb Op = 'A'
	// OpSqueeze extracts verifier challenges from the sponge.
	OpSqueeze Op = 'S'
	// OpRatchet permutes and zeroes the rate, sealing the transcript so far.
	OpRatchet Op = 'R'
)

// opSeparator delimits entries in the serialized pattern. It is forbidden
// inside labels.
const opSeparator = byte(0)

type patternEntry struct {
	op     Op
	length int // units; zero only for OpRatchet
	label  string
}

// DomainSeparator declares the exact sequence of operations a protocol
// performs on its transcript, before any of them happen. It is an
// append-only value: Absorb, Squeeze and Ratchet return a new separator and
// leave the receiver unchanged, so a common prefix can be shared across
// related sub-protocols.
//
// Lengths count sponge units, not bytes: a separator is bound to one
// alphabet, and reusing it across alphabets with different unit widths
// produces incompatible transcripts by construction.
//
// Malformed declarations (zero lengths, reserved characters in labels) are
// program bugs, not runtime conditions. They are recorded on first
// occurrence and reported by Err, IV and Bytes; later appends are ignored.
type DomainSeparator struct {
	protocol string
	entries  []patternEntry
	err      error
}

// NewDomainSeparator starts a pattern for the named protocol. The protocol
// label seeds the sponge along with the entries, so transcripts of distinct
// protocols never collide even when their operation sequences agree.
func NewDomainSeparator(protocol string) DomainSeparator {
	ds := DomainSeparator{protocol: protocol}
	if err := validLabel(protocol); err != nil {
		ds.err = err
	}
	return ds
}

func validLabel(label string) error {
	if len(label) == 0 {
		return fmt.Errorf("%w: empty label", ErrInvalidPattern)
	}
	if bytes.IndexByte([]byte(label), opSeparator) >= 0 {
		return fmt.Errorf("%w: label %q contains the separator byte", ErrInvalidPattern, label)
	}
	if label[0] >= '0' && label[0] <= '9' {
		// would merge into the preceding length field when serialized
		return fmt.Errorf("%w: label %q starts with a digit", ErrInvalidPattern, label)
	}
	return nil
}

func (ds DomainSeparator) append(op Op, length int, label string) DomainSeparator {
	if ds.err != nil {
		return ds
	}
	out := DomainSeparator{
		protocol: ds.protocol,
		entries:  append(ds.entries[:len(ds.entries):len(ds.entries)], patternEntry{op, length, label}),
	}
	if op != OpRatchet && length <= 0 {
		out.err = fmt.Errorf("%w: %c %q declares non-positive length %d", ErrInvalidPattern, op, label, length)
		return out
	}
	if err := validLabel(label); err != nil {
		out.err = err
	}
	return out
}

// Absorb declares that the prover will feed length units labeled label.
func (ds DomainSeparator) Absorb(length int, label string) DomainSeparator {
	return ds.append(OpAbsorb, length, label)
}

// Squeeze declares that length units of verifier randomness will be drawn.
func (ds DomainSeparator) Squeeze(length int, label string) DomainSeparator {
	return ds.append(OpSqueeze, length, label)
}

// Ratchet declares a state ratchet at this point of the protocol.
func (ds DomainSeparator) Ratchet(label string) DomainSeparator {
	return ds.append(OpRatchet, 0, label)
}

// Err reports the first declaration error, if any.
func (ds DomainSeparator) Err() error { return ds.err }

// Bytes serializes the pattern: the protocol label followed by one
// NUL-prefixed entry per operation, each entry being the operation letter,
// the decimal length (omitted for ratchets) and the label. The encoding is
// injective given the label constraints, and is the exact string the sponge
// seed commits to.
func (ds DomainSeparator) Bytes() ([]byte, error) {
	if ds.err != nil {
		return nil, ds.err
	}
	if len(ds.entries) == 0 {
		return nil, fmt.Errorf("%w: no operations declared", ErrInvalidPattern)
	}
	var buf bytes.Buffer
	buf.WriteString(ds.protocol)
	for _, e := range ds.entries {
		buf.WriteByte(opSeparator)
		buf.WriteByte(byte(e.op))
		if e.op != OpRatchet {
			buf.WriteString(strconv.Itoa(e.length))
		}
		buf.WriteString(e.label)
	}
	return buf.Bytes(), nil
}

// IV compiles the pattern into the 32-byte sponge seed, the SHA3-256 digest
// of Bytes. This is a protocol constant: changing it breaks every transcript
// ever produced with this library.
func (ds DomainSeparator) IV() ([32]byte, error) {
	b, err := ds.Bytes()
	if err != nil {
		return [32]byte{}, err
	}
	return sha3.Sum256(b), nil
}

// ParseDomainSeparator is the inverse of Bytes.
func ParseDomainSeparator(data []byte) (DomainSeparator, error) {
	parts := bytes.Split(data, []byte{opSeparator})
	if len(parts) < 2 {
		return DomainSeparator{}, fmt.Errorf("%w: no operations declared", ErrInvalidPattern)
	}
	ds := NewDomainSeparator(string(parts[0]))
	for _, part := range parts[1:] {
		if len(part) < 2 {
			return DomainSeparator{}, fmt.Errorf("%w: truncated entry %q", ErrInvalidPattern, part)
		}
		op := Op(part[0])
		rest := part[1:]
		switch op {
		case OpRatchet:
			ds = ds.Ratchet(string(rest))
		case OpAbsorb, OpSqueeze:
			i := 0
			for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
				i++
			}
			length, err := strconv.Atoi(string(rest[:i]))
			if err != nil {
				return DomainSeparator{}, fmt.Errorf("%w: entry %q has no length", ErrInvalidPattern, part)
			}
			ds = ds.append(op, length, string(rest[i:]))
		default:
			return DomainSeparator{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidPattern, part[0])
		}
	}
	if ds.err != nil {
		return DomainSeparator{}, ds.err
	}
	return ds, nil
}

// dsEnvelope is the stored form of a domain separator. The version gates
// compatibility: envelopes written by a different major version are
// rejected rather than reinterpreted.
type dsEnvelope struct {
	Version string `cbor:"1,keyasint"`
	Pattern []byte `cbor:"2,keyasint"`
}

// MarshalBinary encodes the separator in a versioned CBOR envelope for
// storage or exchange between prover and verifier processes.
func (ds DomainSeparator) MarshalBinary() ([]byte, error) {
	pattern, err := ds.Bytes()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(dsEnvelope{
		Version: Version.String(),
		Pattern: pattern,
	})
}

// UnmarshalBinary decodes an envelope produced by MarshalBinary.
func (ds *DomainSeparator) UnmarshalBinary(data []byte) error {
	var env dsEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPattern, err)
	}
	v, err := semver.Parse(env.Version)
	if err != nil {
		return fmt.Errorf("%w: bad envelope version %q", ErrInvalidPattern, env.Version)
	}
	if v.Major != Version.Major {
		return fmt.Errorf("%w: envelope version %s is incompatible with %s", ErrInvalidPattern, v, Version)
	}
	parsed, err := ParseDomainSeparator(env.Pattern)
	if err != nil {
		return err
	}
	*ds = parsed
	return nil
}
