package spongefish

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Merlin is the verifier's transcript role. It replays the domain separator
// against the byte transcript received from the prover, absorbing each
// declared message from the wire and recomputing every challenge locally.
// It holds no secrets: a Merlin built from the same separator and the same
// bytes always behaves identically.
type Merlin[U any] struct {
	safe   *Safe[U]
	codec  UnitCodec[U]
	reader *bytes.Reader
}

// NewMerlin builds a verifier transcript for ds, replaying transcript.
func NewMerlin[U any](p Permutation[U], uc UnitCodec[U], ds DomainSeparator, transcript []byte) (*Merlin[U], error) {
	safe, err := NewSafe(p, ds)
	if err != nil {
		return nil, err
	}
	return &Merlin[U]{
		safe:   safe,
		codec:  uc,
		reader: bytes.NewReader(transcript),
	}, nil
}

// Absorb reads the next declared prover message from the transcript and
// feeds it to the sponge. It returns ErrTranscriptTruncated when the wire
// runs out before the message does, and ErrDecoding when the bytes are not
// a canonical unit encoding.
func (m *Merlin[U]) Absorb(units []U) error {
	if err := m.codec.ReadUnits(m.reader, units); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %d units requested", ErrTranscriptTruncated, len(units))
		}
		return err
	}
	return m.safe.Absorb(units)
}

// Squeeze recomputes challenge units from public data.
func (m *Merlin[U]) Squeeze(out []U) error {
	return m.safe.Squeeze(out)
}

// Ratchet performs a declared state ratchet.
func (m *Merlin[U]) Ratchet() error {
	return m.safe.Ratchet()
}

// Finish accepts the transcript only when the whole pattern has been
// consumed and no wire bytes remain. Skipping this check admits truncated
// or padded transcripts.
func (m *Merlin[U]) Finish() error {
	if err := m.safe.Finish(); err != nil {
		return err
	}
	if n := m.reader.Len(); n > 0 {
		return fmt.Errorf("%w: %d trailing transcript bytes", ErrProtocolMismatch, n)
	}
	return nil
}
