package spongefish

import "errors"

var (
	// ErrInvalidPattern is returned when a domain separator is malformed:
	// zero-length operations, reserved characters in a label, or a byte
	// string that does not parse back into a pattern.
	ErrInvalidPattern = errors.New("invalid domain separator")

	// ErrProtocolMismatch is returned when an absorb or squeeze call
	// disagrees with the compiled domain separator. The transcript is dead
	// after this error; every subsequent call returns it again.
	ErrProtocolMismatch = errors.New("operation does not match domain separator")

	// ErrTranscriptTruncated is returned by the verifier when the received
	// transcript holds fewer bytes than the domain separator demands.
	ErrTranscriptTruncated = errors.New("transcript shorter than domain separator demands")

	// ErrDecoding is returned when absorbed bytes do not represent a valid
	// element of the target algebraic structure.
	ErrDecoding = errors.New("bytes do not decode to a canonical element")

	// ErrEntropy is returned when the external entropy source fails. Proof
	// generation aborts; the engine never falls back to a weaker source.
	ErrEntropy = errors.New("entropy source failure")
)
