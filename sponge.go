package spongefish

import "errors"

// Permutation is the cryptographic core a duplex sponge is built from: a
// fixed-size buffer of units together with a pure permutation of that buffer.
// The first Rate() units form the rate region, the remaining
// Width()-Rate() units the capacity region. The capacity is never exposed
// through Squeeze and never overwritten by Absorb; only Permute and
// Initialize touch it.
type Permutation[U any] interface {
	// Width returns the total state size in units. Must exceed Rate.
	Width() int

	// Rate returns the number of externally visible units.
	Rate() int

	// State returns the live state buffer, rate region first. Callers
	// mutate the rate region through it; Permute must observe those
	// writes.
	State() []U

	// Initialize writes the 32-byte seed into the capacity region of an
	// all-zero state.
	Initialize(iv [32]byte)

	// Permute applies the permutation to the full state in place.
	Permute()

	// Wipe zeroes the full state.
	Wipe()
}

// DuplexSponge is a duplex sponge in overwrite mode: absorbed units
// overwrite the rate region directly instead of being XORed in. Absorb and
// squeeze calls may interleave arbitrarily; the permutation count depends
// only on the totals absorbed and squeezed, never on call boundaries, so
// splitting an input across calls leaves the output stream unchanged.
type DuplexSponge[U any] struct {
	permutation Permutation[U]
	absorbPos   int
	squeezePos  int
}

// NewDuplexSponge seeds p with iv and returns a sponge over it. The seed
// lands in the capacity region, so sponges with different seeds produce
// unrelated streams even for identical inputs.
func NewDuplexSponge[U any](p Permutation[U], iv [32]byte) (*DuplexSponge[U], error) {
	if p.Width() <= p.Rate() {
		return nil, errors.New("sponge capacity must be positive")
	}
	p.Initialize(iv)
	return &DuplexSponge[U]{
		permutation: p,
		absorbPos:   0,
		squeezePos:  p.Rate(),
	}, nil
}

// Absorb overwrites the rate region with input, permuting whenever the rate
// is full. A partial final block leaves the remaining rate units untouched;
// they are mixed by the next permutation. Absorbing resets the squeeze
// stream.
func (s *DuplexSponge[U]) Absorb(input []U) {
	s.squeezePos = s.permutation.Rate()

	rate := s.permutation.Rate()
	state := s.permutation.State()
	for len(input) > 0 {
		if s.absorbPos == rate {
			s.permutation.Permute()
			s.absorbPos = 0
			continue
		}
		n := min(len(input), rate-s.absorbPos)
		copy(state[s.absorbPos:s.absorbPos+n], input[:n])
		s.absorbPos += n
		input = input[n:]
	}
}

// Squeeze fills output from the rate region, permuting whenever the rate has
// been fully read. Consecutive squeezes continue one contiguous stream; the
// stream only restarts after an absorb.
func (s *DuplexSponge[U]) Squeeze(output []U) {
	if len(output) == 0 {
		return
	}
	s.absorbPos = 0

	rate := s.permutation.Rate()
	for len(output) > 0 {
		if s.squeezePos == rate {
			s.squeezePos = 0
			s.permutation.Permute()
		}
		n := min(len(output), rate-s.squeezePos)
		copy(output[:n], s.permutation.State()[s.squeezePos:s.squeezePos+n])
		s.squeezePos += n
		output = output[n:]
	}
}

// Ratchet permutes the state and zeroes the rate region. Recovering data
// absorbed before a ratchet requires inverting the permutation on the
// capacity alone, which gives forward secrecy to earlier transcript
// sections and compacts the state to its capacity.
func (s *DuplexSponge[U]) Ratchet() {
	s.permutation.Permute()
	state := s.permutation.State()
	var zero U
	for i := 0; i < s.permutation.Rate(); i++ {
		state[i] = zero
	}
	s.absorbPos = 0
	s.squeezePos = s.permutation.Rate()
}

// Wipe zeroes the full sponge state. The sponge is unusable afterwards.
func (s *DuplexSponge[U]) Wipe() {
	s.permutation.Wipe()
	s.absorbPos = 0
	s.squeezePos = s.permutation.Rate()
}

// Rate returns the rate of the underlying permutation.
func (s *DuplexSponge[U]) Rate() int { return s.permutation.Rate() }
