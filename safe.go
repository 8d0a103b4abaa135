package spongefish

import (
	"fmt"

	"github.com/consensys/spongefish/logger"
)

// opRun is a maximal run of same-kind pattern entries. Adjacent absorbs (or
// squeezes) coalesce at compile time: what the state machine enforces is the
// total length per run, so callers may split one declared operation across
// several calls, or serve several declared operations with one call.
// Ratchets never coalesce.
type opRun struct {
	op     Op
	length int
	label  string // label of the run's first entry, for error reporting
}

// Safe wraps a duplex sponge and only lets operations through when they
// match the compiled domain separator. It is the security gate of the
// engine: any divergence between declared and executed operations kills the
// transcript permanently.
type Safe[U any] struct {
	sponge *DuplexSponge[U]

	runs      []opRun
	position  int
	remaining int // units left in runs[position]

	failed error // sticky; set by the first rejected operation
}

// NewSafe compiles ds and seeds a fresh sponge over p with the result.
func NewSafe[U any](p Permutation[U], ds DomainSeparator) (*Safe[U], error) {
	iv, err := ds.IV()
	if err != nil {
		return nil, err
	}
	sponge, err := NewDuplexSponge(p, iv)
	if err != nil {
		return nil, err
	}

	runs := compileRuns(ds)
	log := logger.Logger()
	log.Debug().Str("protocol", ds.protocol).Int("runs", len(runs)).Msg("transcript pattern compiled")

	s := &Safe[U]{sponge: sponge, runs: runs}
	if len(runs) > 0 {
		s.remaining = runs[0].length
	}
	return s, nil
}

func compileRuns(ds DomainSeparator) []opRun {
	var runs []opRun
	for _, e := range ds.entries {
		n := len(runs)
		if e.op != OpRatchet && n > 0 && runs[n-1].op == e.op {
			runs[n-1].length += e.length
			continue
		}
		runs = append(runs, opRun{op: e.op, length: e.length, label: e.label})
	}
	return runs
}

// request validates one operation against the cursor and consumes length
// units from the current run. It performs no sponge work.
func (s *Safe[U]) request(op Op, length int) error {
	if s.failed != nil {
		return s.failed
	}
	if s.position == len(s.runs) {
		return s.fail(op, length, "pattern exhausted")
	}
	run := s.runs[s.position]
	if run.op != op {
		return s.fail(op, length, fmt.Sprintf("expected %c %q", run.op, run.label))
	}
	if length > s.remaining {
		return s.fail(op, length, fmt.Sprintf("%q has %d units left", run.label, s.remaining))
	}
	s.remaining -= length
	if s.remaining == 0 {
		s.position++
		if s.position < len(s.runs) {
			s.remaining = s.runs[s.position].length
		}
	}
	return nil
}

func (s *Safe[U]) fail(op Op, length int, reason string) error {
	s.failed = fmt.Errorf("%w: %c(%d) at run %d: %s",
		ErrProtocolMismatch, op, length, s.position, reason)
	log := logger.Logger()
	log.Debug().Err(s.failed).Msg("transcript failed")
	return s.failed
}

// Absorb feeds units into the sponge if the pattern expects them here.
// Zero-length calls are accepted and do nothing.
func (s *Safe[U]) Absorb(units []U) error {
	if s.failed != nil {
		return s.failed
	}
	if len(units) == 0 {
		return nil
	}
	if err := s.request(OpAbsorb, len(units)); err != nil {
		return err
	}
	s.sponge.Absorb(units)
	return nil
}

// Squeeze fills out with challenge units if the pattern expects a squeeze
// here. Zero-length calls are accepted and do nothing.
func (s *Safe[U]) Squeeze(out []U) error {
	if s.failed != nil {
		return s.failed
	}
	if len(out) == 0 {
		return nil
	}
	if err := s.request(OpSqueeze, len(out)); err != nil {
		return err
	}
	s.sponge.Squeeze(out)
	return nil
}

// Ratchet permutes and zeroes the rate if the pattern declares a ratchet
// here. A ratchet run has length zero, so request-based splitting does not
// apply; the cursor must sit exactly on it.
func (s *Safe[U]) Ratchet() error {
	if s.failed != nil {
		return s.failed
	}
	if s.position == len(s.runs) {
		return s.fail(OpRatchet, 0, "pattern exhausted")
	}
	run := s.runs[s.position]
	if run.op != OpRatchet {
		return s.fail(OpRatchet, 0, fmt.Sprintf("expected %c %q", run.op, run.label))
	}
	s.position++
	if s.position < len(s.runs) {
		s.remaining = s.runs[s.position].length
	}
	s.sponge.Ratchet()
	return nil
}

// Finish reports whether the whole pattern has been consumed. Verifiers
// must call it before accepting a proof: stopping early would accept
// truncated transcripts.
func (s *Safe[U]) Finish() error {
	if s.failed != nil {
		return s.failed
	}
	if s.position != len(s.runs) {
		run := s.runs[s.position]
		return fmt.Errorf("%w: transcript incomplete, %d units of %c %q pending",
			ErrProtocolMismatch, s.remaining, run.op, run.label)
	}
	return nil
}

// Wipe destroys the sponge state.
func (s *Safe[U]) Wipe() {
	s.sponge.Wipe()
}
