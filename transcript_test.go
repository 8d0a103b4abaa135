package spongefish_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/spongefish"
	"github.com/consensys/spongefish/keccak"
)

// constReader is a deterministic entropy source for tests.
type constReader byte

func (c constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

// brokenReader models a failing OS randomness source.
type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("rng unplugged")
}

func exampleSeparator() spongefish.DomainSeparator {
	return spongefish.NewDomainSeparator("example-protocol").
		Absorb(32, "commitment").
		Squeeze(16, "challenge").
		Absorb(8, "response")
}

func TestProverVerifierAgreement(t *testing.T) {
	assert := require.New(t)
	ds := exampleSeparator()

	arthur, err := keccak.NewArthur(ds)
	assert.NoError(err)
	defer arthur.Close()

	commitment := bytes.Repeat([]byte{0x42}, 32)
	assert.NoError(arthur.Absorb(commitment))
	proverChallenge := make([]byte, 16)
	assert.NoError(arthur.Squeeze(proverChallenge))
	response := []byte("resp-okay")[:8]
	assert.NoError(arthur.Absorb(response))

	proof, err := arthur.Transcript()
	assert.NoError(err)
	assert.Equal(append(append([]byte{}, commitment...), response...), proof)

	merlin, err := keccak.NewMerlin(ds, proof)
	assert.NoError(err)

	gotCommitment := make([]byte, 32)
	assert.NoError(merlin.Absorb(gotCommitment))
	assert.Equal(commitment, gotCommitment)

	verifierChallenge := make([]byte, 16)
	assert.NoError(merlin.Squeeze(verifierChallenge))
	assert.Equal(proverChallenge, verifierChallenge)

	gotResponse := make([]byte, 8)
	assert.NoError(merlin.Absorb(gotResponse))
	assert.Equal(response, gotResponse)

	assert.NoError(merlin.Finish())
}

func TestProverDeterminism(t *testing.T) {
	assert := require.New(t)
	ds := exampleSeparator()

	run := func() ([]byte, []byte, []byte) {
		arthur, err := keccak.NewArthur(ds,
			spongefish.WithSecretSeed([32]byte{7}),
			spongefish.WithEntropy(constReader(0xEE)),
		)
		assert.NoError(err)
		defer arthur.Close()

		assert.NoError(arthur.Absorb(make([]byte, 32)))
		challenge := make([]byte, 16)
		assert.NoError(arthur.Squeeze(challenge))
		private := make([]byte, 32)
		assert.NoError(arthur.PrivateBytes(private))
		assert.NoError(arthur.Absorb(make([]byte, 8)))

		proof, err := arthur.Transcript()
		assert.NoError(err)
		return challenge, private, proof
	}

	c1, p1, t1 := run()
	c2, p2, t2 := run()
	assert.Equal(c1, c2)
	assert.Equal(p1, p2)
	assert.Equal(t1, t2)
}

func TestPrivateRandomnessDependsOnEverySource(t *testing.T) {
	assert := require.New(t)
	ds := spongefish.NewDomainSeparator("rng-test").Absorb(4, "m")

	draw := func(seed byte, entropy byte, message byte) []byte {
		arthur, err := keccak.NewArthur(ds,
			spongefish.WithSecretSeed([32]byte{seed}),
			spongefish.WithEntropy(constReader(entropy)),
		)
		assert.NoError(err)
		defer arthur.Close()
		assert.NoError(arthur.Absorb([]byte{message, message, message, message}))
		out := make([]byte, 32)
		assert.NoError(arthur.PrivateBytes(out))
		return out
	}

	base := draw(1, 2, 3)
	assert.Equal(base, draw(1, 2, 3))
	assert.NotEqual(base, draw(9, 2, 3), "secret seed must matter")
	assert.NotEqual(base, draw(1, 9, 3), "entropy must matter")
	assert.NotEqual(base, draw(1, 2, 9), "transcript binding must matter")
}

func TestPrivateRandomnessIsNotInTranscript(t *testing.T) {
	assert := require.New(t)
	ds := spongefish.NewDomainSeparator("rng-test").Absorb(4, "m")

	arthur, err := keccak.NewArthur(ds)
	assert.NoError(err)
	defer arthur.Close()
	assert.NoError(arthur.Absorb([]byte{1, 2, 3, 4}))
	private := make([]byte, 32)
	assert.NoError(arthur.PrivateBytes(private))

	proof, err := arthur.Transcript()
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3, 4}, proof)
	assert.NotContains(string(proof), string(private))
}

func TestEntropyFailureIsFatal(t *testing.T) {
	ds := exampleSeparator()
	_, err := keccak.NewArthur(ds, spongefish.WithEntropy(brokenReader{}))
	require.ErrorIs(t, err, spongefish.ErrEntropy)

	// a failure after construction is fatal too
	arthur, err := keccak.NewArthur(ds, spongefish.WithEntropy(&oneShotReader{}))
	require.NoError(t, err)
	defer arthur.Close()
	require.ErrorIs(t, arthur.PrivateBytes(make([]byte, 16)), spongefish.ErrEntropy)
}

// oneShotReader serves the two construction-time draws, then dies.
type oneShotReader struct{ calls int }

func (r *oneShotReader) Read(p []byte) (int, error) {
	if r.calls >= 2 {
		return 0, errors.New("rng unplugged")
	}
	r.calls++
	for i := range p {
		p[i] = 0x55
	}
	return len(p), nil
}

func TestTruncatedTranscriptIsRejected(t *testing.T) {
	assert := require.New(t)
	ds := exampleSeparator()

	merlin, err := keccak.NewMerlin(ds, make([]byte, 31)) // pattern demands 40
	assert.NoError(err)
	assert.ErrorIs(merlin.Absorb(make([]byte, 32)), spongefish.ErrTranscriptTruncated)
}

func TestTrailingTranscriptBytesAreRejected(t *testing.T) {
	assert := require.New(t)
	ds := spongefish.NewDomainSeparator("short").Absorb(4, "m")

	merlin, err := keccak.NewMerlin(ds, make([]byte, 5))
	assert.NoError(err)
	assert.NoError(merlin.Absorb(make([]byte, 4)))
	assert.ErrorIs(merlin.Finish(), spongefish.ErrProtocolMismatch)
}

func TestVerifierRejectsOutOfOrderOperations(t *testing.T) {
	assert := require.New(t)
	ds := exampleSeparator()

	merlin, err := keccak.NewMerlin(ds, make([]byte, 40))
	assert.NoError(err)
	assert.ErrorIs(merlin.Squeeze(make([]byte, 16)), spongefish.ErrProtocolMismatch)
}

func TestDifferentSeparatorsDivergeImmediately(t *testing.T) {
	assert := require.New(t)

	challenge := func(protocol string) []byte {
		ds := spongefish.NewDomainSeparator(protocol).Absorb(32, "m").Squeeze(16, "c")
		arthur, err := keccak.NewArthur(ds)
		assert.NoError(err)
		defer arthur.Close()
		assert.NoError(arthur.Absorb(make([]byte, 32)))
		out := make([]byte, 16)
		assert.NoError(arthur.Squeeze(out))
		return out
	}

	assert.NotEqual(challenge("protocol-one"), challenge("protocol-two"))
}

func TestIndependentTranscriptsRunInParallel(t *testing.T) {
	assert := require.New(t)
	ds := exampleSeparator()

	// reference run
	wantChallenge := make([]byte, 16)
	{
		arthur, err := keccak.NewArthur(ds)
		assert.NoError(err)
		assert.NoError(arthur.Absorb(make([]byte, 32)))
		assert.NoError(arthur.Squeeze(wantChallenge))
		arthur.Close()
	}

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			arthur, err := keccak.NewArthur(ds)
			if err != nil {
				return err
			}
			defer arthur.Close()
			if err := arthur.Absorb(make([]byte, 32)); err != nil {
				return err
			}
			challenge := make([]byte, 16)
			if err := arthur.Squeeze(challenge); err != nil {
				return err
			}
			if !bytes.Equal(challenge, wantChallenge) {
				return fmt.Errorf("challenge diverged under concurrency")
			}
			return nil
		})
	}
	assert.NoError(g.Wait())
}

func TestCloseIsIdempotent(t *testing.T) {
	arthur, err := keccak.NewArthur(exampleSeparator())
	require.NoError(t, err)
	arthur.Close()
	arthur.Close()
}
