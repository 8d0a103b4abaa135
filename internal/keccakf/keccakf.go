// Package keccakf implements the Keccak-f[1600] permutation and a duplex
// state built on it. The state wrapper satisfies the Permutation capability
// of the root package (structurally; this package has no dependencies).
//
// This is not SHA-3: no SHA-3 padding is applied, the permutation is used
// raw in a duplex construction by the packages above.
package keccakf

// Round constants for the iota step.
var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088, 0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// Rotation offsets for the rho step, in the (x,y) traversal order used by
// the pi step below.
var rotc = [24]int{
	1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14,
	27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44,
}

// Lane permutation for the pi step.
var piln = [24]int{
	10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4,
	15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1,
}

func rotl(x uint64, n int) uint64 {
	return x<<n | x>>(64-n)
}

// Permute applies the 24-round Keccak-f[1600] permutation to a in place.
func Permute(a *[25]uint64) {
	var bc [5]uint64
	for round := 0; round < 24; round++ {
		// theta
		for i := 0; i < 5; i++ {
			bc[i] = a[i] ^ a[i+5] ^ a[i+10] ^ a[i+15] ^ a[i+20]
		}
		for i := 0; i < 5; i++ {
			t := bc[(i+4)%5] ^ rotl(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				a[j+i] ^= t
			}
		}

		// rho and pi
		t := a[1]
		for i := 0; i < 24; i++ {
			j := piln[i]
			bc[0] = a[j]
			a[j] = rotl(t, rotc[i])
			t = bc[0]
		}

		// chi
		for j := 0; j < 25; j += 5 {
			for i := 0; i < 5; i++ {
				bc[i] = a[j+i]
			}
			for i := 0; i < 5; i++ {
				a[j+i] = bc[i] ^ (^bc[(i+1)%5] & bc[(i+2)%5])
			}
		}

		// iota
		a[0] ^= roundConstants[round]
	}
}

const (
	// Width is the Keccak-f[1600] state size in bytes.
	Width = 200
	// Rate matches the 64-byte capacity of the original spongefish duplex.
	Rate = 136
)

// State is the byte view of a Keccak-f[1600] duplex state: 25 lanes in
// little-endian order, rate region first.
type State struct {
	buf [Width]byte
}

func (s *State) Width() int { return Width }

func (s *State) Rate() int { return Rate }

func (s *State) State() []byte { return s.buf[:] }

// Initialize writes iv into the first 32 bytes of the capacity region.
func (s *State) Initialize(iv [32]byte) {
	copy(s.buf[Rate:Rate+32], iv[:])
}

func (s *State) Permute() {
	var lanes [25]uint64
	for i := range lanes {
		for j := 0; j < 8; j++ {
			lanes[i] |= uint64(s.buf[8*i+j]) << (8 * j)
		}
	}
	Permute(&lanes)
	for i, lane := range lanes {
		for j := 0; j < 8; j++ {
			s.buf[8*i+j] = byte(lane >> (8 * j))
		}
	}
}

func (s *State) Wipe() {
	for i := range s.buf {
		s.buf[i] = 0
	}
}
