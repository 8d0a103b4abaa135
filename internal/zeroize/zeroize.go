// Package zeroize clears secret-bearing buffers.
package zeroize

import "runtime"

// Bytes zeroes b. The KeepAlive fence stops the compiler from eliding the
// stores when b is about to go out of scope.
func Bytes(b []byte) {
	if len(b) == 0 {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b[0])
}
