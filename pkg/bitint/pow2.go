// SPDX-License-Identifier: MIT

/*
Package bitint provides the small power-of-2 helpers used when sizing
analysis frames. The real FFT backends require a power-of-2 length, and the
command line accepts arbitrary integers, so user input is either validated
with IsPowerOfTwo or rounded up with NextPowerOfTwo.

Usage:

	// Round a requested frame length up to something the FFT accepts
	frameLength := bitint.NextPowerOfTwo(2000) // Returns 2048

	// Reject a frame length from a config file
	if !bitint.IsPowerOfTwo(frameLength) { ... }

----------------------------------------------------------------------

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of 2 map onto themselves:

	size = 8:  bits.Len(7) = 3, 1 << 3 = 8
	size = 9:  bits.Len(8) = 4, 1 << 4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Non-positive sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
