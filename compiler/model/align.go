package model

import "golang.org/x/exp/constraints"

// AlignUp rounds n up to the next multiple of alignment. Used by the
// struct-body parser to compute member offsets and block sizes.
func AlignUp[T constraints.Integer](n, alignment T) T {
	if alignment <= 0 {
		return n
	}
	rem := n % alignment
	if rem == 0 {
		return n
	}
	return n + (alignment - rem)
}
