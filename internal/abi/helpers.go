package abi

import "math"

// MaxLength is the largest length a u32 length prefix can carry.
const MaxLength = math.MaxUint32

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// IsNaN32 reports whether bits encode a NaN: all-ones exponent, non-zero mantissa.
func IsNaN32(bits uint32) bool {
	return bits&0x7f800000 == 0x7f800000 && bits&0x007fffff != 0
}

// IsNaN64 reports whether bits encode a NaN: all-ones exponent, non-zero mantissa.
func IsNaN64(bits uint64) bool {
	return bits&0x7ff0000000000000 == 0x7ff0000000000000 && bits&0x000fffffffffffff != 0
}
