package ir

import "math"

// FloatToBF16Bits converts a 32-bit float to the 16-bit brain-float
// bit pattern using round-to-nearest-even. NaN inputs stay NaN (the
// quiet bit is forced so truncation cannot produce an infinity
// pattern). This is the reference semantics of the fused
// wide-float-to-narrow-as-integer conversion.
func FloatToBF16Bits(f float32) uint16 {
	bits := math.Float32bits(f)
	if f != f {
		return uint16(bits>>16) | 0x0040
	}
	// Round to nearest even on the truncated 16 bits.
	rounded := bits + 0x7fff + ((bits >> 16) & 1)
	return uint16(rounded >> 16)
}

// BF16BitsToFloat widens a brain-float bit pattern to a 32-bit float.
// The conversion is exact: every bf16 value is representable in f32.
func BF16BitsToFloat(b uint16) float32 {
	return math.Float32frombits(uint32(b) << 16)
}
