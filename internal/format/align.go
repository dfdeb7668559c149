package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// Align8U32 returns n aligned up to the next 8-byte boundary.
// uint32 version for tag arithmetic.
func Align8U32(n uint32) uint32 {
	return (n + AlignmentMask) &^ AlignmentMask
}

// AlignPage returns n aligned up to the next 4KB boundary.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n int) int {
	return (n + PageMask) &^ PageMask
}

// IsAligned reports whether n sits on an 8-byte boundary.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}

// EvenWords rounds a word count up to an even number so the resulting byte
// count keeps double-word alignment.
func EvenWords(words int) int {
	return words + words&1
}

// AdjustedSize converts a payload request into a block size: the request plus
// header and footer, rounded up to the alignment.
//
// Example:
//
//	AdjustedSize(1)  = 16
//	AdjustedSize(8)  = 16
//	AdjustedSize(9)  = 24
//	AdjustedSize(64) = 72
func AdjustedSize(n int) int {
	return Align8(n + DoubleWord)
}
