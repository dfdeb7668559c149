// Package format houses the low-level encoding of the boundary-tag heap
// layout: word sizes, alignment rules, and the packed size/flag tag stored at
// both ends of every block. Higher-level packages never touch raw tag bits
// directly; they go through Tag.
package format

const (
	// WordSize is the width of a header or footer tag in bytes.
	WordSize = 4

	// DoubleWord is the combined width of a header and a footer. It is also
	// the per-block overhead added to every request.
	DoubleWord = 2 * WordSize

	// Alignment is the required alignment of block sizes and payload offsets.
	Alignment = 8

	// AlignmentMask masks the low bits that must be zero in an aligned value.
	AlignmentMask = Alignment - 1

	// MinBlockSize is the smallest real block: header, footer and one aligned
	// payload unit.
	MinBlockSize = DoubleWord + Alignment

	// ChunkSize is the default heap extension (the initial slab and the
	// minimum growth on a find-fit miss).
	ChunkSize = 4096

	// PageSize is the granularity used when committing reserved memory and
	// when page-aligning dirty ranges.
	PageSize = 4096

	// PageMask masks the offset within a page.
	PageMask = PageSize - 1

	// AllocatedBit is the low bit of a packed tag.
	AllocatedBit = 0x1

	// SizeMask clears the flag bits of a packed tag.
	SizeMask = ^uint32(AlignmentMask)

	// MaxBlockSize is the largest size representable in a packed tag.
	MaxBlockSize = SizeMask
)

const (
	// BootstrapSize is the size of the initial sentinel region:
	// padding word, prologue header, prologue footer, epilogue header.
	BootstrapSize = 4 * WordSize

	// PrologueOffset is the block pointer of the prologue sentinel.
	PrologueOffset = 2 * WordSize

	// PrologueSize is the size of the prologue sentinel (header + footer).
	PrologueSize = DoubleWord

	// FirstBlockOffset is the block pointer of the first real block.
	FirstBlockOffset = PrologueOffset + PrologueSize
)
