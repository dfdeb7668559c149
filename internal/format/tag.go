package format

import "fmt"

// Tag is the decoded form of a boundary tag. Every block carries the same tag
// in its header word and its footer word.
type Tag struct {
	Size      uint32 // block size in bytes, header and footer included
	Allocated bool
}

// Pack encodes the tag as size|allocated. Size must already be aligned.
func (t Tag) Pack() uint32 {
	w := t.Size & SizeMask
	if t.Allocated {
		w |= AllocatedBit
	}
	return w
}

// Free reports whether the tag describes a free block.
func (t Tag) Free() bool { return !t.Allocated }

// String renders the tag for dumps and test failures.
func (t Tag) String() string {
	state := "free"
	if t.Allocated {
		state = "used"
	}
	return fmt.Sprintf("%d/%s", t.Size, state)
}

// UnpackTag decodes a packed tag word.
func UnpackTag(w uint32) Tag {
	return Tag{
		Size:      w & SizeMask,
		Allocated: w&AllocatedBit != 0,
	}
}

// ReadTag reads the tag word at off.
func ReadTag(b []byte, off int) Tag {
	return UnpackTag(ReadU32(b, off))
}

// PutTag writes t as a packed word at off.
func PutTag(b []byte, off int, t Tag) {
	PutU32(b, off, t.Pack())
}

// CheckedTag is ReadTag with bounds and alignment validation, for scans over
// heap images that may not have been written by this process.
func CheckedTag(b []byte, off int) (Tag, error) {
	if off < 0 || off+WordSize > len(b) {
		return Tag{}, fmt.Errorf("tag at %d: %w", off, ErrTruncated)
	}
	w := ReadU32(b, off)
	if w&(AlignmentMask&^AllocatedBit) != 0 {
		return Tag{}, fmt.Errorf("tag at %d (0x%08x): %w", off, w, ErrMisaligned)
	}
	return UnpackTag(w), nil
}
