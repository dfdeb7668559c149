// Package heap provides the growable byte regions that back a heap allocator.
//
// A Region behaves like a program break: it starts empty, grows at its end
// through Sbrk, and never shrinks. Four flavours exist:
//
//   - NewMem: a plain []byte arena with a fixed capacity (portable, used by tests)
//   - Reserve: an anonymous mapping reserved up front whose pages are committed
//     as the break advances (linux and darwin; falls back to NewMem elsewhere)
//   - OpenFile: a file-backed shared mapping that grows by extending the file,
//     so a heap image survives the process and can be re-attached later
//   - OpenSnapshot: a read-only mapping of such an image for inspection;
//     its break is fixed and Sbrk fails with ErrReadOnly
//
// Regions are addressed by offset. Callers must re-read Bytes after every
// Sbrk: file-backed regions remap on growth and the base address may move.
//
// Regions are not safe for concurrent use.
package heap
