// Package trace reads, writes, generates and replays allocator workloads in
// the classic malloc-lab text format:
//
//	<suggested heap size>
//	<number of ids>
//	<number of ops>
//	<weight>
//	a <id> <size>
//	r <id> <size>
//	f <id>
//
// Replay drives an alloc.Heap through a trace, stamping every payload with an
// id-derived byte pattern and verifying it before the block is freed or
// moved, so a replay doubles as an integrity test.
package trace
