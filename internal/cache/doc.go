// Package cache defines the disk-backed store responsible for keeping one
// verified copy of every downloaded dataset file under a flat BaseDir/<name>
// layout. The store exposes read/write primitives with safe semantics (temp
// file + rename), hashes content at the write barrier so a corrupted download
// never replaces a good entry, and surfaces file info (size, modtime, digest)
// for higher layers to decide cache reuse. The fetch package depends on this
// package to resolve remote objects into local paths without duplicating
// filesystem logic.
package cache
