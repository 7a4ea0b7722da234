//go:build wasip1

// Linear-memory helpers for the host.
//
// The host deposits byte buffers (gesture batches, font blobs) by calling
// pp_alloc and hands the address back through other calls. Go's GC owns
// linear memory, so every allocation is pinned in a registry keyed by its
// address until pp_free releases it.
package main

import "unsafe"

var allocs = map[uintptr][]byte{}

//go:wasmexport pp_alloc
func ppAlloc(length int32) int32 {
	if length <= 0 {
		return 0
	}
	buf := make([]byte, length)
	p := uintptr(unsafe.Pointer(&buf[0]))
	allocs[p] = buf
	return int32(p)
}

//go:wasmexport pp_free
func ppFree(ptr, length int32) {
	delete(allocs, uintptr(ptr))
}
