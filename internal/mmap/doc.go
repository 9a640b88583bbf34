// Package mmap provides read-only memory-mapped file access.
//
// Flux capture images are read with many small, scattered track reads
// plus one sequential pass for checksum verification. Mapping the image
// once avoids a syscall per read and lets the kernel manage residency.
//
//	m, err := mmap.Open("disk.scp")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy view, valid until Close
//
// On Unix the package uses mmap(2) and madvise(2) via golang.org/x/sys;
// on Windows it uses CreateFileMapping/MapViewOfFile and access hints
// are no-ops.
package mmap
