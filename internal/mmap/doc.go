// Package mmap maps stored-document files read-only into memory.
//
// LocalStore uses it so a loaded document is decoded straight from the page
// cache. Unix builds use mmap(2) and madvise(2); Windows uses MapViewOfFile and
// treats access hints as no-ops.
//
// The byte slice returned by Bytes is only valid until Close.
package mmap
