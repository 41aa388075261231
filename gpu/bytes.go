package gpu

import "unsafe"

// AsByteSlice views a single value as its raw bytes, for uniform
// buffer uploads.
func AsByteSlice[T any](value *T) []byte {
	var zeroT T

	n := unsafe.Sizeof(zeroT)
	ptr := (*byte)(unsafe.Pointer(value))

	return unsafe.Slice(ptr, n)
}
