//go:build !darwin && !linux && !windows

package vkload

// Open is unsupported on this platform.
func Open(path string) (Library, error) {
	return nil, ErrUnsupported
}

// Adopt is unsupported on this platform; the returned library resolves
// nothing.
func Adopt(handle uintptr) Library {
	return nullLibrary{}
}

type nullLibrary struct{}

func (nullLibrary) Symbol(name string) (uintptr, error) { return 0, ErrUnsupported }
func (nullLibrary) Close() error                        { return nil }

func callProcAddr(fn, handle uintptr, name string) uintptr {
	return 0
}
