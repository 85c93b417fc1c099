//go:build darwin || linux

package vkload

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

type dynamicLibrary struct {
	handle uintptr
}

// Open loads a shared library with RTLD_NOW|RTLD_LOCAL.
func Open(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &dynamicLibrary{handle: h}, nil
}

// Adopt wraps a handle returned by dlopen elsewhere (e.g. libadrenotools).
// The library takes ownership and closes it on Close.
func Adopt(handle uintptr) Library {
	return &dynamicLibrary{handle: handle}
}

func (l *dynamicLibrary) Symbol(name string) (uintptr, error) {
	if l.handle == 0 {
		return 0, ErrNotLoaded
	}
	sym, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return sym, nil
}

func (l *dynamicLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}

// callProcAddr calls a vkGet*ProcAddr function pointer.
func callProcAddr(fn, handle uintptr, name string) uintptr {
	if fn == 0 {
		return 0
	}
	cname := append([]byte(name), 0)
	r1, _, _ := purego.SyscallN(fn, handle, uintptr(unsafe.Pointer(&cname[0])))
	runtime.KeepAlive(cname)
	return r1
}
