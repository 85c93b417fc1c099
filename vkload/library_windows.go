//go:build windows

package vkload

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

type dynamicLibrary struct {
	handle windows.Handle
}

// Open loads a DLL.
func Open(path string) (Library, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &dynamicLibrary{handle: h}, nil
}

// Adopt wraps a module handle loaded elsewhere.
func Adopt(handle uintptr) Library {
	return &dynamicLibrary{handle: windows.Handle(handle)}
}

func (l *dynamicLibrary) Symbol(name string) (uintptr, error) {
	if l.handle == 0 {
		return 0, ErrNotLoaded
	}
	sym, err := windows.GetProcAddress(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return sym, nil
}

func (l *dynamicLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.FreeLibrary(l.handle)
	l.handle = 0
	return err
}

func callProcAddr(fn, handle uintptr, name string) uintptr {
	if fn == 0 {
		return 0
	}
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0
	}
	r1, _, _ := syscall.SyscallN(fn, handle, uintptr(unsafe.Pointer(cname)))
	return r1
}
