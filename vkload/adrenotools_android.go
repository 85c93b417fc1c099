//go:build android

package vkload

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

type adrenotools struct {
	open uintptr // void* adrenotools_open_libvulkan(int, int, const char*, const char*, const char*, const char*, const char*, void**)
}

// OpenAdrenotools loads libadrenotools.so from the app's native library
// directory search path.
func OpenAdrenotools() (Injector, error) {
	h, err := purego.Dlopen("libadrenotools.so", purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open libadrenotools: %w", err)
	}
	sym, err := purego.Dlsym(h, "adrenotools_open_libvulkan")
	if err != nil {
		_ = purego.Dlclose(h)
		return nil, fmt.Errorf("resolve adrenotools_open_libvulkan: %w", err)
	}
	return &adrenotools{open: sym}, nil
}

func cstr(s string) []byte {
	if s == "" {
		return nil
	}
	return append([]byte(s), 0)
}

func cptr(b []byte) uintptr {
	if b == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

func (a *adrenotools) OpenLibvulkan(req InjectRequest) (Library, error) {
	tmp := cstr(req.TmpLibDir)
	hook := cstr(req.HookLibDir)
	dir := cstr(req.DriverDir)
	name := cstr(req.DriverName)
	redirect := cstr(req.FileRedirectDir)

	h, _, _ := purego.SyscallN(a.open,
		uintptr(purego.RTLD_NOW|purego.RTLD_LOCAL),
		uintptr(req.FeatureFlags),
		cptr(tmp), cptr(hook), cptr(dir), cptr(name), cptr(redirect),
		0)
	runtime.KeepAlive(tmp)
	runtime.KeepAlive(hook)
	runtime.KeepAlive(dir)
	runtime.KeepAlive(name)
	runtime.KeepAlive(redirect)

	if h == 0 {
		return nil, errors.New("adrenotools_open_libvulkan returned NULL")
	}
	return Adopt(h), nil
}
