//go:build android

package device

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

type systemProperties struct {
	get uintptr // int __system_property_get(const char* name, char* value)
}

// SystemProperties reads properties through libc's __system_property_get.
func SystemProperties() (Properties, error) {
	h, err := purego.Dlopen("libc.so", purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open libc: %w", err)
	}
	sym, err := purego.Dlsym(h, "__system_property_get")
	if err != nil {
		return nil, fmt.Errorf("resolve __system_property_get: %w", err)
	}
	return &systemProperties{get: sym}, nil
}

func (p *systemProperties) Get(key string) string {
	name := append([]byte(key), 0)
	var value [PropValueMax]byte
	n, _, _ := purego.SyscallN(p.get, uintptr(unsafe.Pointer(&name[0])), uintptr(unsafe.Pointer(&value[0])))
	runtime.KeepAlive(name)
	length := int(int32(n))
	if length <= 0 {
		return ""
	}
	if length > len(value) {
		length = len(value)
	}
	return string(value[:length])
}
