//go:build android

package logging

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

type liblog struct {
	write uintptr // int __android_log_write(int prio, const char* tag, const char* text)
}

func openLogcat() (LogWriter, error) {
	h, err := purego.Dlopen("liblog.so", purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open liblog: %w", err)
	}
	sym, err := purego.Dlsym(h, "__android_log_write")
	if err != nil {
		_ = purego.Dlclose(h)
		return nil, fmt.Errorf("resolve __android_log_write: %w", err)
	}
	return &liblog{write: sym}, nil
}

func (l *liblog) WriteLog(prio Priority, tag, msg string) error {
	ctag := append([]byte(tag), 0)
	cmsg := append([]byte(msg), 0)
	purego.SyscallN(l.write, uintptr(prio),
		uintptr(unsafe.Pointer(&ctag[0])), uintptr(unsafe.Pointer(&cmsg[0])))
	runtime.KeepAlive(ctag)
	runtime.KeepAlive(cmsg)
	return nil
}
