//go:build darwin || linux

package jni

import "github.com/ebitengine/purego"

func callSlot(fn uintptr, args ...uintptr) uintptr {
	if fn == 0 {
		return 0
	}
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

const callsSupported = true
