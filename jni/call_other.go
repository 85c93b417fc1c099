//go:build !darwin && !linux

package jni

func callSlot(fn uintptr, args ...uintptr) uintptr {
	return 0
}

const callsSupported = false
