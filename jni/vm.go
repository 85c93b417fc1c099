package jni

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

// JNIInvokeInterface slot indices.
const (
	slotAttachCurrentThread = 4
	slotDetachCurrentThread = 5
	slotGetEnv              = 6
)

// VM wraps a JavaVM*. Unlike an Env it may be shared between threads.
type VM struct {
	ptr uintptr
}

// VMFromPointer wraps a JavaVM* received in JNI_OnLoad.
func VMFromPointer(p uintptr) *VM {
	if p == 0 {
		return nil
	}
	return &VM{ptr: p}
}

// Pointer returns the underlying JavaVM*.
func (vm *VM) Pointer() uintptr {
	return vm.ptr
}

func (vm *VM) call(index int, args ...uintptr) int32 {
	table := *(*uintptr)(unsafe.Pointer(vm.ptr))
	fn := *(*uintptr)(unsafe.Pointer(table + uintptr(index)*unsafe.Sizeof(uintptr(0))))
	return int32(callSlot(fn, append([]uintptr{vm.ptr}, args...)...))
}

// GetEnv returns the env of the calling OS thread. ErrDetached means the
// thread is not attached to the VM.
func (vm *VM) GetEnv(version int32) (*Env, error) {
	if !callsSupported {
		return nil, ErrUnsupported
	}
	var env uintptr
	code := vm.call(slotGetEnv, uintptr(unsafe.Pointer(&env)), uintptr(version))
	if err := resultError(code); err != nil {
		return nil, err
	}
	return &Env{ptr: env}, nil
}

// AttachCurrentThread attaches the calling OS thread to the VM.
func (vm *VM) AttachCurrentThread() (*Env, error) {
	if !callsSupported {
		return nil, ErrUnsupported
	}
	var env uintptr
	code := vm.call(slotAttachCurrentThread, uintptr(unsafe.Pointer(&env)), 0)
	if err := resultError(code); err != nil {
		return nil, fmt.Errorf("attach current thread: %w", err)
	}
	return &Env{ptr: env}, nil
}

// DetachCurrentThread detaches the calling OS thread from the VM.
func (vm *VM) DetachCurrentThread() error {
	if err := resultError(vm.call(slotDetachCurrentThread)); err != nil {
		return fmt.Errorf("detach current thread: %w", err)
	}
	return nil
}

// Env returns an env usable by the calling goroutine, attaching the
// current OS thread if needed. The goroutine stays locked to its OS thread
// until release is called; the env must not be used afterwards.
//
// Attached threads are never detached, so later calls on the same thread
// take the GetEnv fast path.
func (vm *VM) Env() (env *Env, release func(), err error) {
	runtime.LockOSThread()
	env, err = vm.GetEnv(Version1_6)
	if errors.Is(err, ErrDetached) {
		env, err = vm.AttachCurrentThread()
	}
	if err != nil {
		runtime.UnlockOSThread()
		return nil, nil, err
	}
	return env, runtime.UnlockOSThread, nil
}
