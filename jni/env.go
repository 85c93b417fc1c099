package jni

import (
	"fmt"
	"runtime"
	"unsafe"
)

// JNINativeInterface slot indices (offset / pointer size).
const (
	slotGetVersion            = 4
	slotFindClass             = 6
	slotExceptionClear        = 17
	slotNewGlobalRef          = 21
	slotDeleteGlobalRef       = 22
	slotDeleteLocalRef        = 23
	slotNewObjectA            = 30
	slotGetMethodID           = 33
	slotGetStaticMethodID     = 113
	slotCallStaticVoidMethodA = 143
	slotNewStringUTF          = 167
	slotGetStringUTFLength    = 168
	slotGetStringUTFChars     = 169
	slotReleaseStringUTFChars = 170
	slotNewObjectArray        = 172
	slotSetObjectArrayElement = 174
	slotGetJavaVM             = 219
	slotExceptionCheck        = 228
)

// Env wraps a JNIEnv*. An Env is only valid on the OS thread it was
// obtained on.
type Env struct {
	ptr uintptr
}

// EnvFromPointer wraps a JNIEnv* received from the Java runtime.
func EnvFromPointer(p uintptr) *Env {
	if p == 0 {
		return nil
	}
	return &Env{ptr: p}
}

// Pointer returns the underlying JNIEnv*.
func (e *Env) Pointer() uintptr {
	return e.ptr
}

func (e *Env) slot(index int) uintptr {
	table := *(*uintptr)(unsafe.Pointer(e.ptr))
	return *(*uintptr)(unsafe.Pointer(table + uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

func (e *Env) call(index int, args ...uintptr) uintptr {
	return callSlot(e.slot(index), append([]uintptr{e.ptr}, args...)...)
}

// GetVersion returns the JNI version implemented by the VM.
func (e *Env) GetVersion() int32 {
	return int32(e.call(slotGetVersion))
}

// FindClass looks up a class by its slash-separated binary name. A
// ClassNotFoundException raised by the lookup is cleared.
func (e *Env) FindClass(name string) (Ref, error) {
	cname := encodeModifiedUTF8(name)
	r := Ref(e.call(slotFindClass, bytesPtr(cname)))
	runtime.KeepAlive(cname)
	if r == 0 {
		e.clearPending()
		return 0, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	return r, nil
}

// ExceptionCheck reports whether a Java exception is pending.
func (e *Env) ExceptionCheck() bool {
	return e.call(slotExceptionCheck)&0xFF != 0
}

// ExceptionClear clears any pending Java exception.
func (e *Env) ExceptionClear() {
	e.call(slotExceptionClear)
}

func (e *Env) clearPending() bool {
	if e.ExceptionCheck() {
		e.ExceptionClear()
		return true
	}
	return false
}

// NewGlobalRef promotes a reference so it survives the current native frame.
func (e *Env) NewGlobalRef(r Ref) Ref {
	return Ref(e.call(slotNewGlobalRef, uintptr(r)))
}

// DeleteGlobalRef releases a global reference.
func (e *Env) DeleteGlobalRef(r Ref) {
	if r != 0 {
		e.call(slotDeleteGlobalRef, uintptr(r))
	}
}

// DeleteLocalRef releases a local reference.
func (e *Env) DeleteLocalRef(r Ref) {
	if r != 0 {
		e.call(slotDeleteLocalRef, uintptr(r))
	}
}

// GetMethodID resolves an instance method (or constructor, "<init>").
func (e *Env) GetMethodID(cls Ref, name, sig string) (MethodID, error) {
	return e.methodID(slotGetMethodID, cls, name, sig)
}

// GetStaticMethodID resolves a static method.
func (e *Env) GetStaticMethodID(cls Ref, name, sig string) (MethodID, error) {
	return e.methodID(slotGetStaticMethodID, cls, name, sig)
}

func (e *Env) methodID(index int, cls Ref, name, sig string) (MethodID, error) {
	cname := encodeModifiedUTF8(name)
	csig := encodeModifiedUTF8(sig)
	m := MethodID(e.call(index, uintptr(cls), bytesPtr(cname), bytesPtr(csig)))
	runtime.KeepAlive(cname)
	runtime.KeepAlive(csig)
	if m == 0 {
		e.clearPending()
		return 0, fmt.Errorf("%w: %s%s", ErrMethodNotFound, name, sig)
	}
	return m, nil
}

// CallStaticVoidMethod invokes a static void method with the given
// arguments. A Java exception thrown by the callee is cleared and reported
// as ErrJavaException.
func (e *Env) CallStaticVoidMethod(cls Ref, m MethodID, args ...Value) error {
	e.call(slotCallStaticVoidMethodA, uintptr(cls), uintptr(m), valuesPtr(args))
	runtime.KeepAlive(args)
	if e.clearPending() {
		return ErrJavaException
	}
	return nil
}

// NewObject constructs an object with the given constructor.
func (e *Env) NewObject(cls Ref, ctor MethodID, args ...Value) (Ref, error) {
	r := Ref(e.call(slotNewObjectA, uintptr(cls), uintptr(ctor), valuesPtr(args)))
	runtime.KeepAlive(args)
	if e.clearPending() {
		e.DeleteLocalRef(r)
		return 0, ErrJavaException
	}
	if r == 0 {
		return 0, ErrAllocation
	}
	return r, nil
}

// NewStringUTF creates a java.lang.String local reference.
func (e *Env) NewStringUTF(s string) (Ref, error) {
	cs := encodeModifiedUTF8(s)
	r := Ref(e.call(slotNewStringUTF, bytesPtr(cs)))
	runtime.KeepAlive(cs)
	if r == 0 {
		e.clearPending()
		return 0, ErrAllocation
	}
	return r, nil
}

// GetStringUTF copies a java.lang.String into a Go string. A null
// reference yields "".
func (e *Env) GetStringUTF(s Ref) string {
	if s == 0 {
		return ""
	}
	n := int(int32(e.call(slotGetStringUTFLength, uintptr(s))))
	chars := e.call(slotGetStringUTFChars, uintptr(s), 0)
	if chars == 0 {
		e.clearPending()
		return ""
	}
	defer e.call(slotReleaseStringUTFChars, uintptr(s), chars)
	if n <= 0 {
		return ""
	}
	return decodeModifiedUTF8(unsafe.Slice((*byte)(unsafe.Pointer(chars)), n))
}

// NewObjectArray allocates an array of length n with elements of class cls,
// all initialized to null.
func (e *Env) NewObjectArray(n int32, cls Ref) (Ref, error) {
	r := Ref(e.call(slotNewObjectArray, uintptr(n), uintptr(cls), 0))
	if r == 0 {
		e.clearPending()
		return 0, ErrAllocation
	}
	return r, nil
}

// SetObjectArrayElement stores v at index i of arr.
func (e *Env) SetObjectArrayElement(arr Ref, i int32, v Ref) error {
	e.call(slotSetObjectArrayElement, uintptr(arr), uintptr(i), uintptr(v))
	if e.clearPending() {
		return ErrJavaException
	}
	return nil
}

// GetJavaVM returns the VM this env belongs to.
func (e *Env) GetJavaVM() (*VM, error) {
	var vm uintptr
	code := int32(e.call(slotGetJavaVM, uintptr(unsafe.Pointer(&vm))))
	if err := resultError(code); err != nil {
		return nil, fmt.Errorf("get java vm: %w", err)
	}
	if vm == 0 {
		return nil, fmt.Errorf("get java vm: %w", ErrDetached)
	}
	return &VM{ptr: vm}, nil
}

func bytesPtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

func valuesPtr(v []Value) uintptr {
	if len(v) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&v[0]))
}
