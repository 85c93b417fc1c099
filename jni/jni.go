// Package jni is a small binding to the Java Native Interface.
//
// It works on raw JavaVM* and JNIEnv* pointers handed to native code by the
// Java runtime (JNI_OnLoad, native method arguments) and calls the function
// tables behind them by slot index, so the packages built on top of it do
// not need cgo. Only the handful of functions the emulator glue needs are
// exposed.
package jni

import (
	"errors"
	"math"
)

// Versions and result codes from jni.h.
const (
	Version1_6 int32 = 0x00010006

	OK        int32 = 0
	Err       int32 = -1
	EDetached int32 = -2
	EVersion  int32 = -3
)

var (
	ErrClassNotFound  = errors.New("jni: class not found")
	ErrMethodNotFound = errors.New("jni: method not found")
	ErrJavaException  = errors.New("jni: java exception raised")
	ErrDetached       = errors.New("jni: thread not attached")
	ErrVersion        = errors.New("jni: version not supported")
	ErrAllocation     = errors.New("jni: allocation failed")
	ErrNilEnv         = errors.New("jni: nil env")
	ErrUnsupported    = errors.New("jni: foreign calls unsupported on this platform")
)

// Ref is a jobject (or jclass, jstring, jobjectArray) reference.
type Ref uintptr

// MethodID is a jmethodID.
type MethodID uintptr

// Value is a jvalue: a 64-bit union passed in argument arrays to the
// Call*MethodA and NewObjectA family.
type Value uint64

// Int encodes a jint.
func Int(v int32) Value { return Value(uint32(v)) }

// Long encodes a jlong.
func Long(v int64) Value { return Value(uint64(v)) }

// Bool encodes a jboolean.
func Bool(v bool) Value {
	if v {
		return 1
	}
	return 0
}

// Float encodes a jfloat. The float occupies the low 32 bits of the union
// on the little-endian targets Android runs on.
func Float(v float32) Value { return Value(math.Float32bits(v)) }

// Object encodes a jobject.
func Object(r Ref) Value { return Value(r) }

// resultError maps a JNI result code to an error.
func resultError(code int32) error {
	switch code {
	case OK:
		return nil
	case EDetached:
		return ErrDetached
	case EVersion:
		return ErrVersion
	default:
		return errors.New("jni: call failed")
	}
}
