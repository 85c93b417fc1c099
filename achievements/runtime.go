package achievements

import "github.com/user-none/eblitui/android/jni"

// Env is the part of a JNI env used by this package. *jni.Env implements it.
type Env interface {
	FindClass(name string) (jni.Ref, error)
	NewGlobalRef(r jni.Ref) jni.Ref
	DeleteGlobalRef(r jni.Ref)
	DeleteLocalRef(r jni.Ref)
	GetMethodID(cls jni.Ref, name, sig string) (jni.MethodID, error)
	GetStaticMethodID(cls jni.Ref, name, sig string) (jni.MethodID, error)
	CallStaticVoidMethod(cls jni.Ref, m jni.MethodID, args ...jni.Value) error
	NewObject(cls jni.Ref, ctor jni.MethodID, args ...jni.Value) (jni.Ref, error)
	NewStringUTF(s string) (jni.Ref, error)
	NewObjectArray(n int32, cls jni.Ref) (jni.Ref, error)
	SetObjectArrayElement(arr jni.Ref, i int32, v jni.Ref) error
}

var _ Env = (*jni.Env)(nil)

// Runtime hands out an env for the calling goroutine.
type Runtime interface {
	// Attach returns an env bound to the current thread and a release func
	// that must be called when the env is no longer used.
	Attach() (Env, func(), error)
}

type vmRuntime struct {
	vm *jni.VM
}

// NewRuntime adapts a Java VM, attaching threads on demand.
func NewRuntime(vm *jni.VM) Runtime {
	return vmRuntime{vm: vm}
}

func (r vmRuntime) Attach() (Env, func(), error) {
	if r.vm == nil {
		return nil, nil, jni.ErrNilEnv
	}
	env, release, err := r.vm.Env()
	if err != nil {
		return nil, nil, err
	}
	return env, release, nil
}
