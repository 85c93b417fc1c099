//go:build darwin || (linux && (amd64 || arm64))

package jni

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime stands in for a Java VM: JNIEnv and JavaVM structs whose
// function tables point at Go callbacks. Callbacks are process-wide, so
// they dispatch to the runtime installed by newFakeRuntime.
type fakeRuntime struct {
	envTable [slotExceptionCheck + 1]uintptr
	vmTable  [slotGetEnv + 1]uintptr
	envObj   uintptr
	vmObj    uintptr

	calls   []int
	vmCalls []int
	pending bool

	classes map[string]Ref
	methods map[string]MethodID
	strs    map[Ref]string
	arrays  map[Ref][]Ref
	nextRef Ref

	args     []Value
	throw    bool
	fail     bool
	deleted  []Ref
	released []uintptr
	chars    [][]byte
	attached bool
}

var (
	current *fakeRuntime

	callbacksOnce sync.Once
	envCallbacks  map[int]uintptr
	vmCallbacks   map[int]uintptr
)

func cString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return decodeModifiedUTF8(unsafe.Slice(p, n))
}

func (f *fakeRuntime) env(slot int) *fakeRuntime {
	f.calls = append(f.calls, slot)
	return f
}

func (f *fakeRuntime) vm(slot int) *fakeRuntime {
	f.vmCalls = append(f.vmCalls, slot)
	return f
}

func (f *fakeRuntime) newRef() Ref {
	f.nextRef++
	return f.nextRef
}

func (f *fakeRuntime) lookupMethod(name, sig *byte) uintptr {
	if m, ok := f.methods[cString(name)+cString(sig)]; ok {
		return uintptr(m)
	}
	f.pending = true
	return 0
}

func buildCallbacks() {
	envCallbacks = map[int]uintptr{
		slotGetVersion: purego.NewCallback(func(env uintptr) uintptr {
			current.env(slotGetVersion)
			return uintptr(Version1_6)
		}),
		slotFindClass: purego.NewCallback(func(env uintptr, name *byte) uintptr {
			f := current.env(slotFindClass)
			if r, ok := f.classes[cString(name)]; ok {
				return uintptr(r)
			}
			f.pending = true
			return 0
		}),
		slotExceptionClear: purego.NewCallback(func(env uintptr) {
			current.env(slotExceptionClear).pending = false
		}),
		slotExceptionCheck: purego.NewCallback(func(env uintptr) uintptr {
			if current.env(slotExceptionCheck).pending {
				return 1
			}
			return 0
		}),
		slotNewGlobalRef: purego.NewCallback(func(env, ref uintptr) uintptr {
			current.env(slotNewGlobalRef)
			return ref | 0x10000
		}),
		slotDeleteGlobalRef: purego.NewCallback(func(env, ref uintptr) {
			f := current.env(slotDeleteGlobalRef)
			f.deleted = append(f.deleted, Ref(ref))
		}),
		slotDeleteLocalRef: purego.NewCallback(func(env, ref uintptr) {
			f := current.env(slotDeleteLocalRef)
			f.deleted = append(f.deleted, Ref(ref))
		}),
		slotNewObjectA: purego.NewCallback(func(env, cls, ctor uintptr, args *Value) uintptr {
			f := current.env(slotNewObjectA)
			if args != nil {
				f.args = append([]Value{}, unsafe.Slice(args, 1)...)
			}
			if f.fail {
				return 0
			}
			f.pending = f.throw
			return uintptr(f.newRef())
		}),
		slotGetMethodID: purego.NewCallback(func(env, cls uintptr, name, sig *byte) uintptr {
			return current.env(slotGetMethodID).lookupMethod(name, sig)
		}),
		slotGetStaticMethodID: purego.NewCallback(func(env, cls uintptr, name, sig *byte) uintptr {
			return current.env(slotGetStaticMethodID).lookupMethod(name, sig)
		}),
		slotCallStaticVoidMethodA: purego.NewCallback(func(env, cls, m uintptr, args *Value) {
			f := current.env(slotCallStaticVoidMethodA)
			f.args = nil
			if args != nil {
				f.args = append([]Value{}, unsafe.Slice(args, 2)...)
			}
			f.pending = f.throw
		}),
		slotNewStringUTF: purego.NewCallback(func(env uintptr, chars *byte) uintptr {
			f := current.env(slotNewStringUTF)
			if f.fail {
				return 0
			}
			r := f.newRef()
			f.strs[r] = cString(chars)
			return uintptr(r)
		}),
		slotGetStringUTFLength: purego.NewCallback(func(env, s uintptr) uintptr {
			f := current.env(slotGetStringUTFLength)
			return uintptr(len(encodeModifiedUTF8(f.strs[Ref(s)])) - 1)
		}),
		slotGetStringUTFChars: purego.NewCallback(func(env, s, isCopy uintptr) uintptr {
			f := current.env(slotGetStringUTFChars)
			b := encodeModifiedUTF8(f.strs[Ref(s)])
			f.chars = append(f.chars, b)
			return uintptr(unsafe.Pointer(&b[0]))
		}),
		slotReleaseStringUTFChars: purego.NewCallback(func(env, s, chars uintptr) {
			f := current.env(slotReleaseStringUTFChars)
			f.released = append(f.released, chars)
		}),
		slotNewObjectArray: purego.NewCallback(func(env, n, cls, init uintptr) uintptr {
			f := current.env(slotNewObjectArray)
			r := f.newRef()
			f.arrays[r] = make([]Ref, int32(n))
			return uintptr(r)
		}),
		slotSetObjectArrayElement: purego.NewCallback(func(env, arr, i, v uintptr) {
			f := current.env(slotSetObjectArrayElement)
			elems := f.arrays[Ref(arr)]
			idx := int32(i)
			if idx < 0 || int(idx) >= len(elems) {
				f.pending = true
				return
			}
			elems[idx] = Ref(v)
		}),
		slotGetJavaVM: purego.NewCallback(func(env uintptr, out *uintptr) uintptr {
			f := current.env(slotGetJavaVM)
			*out = uintptr(unsafe.Pointer(&f.vmObj))
			return uintptr(OK)
		}),
	}

	vmCallbacks = map[int]uintptr{
		slotAttachCurrentThread: purego.NewCallback(func(vm uintptr, penv *uintptr, args uintptr) uintptr {
			f := current.vm(slotAttachCurrentThread)
			f.attached = true
			*penv = uintptr(unsafe.Pointer(&f.envObj))
			return uintptr(OK)
		}),
		slotDetachCurrentThread: purego.NewCallback(func(vm uintptr) uintptr {
			current.vm(slotDetachCurrentThread).attached = false
			return uintptr(OK)
		}),
		slotGetEnv: purego.NewCallback(func(vm uintptr, penv *uintptr, version uintptr) uintptr {
			f := current.vm(slotGetEnv)
			if int32(version) != Version1_6 {
				code := EVersion
				return uintptr(uint32(code))
			}
			if !f.attached {
				code := EDetached
				return uintptr(uint32(code))
			}
			*penv = uintptr(unsafe.Pointer(&f.envObj))
			return uintptr(OK)
		}),
	}
}

func newFakeRuntime(t *testing.T) *fakeRuntime {
	t.Helper()
	callbacksOnce.Do(buildCallbacks)

	f := &fakeRuntime{
		classes: map[string]Ref{},
		methods: map[string]MethodID{},
		strs:    map[Ref]string{},
		arrays:  map[Ref][]Ref{},
		nextRef: 0x100,
	}
	for slot, cb := range envCallbacks {
		f.envTable[slot] = cb
	}
	for slot, cb := range vmCallbacks {
		f.vmTable[slot] = cb
	}
	f.envObj = uintptr(unsafe.Pointer(&f.envTable[0]))
	f.vmObj = uintptr(unsafe.Pointer(&f.vmTable[0]))

	current = f
	t.Cleanup(func() { current = nil })
	return f
}

func (f *fakeRuntime) Env() *Env {
	return EnvFromPointer(uintptr(unsafe.Pointer(&f.envObj)))
}

func (f *fakeRuntime) VM() *VM {
	return VMFromPointer(uintptr(unsafe.Pointer(&f.vmObj)))
}

func (f *fakeRuntime) reset() {
	f.calls = nil
	f.vmCalls = nil
}

func TestEnvGetVersion(t *testing.T) {
	f := newFakeRuntime(t)

	assert.Equal(t, Version1_6, f.Env().GetVersion())
	assert.Equal(t, []int{slotGetVersion}, f.calls)
}

func TestEnvFindClass(t *testing.T) {
	f := newFakeRuntime(t)
	f.classes["com/x/Y"] = 0x1234
	env := f.Env()

	cls, err := env.FindClass("com/x/Y")
	require.NoError(t, err)
	assert.Equal(t, Ref(0x1234), cls)
	assert.Equal(t, []int{slotFindClass}, f.calls)

	f.reset()
	_, err = env.FindClass("missing/Cls")
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.EqualError(t, err, "jni: class not found: missing/Cls")
	assert.Equal(t, []int{slotFindClass, slotExceptionCheck, slotExceptionClear}, f.calls)
	assert.False(t, f.pending, "ClassNotFoundException is cleared")
}

func TestEnvMethodIDs(t *testing.T) {
	f := newFakeRuntime(t)
	f.methods["showNotification(Ljava/lang/String;I)V"] = 0x51
	f.methods["<init>(I)V"] = 0x52
	env := f.Env()

	m, err := env.GetStaticMethodID(0x1234, "showNotification", "(Ljava/lang/String;I)V")
	require.NoError(t, err)
	assert.Equal(t, MethodID(0x51), m)

	ctor, err := env.GetMethodID(0x1234, "<init>", "(I)V")
	require.NoError(t, err)
	assert.Equal(t, MethodID(0x52), ctor)
	assert.Equal(t, []int{slotGetStaticMethodID, slotGetMethodID}, f.calls)

	f.reset()
	_, err = env.GetStaticMethodID(0x1234, "onMissing", "()V")
	assert.ErrorIs(t, err, ErrMethodNotFound)
	assert.ErrorContains(t, err, "onMissing()V")
	assert.Equal(t, []int{slotGetStaticMethodID, slotExceptionCheck, slotExceptionClear}, f.calls)
	assert.False(t, f.pending)
}

func TestEnvCallStaticVoidMethod(t *testing.T) {
	f := newFakeRuntime(t)
	env := f.Env()

	require.NoError(t, env.CallStaticVoidMethod(0x1234, 0x51, Object(0x77), Int(-3)))
	assert.Equal(t, []Value{Object(0x77), Int(-3)}, f.args)
	assert.Equal(t, []int{slotCallStaticVoidMethodA, slotExceptionCheck}, f.calls)

	f.reset()
	require.NoError(t, env.CallStaticVoidMethod(0x1234, 0x51))
	assert.Nil(t, f.args, "no arguments passes a null array")

	f.reset()
	f.throw = true
	assert.ErrorIs(t, env.CallStaticVoidMethod(0x1234, 0x51, Int(1), Int(2)), ErrJavaException)
	assert.Equal(t, []int{slotCallStaticVoidMethodA, slotExceptionCheck, slotExceptionClear}, f.calls)
	assert.False(t, f.pending)
}

func TestEnvNewObject(t *testing.T) {
	f := newFakeRuntime(t)
	env := f.Env()

	obj, err := env.NewObject(0x1234, 0x52, Int(7))
	require.NoError(t, err)
	assert.NotZero(t, obj)
	assert.Equal(t, []Value{Int(7)}, f.args)

	t.Run("constructor throws", func(t *testing.T) {
		f.throw = true
		defer func() { f.throw = false }()

		_, err := env.NewObject(0x1234, 0x52, Int(7))
		assert.ErrorIs(t, err, ErrJavaException)
		assert.Equal(t, []Ref{f.nextRef}, f.deleted, "partially built object is released")
		assert.False(t, f.pending)
	})

	t.Run("allocation fails", func(t *testing.T) {
		f.fail = true
		defer func() { f.fail = false }()

		_, err := env.NewObject(0x1234, 0x52, Int(7))
		assert.ErrorIs(t, err, ErrAllocation)
	})
}

func TestEnvStrings(t *testing.T) {
	f := newFakeRuntime(t)
	env := f.Env()

	const title = "Pokémon a\x00b 🏆"
	s, err := env.NewStringUTF(title)
	require.NoError(t, err)
	assert.Equal(t, title, f.strs[s], "string arrives as modified UTF-8")

	f.reset()
	assert.Equal(t, title, env.GetStringUTF(s))
	assert.Equal(t, []int{slotGetStringUTFLength, slotGetStringUTFChars, slotReleaseStringUTFChars}, f.calls)
	require.Len(t, f.released, 1)
	assert.Equal(t, uintptr(unsafe.Pointer(&f.chars[0][0])), f.released[0])

	f.reset()
	assert.Empty(t, env.GetStringUTF(0))
	assert.Empty(t, f.calls, "null string never reaches the VM")

	f.fail = true
	_, err = env.NewStringUTF("x")
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestEnvObjectArray(t *testing.T) {
	f := newFakeRuntime(t)
	env := f.Env()

	arr, err := env.NewObjectArray(2, 0x1234)
	require.NoError(t, err)
	require.NoError(t, env.SetObjectArrayElement(arr, 1, 0x55))
	assert.Equal(t, []Ref{0, 0x55}, f.arrays[arr])

	f.reset()
	assert.ErrorIs(t, env.SetObjectArrayElement(arr, 2, 0x56), ErrJavaException)
	assert.Equal(t, []int{slotSetObjectArrayElement, slotExceptionCheck, slotExceptionClear}, f.calls)
}

func TestEnvRefs(t *testing.T) {
	f := newFakeRuntime(t)
	env := f.Env()

	g := env.NewGlobalRef(0x42)
	assert.Equal(t, Ref(0x10042), g)

	env.DeleteGlobalRef(0)
	env.DeleteLocalRef(0)
	assert.Equal(t, []int{slotNewGlobalRef}, f.calls, "null refs are not released")

	env.DeleteGlobalRef(g)
	env.DeleteLocalRef(0x42)
	assert.Equal(t, []int{slotNewGlobalRef, slotDeleteGlobalRef, slotDeleteLocalRef}, f.calls)
	assert.Equal(t, []Ref{g, 0x42}, f.deleted)
}

func TestVMAttach(t *testing.T) {
	f := newFakeRuntime(t)

	vm, err := f.Env().GetJavaVM()
	require.NoError(t, err)
	assert.Equal(t, f.VM().Pointer(), vm.Pointer())

	_, err = vm.GetEnv(Version1_6)
	assert.ErrorIs(t, err, ErrDetached)
	_, err = vm.GetEnv(0x00010002)
	assert.ErrorIs(t, err, ErrVersion)

	f.reset()
	env, release, err := vm.Env()
	require.NoError(t, err)
	assert.Equal(t, f.Env().Pointer(), env.Pointer())
	release()
	assert.Equal(t, []int{slotGetEnv, slotAttachCurrentThread}, f.vmCalls)

	f.reset()
	_, release, err = vm.Env()
	require.NoError(t, err)
	release()
	assert.Equal(t, []int{slotGetEnv}, f.vmCalls, "attached thread takes the fast path")

	require.NoError(t, vm.DetachCurrentThread())
	_, err = vm.GetEnv(Version1_6)
	assert.ErrorIs(t, err, ErrDetached)
}
