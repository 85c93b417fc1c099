package achievements

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/user-none/eblitui/android/jni"
)

// fakeEnv is an in-memory JNI env. References start well above the small
// integers used as primitive arguments so recorded calls can tell them
// apart.
type fakeEnv struct {
	mu sync.Mutex

	next    jni.Ref
	classes map[string]bool
	missing map[string]bool

	locals  map[jni.Ref]bool
	globals map[jni.Ref]bool
	strs    map[jni.Ref]string
	methods map[jni.MethodID]string
	objects map[jni.Ref][]any
	arrays  map[jni.Ref][]jni.Ref

	calls []fakeCall
	// deadCalls counts callbacks made on a class without a live global ref.
	deadCalls int

	throw       bool
	failStrings bool
	failArrays  bool
	failObjects bool
}

type fakeCall struct {
	method string
	args   []any
}

func newFakeEnv(classes ...string) *fakeEnv {
	e := &fakeEnv{
		next:    0x10000,
		classes: make(map[string]bool),
		missing: make(map[string]bool),
		locals:  make(map[jni.Ref]bool),
		globals: make(map[jni.Ref]bool),
		strs:    make(map[jni.Ref]string),
		methods: make(map[jni.MethodID]string),
		objects: make(map[jni.Ref][]any),
		arrays:  make(map[jni.Ref][]jni.Ref),
	}
	for _, c := range classes {
		e.classes[c] = true
	}
	return e
}

func (e *fakeEnv) alloc() jni.Ref {
	e.next += 0x10
	return e.next
}

func (e *fakeEnv) FindClass(name string) (jni.Ref, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.classes[name] {
		return 0, fmt.Errorf("%w: %s", jni.ErrClassNotFound, name)
	}
	r := e.alloc()
	e.locals[r] = true
	return r, nil
}

func (e *fakeEnv) NewGlobalRef(r jni.Ref) jni.Ref {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.alloc()
	e.globals[g] = true
	return g
}

func (e *fakeEnv) DeleteGlobalRef(r jni.Ref) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.globals, r)
}

func (e *fakeEnv) DeleteLocalRef(r jni.Ref) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locals, r)
}

func (e *fakeEnv) methodID(name, sig string) (jni.MethodID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.missing[name] {
		return 0, fmt.Errorf("%w: %s%s", jni.ErrMethodNotFound, name, sig)
	}
	id := jni.MethodID(e.alloc())
	e.methods[id] = name
	return id, nil
}

func (e *fakeEnv) GetMethodID(cls jni.Ref, name, sig string) (jni.MethodID, error) {
	return e.methodID(name, sig)
}

func (e *fakeEnv) GetStaticMethodID(cls jni.Ref, name, sig string) (jni.MethodID, error) {
	return e.methodID(name, sig)
}

// decode turns argument values back into strings where they reference a
// live string.
func (e *fakeEnv) decode(args []jni.Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if s, ok := e.strs[jni.Ref(a)]; ok && e.locals[jni.Ref(a)] {
			out[i] = s
			continue
		}
		out[i] = a
	}
	return out
}

func (e *fakeEnv) CallStaticVoidMethod(cls jni.Ref, m jni.MethodID, args ...jni.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.globals[cls] {
		e.deadCalls++
	}
	e.calls = append(e.calls, fakeCall{method: e.methods[m], args: e.decode(args)})
	if e.throw {
		return jni.ErrJavaException
	}
	return nil
}

func (e *fakeEnv) NewObject(cls jni.Ref, ctor jni.MethodID, args ...jni.Value) (jni.Ref, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failObjects {
		return 0, jni.ErrJavaException
	}
	r := e.alloc()
	e.locals[r] = true
	e.objects[r] = e.decode(args)
	return r, nil
}

func (e *fakeEnv) NewStringUTF(s string) (jni.Ref, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failStrings {
		return 0, jni.ErrAllocation
	}
	r := e.alloc()
	e.locals[r] = true
	e.strs[r] = s
	return r, nil
}

func (e *fakeEnv) NewObjectArray(n int32, cls jni.Ref) (jni.Ref, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failArrays && n > 0 {
		return 0, jni.ErrAllocation
	}
	r := e.alloc()
	e.locals[r] = true
	e.arrays[r] = make([]jni.Ref, n)
	return r, nil
}

func (e *fakeEnv) SetObjectArrayElement(arr jni.Ref, i int32, v jni.Ref) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	elems, ok := e.arrays[arr]
	if !ok || int(i) >= len(elems) {
		return errors.New("ArrayIndexOutOfBoundsException")
	}
	elems[i] = v
	return nil
}

func (e *fakeEnv) liveLocals() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.locals)
}

func (e *fakeEnv) liveGlobals() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.globals)
}

func (e *fakeEnv) recorded() []fakeCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]fakeCall(nil), e.calls...)
}

type fakeRuntime struct {
	env      *fakeEnv
	err      error
	attaches atomic.Int32
	releases atomic.Int32
}

func (r *fakeRuntime) Attach() (Env, func(), error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	r.attaches.Add(1)
	return r.env, func() { r.releases.Add(1) }, nil
}

type fakeClient struct {
	active    bool
	hardcore  bool
	game      bool
	title     string
	id        uint32
	presence  string
	loginErr  error
	initErr   error
	buckets   []Bucket
	listErr   error
	logins    []string
	logouts   int
	inits     int
	shutdowns []bool
}

func (c *fakeClient) IsActive() bool             { return c.active }
func (c *fakeClient) IsHardcoreModeActive() bool { return c.hardcore }
func (c *fakeClient) HasActiveGame() bool        { return c.game }
func (c *fakeClient) GameTitle() string          { return c.title }
func (c *fakeClient) GameID() uint32             { return c.id }
func (c *fakeClient) RichPresence() string       { return c.presence }
func (c *fakeClient) Logout()                    { c.logouts++ }

func (c *fakeClient) Login(username, password string) error {
	c.logins = append(c.logins, username+":"+password)
	return c.loginErr
}

func (c *fakeClient) Initialize() error {
	c.inits++
	if c.initErr == nil {
		c.active = true
	}
	return c.initErr
}

func (c *fakeClient) Shutdown(clearState bool) {
	c.shutdowns = append(c.shutdowns, clearState)
	c.active = false
}

func (c *fakeClient) AchievementList() ([]Bucket, error) {
	return c.buckets, c.listErr
}
