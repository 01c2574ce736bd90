package native

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/ebitengine/purego"
)

// Func is one resolved entry point of a Library. It holds a share of
// the Library it came from and is valid exactly as long as that Library
// stays loaded; dropping a Func never unloads anything by itself.
type Func struct {
	addr uintptr
	lib  *Library
	name string

	mu    sync.Mutex
	calls map[string]reflect.Value // trampolines, keyed by signature
}

// Resolve looks name up in the open image and returns a callable
// binding sharing ownership of l. The image was opened with eager
// symbol binding, so resolution is a pure lookup into an already
// validated image. Resolving through an unloaded Library panics.
func (l *Library) Resolve(name string) (*Func, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.mustLoaded()
	addr, err := dlSym(l.handle, name)
	if err != nil {
		return nil, &CantLoadSymbolError{Name: name, Detail: err.Error()}
	}
	return &Func{addr: addr, lib: l, name: name}, nil
}

// MustResolve is Resolve for symbols the host cannot run without. It is
// the shape used when binding a fixed symbol table at startup.
func (l *Library) MustResolve(name string) *Func {
	f, err := l.Resolve(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the symbol name the binding was resolved with.
func (f *Func) Name() string { return f.name }

// Addr returns the raw entry-point address. Exposed for diagnostics;
// calls go through Call.
func (f *Func) Addr() uintptr { return f.addr }

// Library returns the library the binding was resolved from.
func (f *Func) Library() *Library { return f.lib }

// maxCallArgs is the positional-argument limit of the underlying
// purego trampolines.
const maxCallArgs = 15

// signatureFor validates the (args, ret) pair against the kind table
// and builds the trampoline's Go function type plus its cache key.
// Mis-kinded use panics: the type-checking collaborator is responsible
// for never constructing such a call.
func signatureFor(ret Kind, args []Arg) (string, reflect.Type) {
	if !ret.valid() || !kinds[ret].ret {
		panic(fmt.Sprintf("native: %s is not a return kind", ret))
	}
	if len(args) > maxCallArgs {
		panic(fmt.Sprintf("native: %d arguments exceeds the call limit of %d", len(args), maxCallArgs))
	}

	key := make([]byte, 0, len(args)+1)
	key = append(key, byte(ret))
	in := make([]reflect.Type, len(args))
	for i, a := range args {
		if !a.kind.valid() || !kinds[a.kind].arg {
			panic(fmt.Sprintf("native: %s is not an argument kind", a.kind))
		}
		key = append(key, byte(a.kind))
		in[i] = kinds[a.kind].argType
	}

	var out []reflect.Type
	if ret != KindVoid {
		out = []reflect.Type{kinds[ret].retType}
	}
	return string(key), reflect.FuncOf(in, out, false)
}

// trampoline returns the registered call stub for one signature,
// building it on first use. purego generates the stub from the declared
// Go type, so each argument and the return land in the register class
// the C ABI assigns to their kind.
func (f *Func) trampoline(ret Kind, args []Arg) reflect.Value {
	key, fnType := signatureFor(ret, args)

	f.mu.Lock()
	defer f.mu.Unlock()
	if fn, ok := f.calls[key]; ok {
		return fn
	}

	fnPtr := reflect.New(fnType)
	purego.RegisterFunc(fnPtr.Interface(), f.addr)
	fn := fnPtr.Elem()
	if f.calls == nil {
		f.calls = make(map[string]reflect.Value)
	}
	f.calls[key] = fn
	return fn
}

// Call invokes the foreign function with the C calling convention,
// passing args positionally and decoding the result as ret. The owning
// Library's read lock is held for the whole call, so an explicit Unload
// on another goroutine blocks until the call returns, while calls
// through the same library run concurrently. Calling through an
// unloaded Library panics.
//
// The caller must match the foreign function's real signature: argument
// count, argument kinds, and return kind. A mismatch is undefined
// behavior at the call boundary; this layer provides mechanism, not
// signature verification. The foreign code runs with the full
// privileges of the process and to whatever completion it chooses.
func (f *Func) Call(ret Kind, args ...Arg) Value {
	fn := f.trampoline(ret, args)

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = a.reflectValue()
	}

	f.lib.mu.RLock()
	defer f.lib.mu.RUnlock()
	f.lib.mustLoaded()

	return decodeResult(ret, fn.Call(in))
}
