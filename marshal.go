package native

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// Kind enumerates the value shapes the bridge can carry across the
// C-ABI boundary. The set is closed: every kind has a fixed platform
// representation, an argument encoding, and (except void) a return
// decoding. Widening the set means adding a row to the kind table, not
// a runtime registration.
type Kind uint8

const (
	KindVoid Kind = iota // return-only
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindPtr
	KindSize
)

// kindInfo is one row of the marshaling table. argType and retType are
// the Go-side types the dispatcher's trampoline declares for the kind;
// pointer results come back as raw addresses rather than Go pointers,
// since they address foreign memory.
type kindInfo struct {
	name    string
	size    uintptr
	arg     bool // usable as an argument kind
	ret     bool // usable as a return kind
	argType reflect.Type
	retType reflect.Type
}

// kinds is the marshaling table, fixed at compile time.
var kinds = [...]kindInfo{
	KindVoid: {name: "void", ret: true},
	KindU8: {name: "u8", size: 1, arg: true, ret: true,
		argType: reflect.TypeOf(uint8(0)), retType: reflect.TypeOf(uint8(0))},
	KindU16: {name: "u16", size: 2, arg: true, ret: true,
		argType: reflect.TypeOf(uint16(0)), retType: reflect.TypeOf(uint16(0))},
	KindU32: {name: "u32", size: 4, arg: true, ret: true,
		argType: reflect.TypeOf(uint32(0)), retType: reflect.TypeOf(uint32(0))},
	KindU64: {name: "u64", size: 8, arg: true, ret: true,
		argType: reflect.TypeOf(uint64(0)), retType: reflect.TypeOf(uint64(0))},
	KindF32: {name: "f32", size: 4, arg: true, ret: true,
		argType: reflect.TypeOf(float32(0)), retType: reflect.TypeOf(float32(0))},
	KindF64: {name: "f64", size: 8, arg: true, ret: true,
		argType: reflect.TypeOf(float64(0)), retType: reflect.TypeOf(float64(0))},
	KindPtr: {name: "ptr", size: unsafe.Sizeof(uintptr(0)), arg: true, ret: true,
		argType: reflect.TypeOf(unsafe.Pointer(nil)), retType: reflect.TypeOf(uintptr(0))},
	KindSize: {name: "size", size: unsafe.Sizeof(uintptr(0)), arg: true, ret: true,
		argType: reflect.TypeOf(uintptr(0)), retType: reflect.TypeOf(uintptr(0))},
}

func (k Kind) valid() bool { return int(k) < len(kinds) }

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kinds[k].name
}

// Size returns the kind's width in bytes on the wire (0 for void).
func (k Kind) Size() uintptr {
	if !k.valid() {
		return 0
	}
	return kinds[k].size
}

// ParseKind maps the textual names used by tooling and manifests
// ("u8" ... "u64", "f32", "f64", "ptr", "size", "void") back to kinds.
func ParseKind(s string) (Kind, error) {
	for k, info := range kinds {
		if info.name == s {
			return Kind(k), nil
		}
	}
	return KindVoid, fmt.Errorf("unknown marshaling kind %q", s)
}

// Arg is one encoded actual of a pending foreign call: the value's
// machine-word representation tagged with its kind. Args are built by
// the per-kind encoders below, handed to Func.Call, and not retained.
type Arg struct {
	kind Kind
	word uintptr
	ptr  unsafe.Pointer // set for pointer args built from Go memory
}

// Kind returns the kind tag the argument was encoded with.
func (a Arg) Kind() Kind { return a.kind }

func (a Arg) String() string {
	return fmt.Sprintf("%s(%#x)", a.kind, uint64(a.word))
}

// Integer kinds widen into the argument word; the callee reads back its
// own width, which is what the C integer-promotion rules expect.

func U8(v uint8) Arg   { return Arg{kind: KindU8, word: uintptr(v)} }
func U16(v uint16) Arg { return Arg{kind: KindU16, word: uintptr(v)} }
func U32(v uint32) Arg { return Arg{kind: KindU32, word: uintptr(v)} }
func U64(v uint64) Arg { return Arg{kind: KindU64, word: uintptr(v)} }

// Float kinds travel as their IEEE-754 bit patterns; the dispatcher
// rebuilds the concrete float so the trampoline places it in the FP
// argument class, not the integer one.

func F32(v float32) Arg { return Arg{kind: KindF32, word: uintptr(math.Float32bits(v))} }
func F64(v float64) Arg { return Arg{kind: KindF64, word: uintptr(math.Float64bits(v))} }

// Ptr encodes a raw pointer argument. The pointee must stay alive until
// the call consuming the Arg has returned; the bridge does not root it.
func Ptr(p unsafe.Pointer) Arg { return Arg{kind: KindPtr, word: uintptr(p), ptr: p} }

// PtrAddr encodes a raw address as a pointer argument. Intended for
// NULL and for addresses that originated on the foreign side; Go
// pointers go through Ptr or Bytes.
func PtrAddr(addr uintptr) Arg { return Arg{kind: KindPtr, word: addr} }

// Size encodes a platform-width size_t argument.
func Size(v uint) Arg { return Arg{kind: KindSize, word: uintptr(v)} }

// Bytes encodes a pointer to the first byte of b. b must be non-empty
// and must outlive the call.
func Bytes(b []byte) Arg { return Ptr(unsafe.Pointer(&b[0])) }

// CString copies s into a NUL-terminated buffer and returns the buffer
// together with a pointer argument addressing it. The caller keeps the
// buffer reachable (runtime.KeepAlive) until the call has returned.
func CString(s string) ([]byte, Arg) {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf, Bytes(buf)
}

// reflectValue rebuilds the argument's concrete value for the
// trampoline, typed per the kind table's argType column.
func (a Arg) reflectValue() reflect.Value {
	switch a.kind {
	case KindU8:
		return reflect.ValueOf(uint8(a.word))
	case KindU16:
		return reflect.ValueOf(uint16(a.word))
	case KindU32:
		return reflect.ValueOf(uint32(a.word))
	case KindU64:
		return reflect.ValueOf(uint64(a.word))
	case KindF32:
		return reflect.ValueOf(math.Float32frombits(uint32(a.word)))
	case KindF64:
		return reflect.ValueOf(math.Float64frombits(uint64(a.word)))
	case KindPtr:
		if a.ptr != nil {
			return reflect.ValueOf(a.ptr)
		}
		return reflect.ValueOf(unsafe.Pointer(a.word))
	case KindSize:
		return reflect.ValueOf(a.word)
	}
	panic(fmt.Sprintf("native: %s is not an argument kind", a.kind))
}

// Value is a decoded foreign return. Accessors panic on a kind
// mismatch; reading a return slot as the wrong kind is the same
// contract violation as passing a mis-kinded argument, just caught
// earlier.
type Value struct {
	kind Kind
	bits uint64
}

// decodeResult turns the trampoline's results into a Value of kind ret.
// Integer, pointer, and size returns arrive as unsigned words; float
// returns are stored as their IEEE bit patterns.
func decodeResult(ret Kind, out []reflect.Value) Value {
	switch ret {
	case KindVoid:
		return Value{kind: KindVoid}
	case KindF32:
		return Value{kind: ret, bits: uint64(math.Float32bits(float32(out[0].Float())))}
	case KindF64:
		return Value{kind: ret, bits: math.Float64bits(out[0].Float())}
	default:
		return Value{kind: ret, bits: out[0].Uint()}
	}
}

// Kind returns the kind the value was decoded as.
func (v Value) Kind() Kind { return v.kind }

// IsVoid reports whether the call produced no value.
func (v Value) IsVoid() bool { return v.kind == KindVoid }

func (v Value) check(want Kind) {
	if v.kind != want {
		panic(fmt.Sprintf("native: value holds %s, read as %s", v.kind, want))
	}
}

func (v Value) U8() uint8   { v.check(KindU8); return uint8(v.bits) }
func (v Value) U16() uint16 { v.check(KindU16); return uint16(v.bits) }
func (v Value) U32() uint32 { v.check(KindU32); return uint32(v.bits) }
func (v Value) U64() uint64 { v.check(KindU64); return v.bits }

func (v Value) F32() float32 {
	v.check(KindF32)
	return math.Float32frombits(uint32(v.bits))
}

func (v Value) F64() float64 {
	v.check(KindF64)
	return math.Float64frombits(v.bits)
}

func (v Value) Ptr() unsafe.Pointer {
	v.check(KindPtr)
	return unsafe.Pointer(uintptr(v.bits))
}

func (v Value) Size() uint { v.check(KindSize); return uint(uintptr(v.bits)) }

// Any returns the decoded value as its natural Go type, or nil for
// void. Handy for diagnostics and tooling; typed accessors are the fast
// path.
func (v Value) Any() any {
	switch v.kind {
	case KindVoid:
		return nil
	case KindU8:
		return v.U8()
	case KindU16:
		return v.U16()
	case KindU32:
		return v.U32()
	case KindU64:
		return v.U64()
	case KindF32:
		return v.F32()
	case KindF64:
		return v.F64()
	case KindPtr:
		return v.Ptr()
	case KindSize:
		return v.Size()
	}
	return nil
}

func (v Value) String() string {
	if v.kind == KindVoid {
		return "void"
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.Any())
}
