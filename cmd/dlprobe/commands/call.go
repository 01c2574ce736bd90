package commands

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/lorelang/native"
)

// Call resolves one symbol and invokes it with command-line arguments.
//
// Arguments are kind:value pairs ("u32:5", "f64:1.5", "str:hello",
// "ptr:0"), the return is a kind name. dlprobe has no way to check the
// foreign signature; whoever types the command vouches for it, exactly
// as the runtime's type checker does for evaluated code.
func Call(args []string) error {
	exact, rest := splitExactFlag(args)
	if len(rest) < 3 {
		return fmt.Errorf("usage: dlprobe call [-exact] <path> <sym> <ret> [kind:value...]")
	}
	path, sym, retName := rest[0], rest[1], rest[2]

	ret, err := native.ParseKind(retName)
	if err != nil {
		return err
	}

	callArgs := make([]native.Arg, 0, len(rest)-3)
	var keep [][]byte
	for _, spec := range rest[3:] {
		arg, buf, err := parseCallArg(spec)
		if err != nil {
			return err
		}
		if buf != nil {
			keep = append(keep, buf)
		}
		callArgs = append(callArgs, arg)
	}

	lib, err := openLibrary(path, exact)
	if err != nil {
		return err
	}
	defer lib.Unload()

	f, err := lib.Resolve(sym)
	if err != nil {
		return err
	}

	v := f.Call(ret, callArgs...)
	runtime.KeepAlive(keep)

	logger.Info().Str("symbol", sym).Str("result", v.String()).Msg("called")
	fmt.Println(v)
	return nil
}

// parseCallArg decodes one kind:value pair. For "str" it returns the
// NUL-terminated backing buffer, which the caller must keep alive
// across the call.
func parseCallArg(spec string) (native.Arg, []byte, error) {
	kindName, value, ok := strings.Cut(spec, ":")
	if !ok {
		return native.Arg{}, nil, fmt.Errorf("argument %q is not a kind:value pair", spec)
	}

	if kindName == "str" {
		buf, arg := native.CString(value)
		return arg, buf, nil
	}

	kind, err := native.ParseKind(kindName)
	if err != nil {
		return native.Arg{}, nil, err
	}

	switch kind {
	case native.KindU8:
		n, err := strconv.ParseUint(value, 0, 8)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.U8(uint8(n)), nil, nil
	case native.KindU16:
		n, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.U16(uint16(n)), nil, nil
	case native.KindU32:
		n, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.U32(uint32(n)), nil, nil
	case native.KindU64:
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.U64(n), nil, nil
	case native.KindF32:
		x, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.F32(float32(x)), nil, nil
	case native.KindF64:
		x, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.F64(x), nil, nil
	case native.KindSize:
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.Size(uint(n)), nil, nil
	case native.KindPtr:
		// Raw addresses only; useful for NULL and for addresses printed
		// by an earlier call.
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return native.Arg{}, nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		return native.PtrAddr(uintptr(n)), nil, nil
	default:
		return native.Arg{}, nil, fmt.Errorf("%s is not an argument kind", kind)
	}
}
