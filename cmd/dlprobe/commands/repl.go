package commands

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"

	"github.com/lorelang/native"
)

// Repl opens one library and reads resolve/call commands from a
// terminal until EOF or "quit".
func Repl(args []string) error {
	exact, rest := splitExactFlag(args)
	if len(rest) != 1 {
		return fmt.Errorf("usage: dlprobe repl [-exact] <path>")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("repl needs a terminal; use 'dlprobe call' in scripts")
	}

	lib, err := openLibrary(rest[0], exact)
	if err != nil {
		return err
	}
	defer lib.Unload()

	fmt.Printf("dlprobe repl on %s (sym <name> | call <sym> <ret> [kind:value...] | quit)\n", lib.Path())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "sym":
			if len(fields) != 2 {
				fmt.Println("usage: sym <name>")
				continue
			}
			f, err := lib.Resolve(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("%s at %#x\n", f.Name(), f.Addr())
		case "call":
			if len(fields) < 3 {
				fmt.Println("usage: call <sym> <ret> [kind:value...]")
				continue
			}
			if err := replCall(lib, fields[1], fields[2], fields[3:]); err != nil {
				fmt.Println(err)
			}
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func replCall(lib *native.Library, sym, retName string, argSpecs []string) error {
	ret, err := native.ParseKind(retName)
	if err != nil {
		return err
	}
	f, err := lib.Resolve(sym)
	if err != nil {
		return err
	}

	callArgs := make([]native.Arg, 0, len(argSpecs))
	var keep [][]byte
	for _, spec := range argSpecs {
		arg, buf, err := parseCallArg(spec)
		if err != nil {
			return err
		}
		if buf != nil {
			keep = append(keep, buf)
		}
		callArgs = append(callArgs, arg)
	}

	v := f.Call(ret, callArgs...)
	runtime.KeepAlive(keep)
	fmt.Println(v)
	return nil
}
