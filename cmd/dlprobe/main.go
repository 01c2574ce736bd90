package main

import (
	"fmt"
	"os"

	"github.com/lorelang/native/cmd/dlprobe/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "open":
		err = commands.Open(args)
	case "sym":
		err = commands.Sym(args)
	case "call":
		err = commands.Call(args)
	case "probe":
		err = commands.Probe(args)
	case "repl":
		err = commands.Repl(args)
	case "version", "-v", "--version":
		fmt.Printf("dlprobe version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dlprobe - inspect and exercise shared libraries through the native bridge

Usage:
  dlprobe <command> [arguments]

Commands:
  open [-exact] <path>...                 load each library and report
  sym [-exact] <path> <name>...           resolve symbols in a library
  call [-exact] <path> <sym> <ret> [arg...]
                                          invoke a symbol; args are kind:value
                                          pairs (u8 u16 u32 u64 f32 f64 size
                                          str ptr), ret is a kind name or void
  probe [manifest]                        run the probe plan in dlprobe.toml
  repl [-exact] <path>                    interactive resolve/call loop
  version                                 print version
  help                                    print this help`)
}
