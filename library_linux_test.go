//go:build linux

package native

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// openSystemLib opens a well-known soname through the platform linker,
// skipping the test on systems that do not ship it (musl, stripped
// containers).
func openSystemLib(t *testing.T, soname string) *Library {
	t.Helper()
	lib, err := OpenExact(soname)
	if err != nil {
		t.Skipf("%s not loadable: %v", soname, err)
	}
	t.Cleanup(lib.Unload)
	return lib
}

// findSystemLib returns a concrete on-disk path for a library, for the
// tests that need a real file rather than a soname.
func findSystemLib(t *testing.T, sonames ...string) string {
	t.Helper()
	for _, soname := range sonames {
		for _, pattern := range []string{
			filepath.Join("/lib", "*", soname),
			filepath.Join("/usr/lib", "*", soname),
			filepath.Join("/lib64", soname),
			filepath.Join("/usr/lib64", soname),
			filepath.Join("/usr/lib", soname),
		} {
			if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
				return matches[0]
			}
		}
	}
	t.Skipf("none of %v found on disk", sonames)
	return ""
}

func TestOpenSubstitutesExtension(t *testing.T) {
	real := findSystemLib(t, "libm.so.6", "libc.so.6")
	dir := t.TempDir()
	if err := os.Symlink(real, filepath.Join(dir, "sample.so")); err != nil {
		t.Fatal(err)
	}

	// The source-level module path carries its own extension; Open must
	// swap it for the platform suffix.
	lib, err := Open(filepath.Join(dir, "sample.lr"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer lib.Unload()

	if !lib.Loaded() {
		t.Error("library should report loaded after Open")
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.lr")
	_, err := Open(path)
	if err == nil {
		t.Fatal("Open of a nonexistent library should fail")
	}

	var le *CantLoadLibraryError
	if !errors.As(err, &le) {
		t.Fatalf("error type = %T, want *CantLoadLibraryError", err)
	}
	if le.Path != path {
		t.Errorf("Path = %q, want %q", le.Path, path)
	}
	// The diagnostic must name every attempted candidate.
	if !strings.Contains(le.Detail, "nope.so") {
		t.Errorf("Detail %q does not mention the attempted .so candidate", le.Detail)
	}
}

func TestOpenCombinesCandidateDiagnostics(t *testing.T) {
	// On the two-suffix platform family both candidates are attempted
	// and a total failure must carry both diagnostics. Drive the
	// candidate loop with that family's suffix list directly.
	path := filepath.Join(t.TempDir(), "nope.lr")
	_, err := openCandidates(path, []string{".dylib", ".so"})
	if err == nil {
		t.Fatal("openCandidates of a nonexistent library should fail")
	}

	var le *CantLoadLibraryError
	if !errors.As(err, &le) {
		t.Fatalf("error type = %T, want *CantLoadLibraryError", err)
	}
	for _, candidate := range []string{"nope.dylib", "nope.so"} {
		if !strings.Contains(le.Detail, candidate) {
			t.Errorf("Detail %q does not mention attempted candidate %s", le.Detail, candidate)
		}
	}
}

func TestResolveMissingSymbol(t *testing.T) {
	lib := openSystemLib(t, "libc.so.6")

	_, err := lib.Resolve("missing")
	if err == nil {
		t.Fatal("Resolve of an absent symbol should fail")
	}

	var se *CantLoadSymbolError
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T, want *CantLoadSymbolError", err)
	}
	if se.Name != "missing" {
		t.Errorf("Name = %q, want %q", se.Name, "missing")
	}
}

func TestResolveThenCall(t *testing.T) {
	lib := openSystemLib(t, "libc.so.6")

	f, err := lib.Resolve("getpid")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if f.Name() != "getpid" {
		t.Errorf("Name() = %q, want getpid", f.Name())
	}
	if f.Addr() == 0 {
		t.Error("resolved binding has a zero address")
	}
	if f.Library() != lib {
		t.Error("binding does not share the library it was resolved from")
	}

	if got := f.Call(KindU32); got.U32() != uint32(os.Getpid()) {
		t.Errorf("getpid() = %d, want %d", got.U32(), os.Getpid())
	}
}

func TestUnloadIdempotent(t *testing.T) {
	lib := openSystemLib(t, "libc.so.6")

	lib.Unload()
	if lib.Loaded() {
		t.Fatal("library still reports loaded after Unload")
	}

	// The second unload must be a no-op, not a double dlclose.
	lib.Unload()
	if lib.Loaded() {
		t.Error("library reports loaded after second Unload")
	}
}

func TestUseAfterUnloadPanics(t *testing.T) {
	lib := openSystemLib(t, "libc.so.6")
	f := lib.MustResolve("getpid")
	lib.Unload()

	mustPanic(t, "Resolve", func() { _, _ = lib.Resolve("getpid") })
	mustPanic(t, "Call", func() { f.Call(KindU32) })
}

func TestMustResolvePanicsOnMissing(t *testing.T) {
	lib := openSystemLib(t, "libc.so.6")
	mustPanic(t, "MustResolve", func() { lib.MustResolve("missing") })
}
