// Package native is the Lore runtime's bridge to platform shared
// libraries. It loads library images on demand, resolves exported
// symbols into callable bindings, and performs dynamic foreign calls
// with C-ABI scalar marshaling. The host evaluator decides when a
// foreign call happens and what its signature is; this package supplies
// the mechanism and keeps it safe against concurrent unloading.
package native

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Library is a loaded shared-library image. A Library is shared by
// every Func resolved from it; the OS handle is released either by an
// explicit Unload or, failing that, by a finalizer once the last
// reference is dropped. Whichever path runs first performs the release,
// and the other becomes a no-op.
//
// Once unloaded, a Library and every Func derived from it are dead.
// Using them again is a contract violation on the caller's side and
// panics rather than returning an error: the OS resource is gone and
// there is nothing recoverable about dereferencing it.
type Library struct {
	mu     sync.RWMutex
	handle uintptr
	loaded bool
	path   string
}

// sharedLibSuffixes returns the conventional shared-library suffixes
// for the running platform, in probe order. macOS ships two
// conventions, so both are candidates there.
func sharedLibSuffixes() []string {
	switch runtime.GOOS {
	case "darwin", "ios":
		return []string{".dylib", ".so"}
	case "windows":
		return []string{".dll"}
	default:
		return []string{".so"}
	}
}

// Open loads the shared-library companion of path, substituting the
// platform's conventional suffixes for path's extension. Each candidate
// is attempted in order; if none opens, the returned
// *CantLoadLibraryError combines every attempt's OS diagnostic. Symbols
// bind eagerly, so a library with unresolvable dependencies fails here
// rather than at first call.
func Open(path string) (*Library, error) {
	return openCandidates(path, sharedLibSuffixes())
}

// openCandidates tries path with each suffix in order, collecting every
// attempt's diagnostic so a total failure reports them all.
func openCandidates(path string, suffixes []string) (*Library, error) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	var attempts []string
	for _, suffix := range suffixes {
		lib, err := OpenExact(stem + suffix)
		if err == nil {
			return lib, nil
		}
		var le *CantLoadLibraryError
		if errors.As(err, &le) {
			attempts = append(attempts, le.Detail)
		} else {
			attempts = append(attempts, err.Error())
		}
	}
	return nil, &CantLoadLibraryError{Path: path, Detail: strings.Join(attempts, "; ")}
}

// OpenExact loads the shared library at exactly path, with no suffix
// substitution. Use it for versioned sonames such as "libm.so.6" that
// the platform linker resolves through its own search path.
func OpenExact(path string) (*Library, error) {
	handle, err := dlOpen(path)
	if err != nil {
		return nil, &CantLoadLibraryError{Path: path, Detail: err.Error()}
	}
	lib := &Library{handle: handle, loaded: true, path: path}
	runtime.SetFinalizer(lib, (*Library).Unload)
	return lib, nil
}

// Path returns the path the library was opened with.
func (l *Library) Path() string { return l.path }

// Loaded reports whether the OS handle is still live.
func (l *Library) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Unload eagerly releases the OS handle. It is idempotent, and safe to
// call while other goroutines hold the Library or Funcs resolved from
// it: the release waits for in-flight calls and resolutions to drain
// before the image is closed. After Unload returns, any further use of
// the Library or its Funcs panics.
func (l *Library) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		return
	}
	l.loaded = false
	// dlclose failure leaves nothing actionable; the handle is
	// forgotten either way.
	_ = dlClose(l.handle)
	l.handle = 0
	runtime.SetFinalizer(l, nil)
}

// mustLoaded panics on use-after-unload. Callers hold l.mu in either
// mode, so the check is atomic with respect to Unload.
func (l *Library) mustLoaded() {
	if !l.loaded {
		panic("native: use of unloaded library " + l.path)
	}
}
