//go:build windows

package native

import "golang.org/x/sys/windows"

// dlOpen loads a DLL. LoadLibrary resolves the import table eagerly,
// matching the RTLD_NOW semantics of the unix loader.
func dlOpen(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

// dlSym looks a symbol up in a loaded module.
func dlSym(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

// dlClose releases a module handle.
func dlClose(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
