package native

import "fmt"

// CantLoadLibraryError reports that no shared-library candidate derived
// from a path could be opened. Detail carries the loader's failure text
// for every attempted suffix, joined in attempt order.
type CantLoadLibraryError struct {
	Path   string
	Detail string
}

func (e *CantLoadLibraryError) Error() string {
	return fmt.Sprintf("cannot load library %s: %s", e.Path, e.Detail)
}

// CantLoadSymbolError reports that a library opened but does not export
// the requested symbol.
type CantLoadSymbolError struct {
	Name   string
	Detail string
}

func (e *CantLoadSymbolError) Error() string {
	return fmt.Sprintf("cannot load symbol %q: %s", e.Name, e.Detail)
}
