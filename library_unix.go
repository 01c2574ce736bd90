//go:build darwin || linux || freebsd

package native

import "github.com/ebitengine/purego"

// dlOpen opens a shared-library image with eager symbol binding
// (RTLD_NOW), so missing dependencies surface at load time instead of
// at the first call into the image.
func dlOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// dlSym looks a symbol up in an open image.
func dlSym(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

// dlClose releases an image handle.
func dlClose(handle uintptr) error {
	return purego.Dlclose(handle)
}
