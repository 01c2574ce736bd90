package commands

import "fmt"

// Sym resolves each named symbol in one library and reports addresses.
func Sym(args []string) error {
	exact, rest := splitExactFlag(args)
	if len(rest) < 2 {
		return fmt.Errorf("usage: dlprobe sym [-exact] <path> <name>...")
	}
	path, names := rest[0], rest[1:]

	lib, err := openLibrary(path, exact)
	if err != nil {
		return err
	}
	defer lib.Unload()

	var missing int
	for _, name := range names {
		f, err := lib.Resolve(name)
		if err != nil {
			logger.Error().Str("symbol", name).Err(err).Msg("resolve failed")
			missing++
			continue
		}
		logger.Info().Str("symbol", f.Name()).Str("addr", fmt.Sprintf("%#x", f.Addr())).Msg("resolved")
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d symbols missing from %s", missing, len(names), path)
	}
	return nil
}
