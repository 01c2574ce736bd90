package commands

import (
	"fmt"

	"github.com/lorelang/native"
)

// splitExactFlag strips a leading -exact/--exact from args.
func splitExactFlag(args []string) (bool, []string) {
	if len(args) > 0 && (args[0] == "-exact" || args[0] == "--exact") {
		return true, args[1:]
	}
	return false, args
}

// openLibrary opens one library the way the command line asked for:
// suffix substitution by default, the literal path with -exact.
func openLibrary(path string, exact bool) (*native.Library, error) {
	if exact {
		return native.OpenExact(path)
	}
	return native.Open(path)
}

// Open loads each named library and reports the outcome.
func Open(args []string) error {
	exact, paths := splitExactFlag(args)
	if len(paths) == 0 {
		return fmt.Errorf("usage: dlprobe open [-exact] <path>...")
	}

	var failed int
	for _, path := range paths {
		lib, err := openLibrary(path, exact)
		if err != nil {
			logger.Error().Str("path", path).Err(err).Msg("load failed")
			failed++
			continue
		}
		logger.Info().Str("path", lib.Path()).Msg("loaded")
		lib.Unload()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d libraries failed to load", failed, len(paths))
	}
	return nil
}
