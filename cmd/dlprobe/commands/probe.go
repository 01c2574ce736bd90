package commands

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

const defaultManifest = "dlprobe.toml"

// Probe runs a manifest's probe plan: every library is loaded and its
// required symbols resolved, several libraries at a time.
func Probe(args []string) error {
	path := defaultManifest
	if len(args) > 0 {
		path = args[0]
	}

	m, err := LoadManifest(path)
	if err != nil {
		return err
	}
	if len(m.Libraries) == 0 {
		return fmt.Errorf("manifest %s names no libraries", path)
	}

	var g errgroup.Group
	g.SetLimit(m.Probe.Parallel)
	for _, entry := range m.Libraries {
		entry := entry
		g.Go(func() error {
			return probeOne(entry)
		})
	}
	return g.Wait()
}

func probeOne(entry LibraryEntry) error {
	lib, err := openLibrary(entry.Path, entry.Exact)
	if err != nil {
		logger.Error().Str("library", entry.Name).Err(err).Msg("probe: load failed")
		return fmt.Errorf("%s: %w", entry.Name, err)
	}
	defer lib.Unload()

	for _, name := range entry.Symbols {
		f, err := lib.Resolve(name)
		if err != nil {
			logger.Error().Str("library", entry.Name).Str("symbol", name).Err(err).Msg("probe: resolve failed")
			return fmt.Errorf("%s: %w", entry.Name, err)
		}
		logger.Debug().Str("library", entry.Name).Str("symbol", name).
			Str("addr", fmt.Sprintf("%#x", f.Addr())).Msg("probe: resolved")
	}

	logger.Info().Str("library", entry.Name).Str("path", lib.Path()).
		Int("symbols", len(entry.Symbols)).Msg("probe: ok")
	return nil
}
