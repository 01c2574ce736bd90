package commands

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// Manifest represents the dlprobe.toml probe plan.
type Manifest struct {
	Probe     ProbeConfig    `toml:"probe"`
	Libraries []LibraryEntry `toml:"library"`
}

type ProbeConfig struct {
	// Parallel caps how many libraries are probed at once. Zero means
	// one worker per CPU.
	Parallel int `toml:"parallel"`
}

// LibraryEntry names one library to load and the symbols it must
// export.
type LibraryEntry struct {
	Name    string   `toml:"name"`
	Path    string   `toml:"path"`
	Exact   bool     `toml:"exact"`
	Symbols []string `toml:"symbols"`
}

// LoadManifest reads and validates a probe plan.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if m.Probe.Parallel <= 0 {
		m.Probe.Parallel = runtime.NumCPU()
	}
	for i, entry := range m.Libraries {
		if entry.Path == "" {
			return nil, fmt.Errorf("manifest %s: library %d has no path", path, i)
		}
		if entry.Name == "" {
			m.Libraries[i].Name = entry.Path
		}
	}
	return &m, nil
}
