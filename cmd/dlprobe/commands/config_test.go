package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lorelang/native"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dlprobe.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
[probe]
parallel = 2

[[library]]
name = "m"
path = "/usr/lib/libm.so.6"
exact = true
symbols = ["sqrt", "cos"]

[[library]]
path = "engine/target/release/libengine"
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Probe.Parallel != 2 {
		t.Errorf("Parallel = %d, want 2", m.Probe.Parallel)
	}
	if len(m.Libraries) != 2 {
		t.Fatalf("len(Libraries) = %d, want 2", len(m.Libraries))
	}
	if got := m.Libraries[0]; got.Name != "m" || !got.Exact || len(got.Symbols) != 2 {
		t.Errorf("first entry = %+v", got)
	}
	// A nameless entry falls back to its path.
	if got := m.Libraries[1].Name; got != "engine/target/release/libengine" {
		t.Errorf("defaulted name = %q", got)
	}
}

func TestLoadManifestDefaultsParallel(t *testing.T) {
	path := writeManifest(t, `
[[library]]
path = "libx"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Probe.Parallel < 1 {
		t.Errorf("Parallel = %d, want >= 1", m.Probe.Parallel)
	}
}

func TestLoadManifestRejectsMissingPath(t *testing.T) {
	path := writeManifest(t, `
[[library]]
name = "broken"
`)
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected error for library entry without path")
	}
}

func TestParseCallArg(t *testing.T) {
	tests := []struct {
		spec    string
		kind    native.Kind
		wantErr bool
	}{
		{"u8:255", native.KindU8, false},
		{"u16:0xBEEF", native.KindU16, false},
		{"u32:5", native.KindU32, false},
		{"u64:18446744073709551615", native.KindU64, false},
		{"f32:1.5", native.KindF32, false},
		{"f64:-2.25", native.KindF64, false},
		{"size:4096", native.KindSize, false},
		{"ptr:0", native.KindPtr, false},
		{"str:hello", native.KindPtr, false},
		{"u8:256", 0, true},
		{"u32:nope", 0, true},
		{"void:1", 0, true},
		{"i32:1", 0, true},
		{"noseparator", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			arg, buf, err := parseCallArg(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCallArg(%q) succeeded, want error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCallArg(%q): %v", tt.spec, err)
			}
			if arg.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", arg.Kind(), tt.kind)
			}
			if tt.spec == "str:hello" && buf == nil {
				t.Error("str argument should return its backing buffer")
			}
		})
	}
}
