// Package toolchain holds the built-in catalog of named toolchain
// presets: known compilerPath/compilerPrefix pairs for common
// cross-compilation targets, so a project's <toolchain> element can say
// preset="mingw-w64-x86_64" instead of spelling out paths.
package toolchain

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pymake-build/pymake/internal/pmerr"
)

//go:embed catalog.toml
var catalogTOML []byte

// Preset is one named compilerPath/compilerPrefix pair from the catalog.
type Preset struct {
	CompilerPath   string `toml:"compilerPath"`
	CompilerPrefix string `toml:"compilerPrefix"`
}

type catalogFile struct {
	Presets map[string]Preset `toml:"presets"`
}

var catalog catalogFile

func init() {
	if _, err := toml.Decode(string(catalogTOML), &catalog); err != nil {
		panic("toolchain: embedded catalog.toml is malformed: " + err.Error())
	}
}

// Lookup returns the named preset, if any.
func Lookup(name string) (Preset, bool) {
	p, ok := catalog.Presets[name]
	return p, ok
}

// MustLookup is Lookup but returns a ConfigError enumerating the known
// preset names instead of a bool, so a typo in preset="…" is diagnosable
// from the error message alone.
func MustLookup(name string) (Preset, error) {
	p, ok := Lookup(name)
	if !ok {
		return Preset{}, pmerr.Config("unknown toolchain preset %q, known presets: %s", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names returns every preset name in the catalog, sorted, for MustLookup's
// error message.
func Names() []string {
	out := make([]string, 0, len(catalog.Presets))
	for name := range catalog.Presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
