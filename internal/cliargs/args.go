// Package cliargs collects and validates the orchestrator's command-line
// options (spec.md §6.1).
package cliargs

import (
	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/project"
)

// Args mirrors the orchestrator's CLI surface.
type Args struct {
	Clean         bool
	DoPrebuilds   bool
	ProjectFile   string
	Configuration string
	OnlySource    string
	HasOnlySource bool
	Subs          []string // raw -s values, repeatable or ";"-joined
	DictFiles     []string // -i values
	DumpPhases    bool
}

// Defaults returns the documented defaults (spec.md §6.1).
func Defaults() Args {
	return Args{
		ProjectFile:   "pyMake.xml",
		Configuration: "Release",
	}
}

// ResolvedSubs parses every -s entry into the final substitution map.
func (a Args) ResolvedSubs() (map[string]string, error) {
	return project.ParseInlineSubs(a.Subs)
}

// Validate rejects malformed combinations (spec.md §7, UsageError).
func (a Args) Validate() error {
	if a.ProjectFile == "" {
		return pmerr.Usage("-f requires a non-empty path")
	}
	if a.Configuration == "" {
		return pmerr.Usage("-g requires a non-empty configuration name")
	}
	return nil
}

// Merge applies a prebuild's overrides on top of a's values, per field,
// for the child invocation only (spec.md §4.4).
func (a Args) Merge(ref project.PrebuildRef) Args {
	out := a
	if ref.HasConfigFile {
		out.ProjectFile = ref.ConfigFile
	}
	if ref.HasConfig {
		out.Configuration = ref.Configuration
	}
	if ref.HasClean {
		out.Clean = ref.Clean
	}
	if ref.HasDoPrebuilds {
		out.DoPrebuilds = ref.DoPrebuilds
	}
	out.HasOnlySource = false
	out.OnlySource = ""

	merged := make(map[string]string, len(out.Subs)+len(ref.Subs))
	parsed, _ := project.ParseInlineSubs(out.Subs)
	for k, v := range parsed {
		merged[k] = v
	}
	for k, v := range ref.Subs {
		merged[k] = v // a <sub> may shadow a same-key parent entry for the child only
	}
	out.Subs = flattenSubs(merged)
	return out
}

func flattenSubs(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+":"+v)
	}
	return out
}
