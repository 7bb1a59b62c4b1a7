package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pymake-build/pymake/internal/pmerr"
)

var supportedExts = map[string]bool{
	".c":   true,
	".cpp": true,
	".cc":  true,
	".cxx": true,
	".s":   true,
	".S":   true,
}

func isSupportedSource(path string) bool {
	return supportedExts[filepath.Ext(path)]
}

// ObjectPath derives the object-file path for a source, preserving its
// relative path under the project to avoid collisions between same-named
// files in different directories (spec.md §3, ObjectFile).
func ObjectPath(outputDir, sourceRelPath string) string {
	return filepath.Join(outputDir, sourceRelPath+".o")
}

// DependencyPath derives the header-dependency sidecar path for a source
// (spec.md §3, DependencyFile).
func DependencyPath(outputDir, sourceRelPath string) string {
	return filepath.Join(outputDir, sourceRelPath+".d")
}

// expandSourcePath resolves one <file path="…"> entry (already substituted)
// against projectDir. A path ending in "/*" expands shallowly — no
// recursion into subdirectories — to every supported source file in that
// directory, in lexical order, then subtracts excludes. A plain path is
// returned as-is (existence is not checked here; a missing explicit source
// surfaces later as a compiler I/O failure, matching the teacher's lazy
// validation style).
func expandSourcePath(projectDir, path string, excludes []string) ([]string, error) {
	if !strings.HasSuffix(path, "/*") {
		return []string{path}, nil
	}
	dirRel := strings.TrimSuffix(path, "/*")
	dirAbs := filepath.Join(projectDir, dirRel)

	entries, err := os.ReadDir(dirAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pmerr.IO(dirAbs, err)
	}

	excluded := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		excluded[e] = true
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedSource(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		rel := dirRel + "/" + name
		if excluded[name] || excluded[rel] {
			continue
		}
		out = append(out, rel)
	}
	return out, nil
}
