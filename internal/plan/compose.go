package plan

import (
	"path/filepath"
	"strings"

	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/project"
)

// CompileCommand builds the argv for compiling one source (spec.md §4.3).
// Driver selection is by extension: .c -> the C driver (cflags), .cpp/.cc/
// .cxx -> the C++ driver (cppflags), .s/.S -> the assembler driver
// (aflags); all three additionally apply ccflags. Flag aggregation order
// is global ccflags, language-specific global flags, configuration-level
// extras, per-file ccflags, optimization, debugging.
func CompileCommand(p *project.Project, src project.SourceEntry) ([]string, error) {
	driver, langFlags, err := driverFor(p, src.Path)
	if err != nil {
		return nil, err
	}

	srcAbs := filepath.Join(p.Dir, src.Path)
	objPath := project.ObjectPath(p.OutputDir, src.Path)
	depPath := project.DependencyPath(p.OutputDir, src.Path)

	argv := []string{p.Toolchain.CCPrefix() + driver}
	for _, inc := range p.Includes {
		argv = append(argv, "-I"+inc)
	}
	argv = append(argv, p.GlobalCcflags...)
	argv = append(argv, langFlags...)
	argv = append(argv, p.Configuration.ExtraCcflags...)
	argv = append(argv, src.PerFileCcflags...)

	if src.HasPerFileOpt {
		if src.PerFileOptimization != "" {
			argv = append(argv, src.PerFileOptimization)
		}
	} else if p.Configuration.Optimization != "" {
		argv = append(argv, p.Configuration.Optimization)
	}
	if src.HasPerFileDebugging {
		if src.PerFileDebugging != "" {
			argv = append(argv, src.PerFileDebugging)
		}
	} else if p.Configuration.Debugging != "" {
		argv = append(argv, p.Configuration.Debugging)
	}

	argv = append(argv, "-c", srcAbs, "-o", objPath)
	argv = append(argv, "-MMD", "-MF", depPath)
	return argv, nil
}

func driverFor(p *project.Project, sourcePath string) (string, []string, error) {
	switch strings.ToLower(filepath.Ext(sourcePath)) {
	case ".c":
		return "gcc", p.GlobalCflags, nil
	case ".cpp", ".cc", ".cxx":
		return "g++", p.GlobalCppflags, nil
	case ".s":
		return "as", p.GlobalAflags, nil
	default:
		return "", nil, pmerr.Config("unsupported source extension for %q", sourcePath)
	}
}

// LinkCommand builds the argv for the final executable link (spec.md
// §4.3): flags, then object files in document order, then <objects>
// verbatim (order matters for static linking), then -o artifact.
func LinkCommand(p *project.Project, objectPaths []string) []string {
	argv := []string{p.Toolchain.CCPrefix() + "g++"}
	argv = append(argv, p.GlobalLflags...)
	argv = append(argv, p.Configuration.ExtraLflags...)
	argv = append(argv, objectPaths...)
	argv = append(argv, p.Objects...)
	argv = append(argv, "-o", p.ArtifactPath())
	return argv
}

// ArchiveCommand builds the argv for a static-library build (spec.md §4.3).
func ArchiveCommand(p *project.Project, objectPaths []string) []string {
	argv := []string{p.Toolchain.CCPrefix() + "ar", "rcs", p.ArtifactPath()}
	argv = append(argv, objectPaths...)
	argv = append(argv, p.Objects...)
	return argv
}
