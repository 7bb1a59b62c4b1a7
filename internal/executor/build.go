package executor

import (
	"context"
	"os"

	"github.com/pymake-build/pymake/internal/log"
	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/plan"
	"github.com/pymake-build/pymake/internal/project"
)

// Options controls one build invocation (spec.md §6.1).
type Options struct {
	Clean         bool
	DoPrebuilds   bool
	OnlySource    string // basename restriction from -o ONE; empty means build everything
	HasOnlySource bool
}

// Prebuilder recurses into a prebuild project, used so the executor
// doesn't import the CLI layer directly (spec.md §4.4, recursive
// invocation). parentDir is the directory of the project that declared
// the prebuild; ref.Path is resolved relative to it.
type Prebuilder func(ctx context.Context, parentDir string, ref project.PrebuildRef, parentOpts Options) error

// Build runs the full pipeline for a resolved project: clean (if
// requested), pre-ops, prebuilds, compiles (skipping up-to-date sources),
// link/archive (skipping when nothing changed), then post-ops.
func Build(ctx context.Context, p *project.Project, opts Options, logger log.Logger, prebuild Prebuilder) error {
	if opts.Clean {
		if err := Clean(p.OutputDir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return pmerr.IO(p.OutputDir, err)
	}

	preSteps := make([]Step, 0, len(p.PreOps))
	for _, op := range p.PreOps {
		preSteps = append(preSteps, Step{Argv: []string{op.Command}, Dir: p.Dir, Element: op.Element, Shell: true})
	}
	if err := RunSerial(ctx, preSteps, logger); err != nil {
		return err
	}

	if opts.DoPrebuilds {
		for _, ref := range p.Prebuilds {
			if err := ctx.Err(); err != nil {
				return pmerr.Config("build cancelled before prebuild %s", ref.Path)
			}
			if err := prebuild(ctx, p.Dir, ref, opts); err != nil {
				return err
			}
		}
	}

	sources := p.Sources
	if opts.HasOnlySource {
		sources = filterByBasename(p.Sources, opts.OnlySource)
		if len(sources) == 0 {
			return pmerr.Config("-o %s matches no source in the project", opts.OnlySource)
		}
	}

	var objectPaths []string
	allSkipped := true
	for _, src := range sources {
		srcAbs := p.Dir + "/" + src.Path
		objPath := project.ObjectPath(p.OutputDir, src.Path)
		depPath := project.DependencyPath(p.OutputDir, src.Path)
		objectPaths = append(objectPaths, objPath)

		stale, err := plan.NeedsCompile(p.Dir, srcAbs, objPath, depPath, opts.Clean)
		if err != nil {
			return err
		}
		if !stale {
			continue
		}
		allSkipped = false

		if err := os.MkdirAll(parentDir(objPath), 0o755); err != nil {
			return pmerr.IO(objPath, err)
		}
		argv, err := plan.CompileCommand(p, src)
		if err != nil {
			return err
		}
		if err := RunSerial(ctx, []Step{{Argv: argv, Dir: p.Dir, Element: src.Path}}, logger); err != nil {
			return err
		}
	}

	// -o ONE narrows the compile set and suppresses link/archive, but
	// post-ops are lifecycle hooks rather than build steps and still run.
	if !opts.HasOnlySource {
		explicit := existingPaths(p.Dir, p.Objects)
		relink, err := plan.NeedsRelink(p.ArtifactPath(), allSkipped, objectPaths, explicit)
		if err != nil {
			return err
		}
		if relink {
			var argv []string
			if p.ArtifactKind == project.Library {
				argv = plan.ArchiveCommand(p, objectPaths)
			} else {
				argv = plan.LinkCommand(p, objectPaths)
			}
			if err := RunSerial(ctx, []Step{{Argv: argv, Dir: p.Dir, Element: p.ArtifactName}}, logger); err != nil {
				return err
			}
		}
	}

	postSteps := make([]Step, 0, len(p.PostOps))
	for _, op := range p.PostOps {
		postSteps = append(postSteps, Step{Argv: []string{op.Command}, Dir: p.Dir, Element: op.Element, Shell: true})
	}
	if err := RunSerial(ctx, postSteps, logger); err != nil {
		return err
	}

	return nil
}

// Clean removes and recreates outputDir (spec.md §4.5).
func Clean(outputDir string) error {
	if _, err := os.Stat(outputDir); err == nil {
		if err := os.RemoveAll(outputDir); err != nil {
			return pmerr.IO(outputDir, err)
		}
	} else if !os.IsNotExist(err) {
		return pmerr.IO(outputDir, err)
	}
	return os.MkdirAll(outputDir, 0o755)
}

func filterByBasename(sources []project.SourceEntry, basename string) []project.SourceEntry {
	var out []project.SourceEntry
	for _, s := range sources {
		if baseOf(s.Path) == basename {
			out = append(out, s)
		}
	}
	return out
}

func baseOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

func existingPaths(dir string, paths []string) []string {
	var out []string
	for _, p := range paths {
		abs := p
		if len(abs) == 0 || abs[0] != '/' {
			abs = dir + "/" + abs
		}
		if _, err := os.Stat(abs); err == nil {
			out = append(out, abs)
		}
	}
	return out
}
