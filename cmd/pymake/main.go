// Command pymake is the build orchestrator's CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pymake-build/pymake/internal/buildinfo"
	"github.com/pymake-build/pymake/internal/cliargs"
	"github.com/pymake-build/pymake/internal/executor"
	"github.com/pymake-build/pymake/internal/log"
	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/project"
	"github.com/pymake-build/pymake/internal/xmldoc"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := cliargs.Defaults()
	var verbose, printVersion bool

	root := &cobra.Command{
		Use:           "pymake",
		Short:         "Build orchestrator for C/C++/assembly projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printVersion {
				fmt.Println(buildinfo.Version())
				return nil
			}
			level := slog.LevelWarn
			if verbose || args.DumpPhases {
				level = slog.LevelDebug
			}
			log.SetDefault(log.New(log.NewCLIHandler(os.Stderr, level)))
			return runBuild(cmd.Context(), args)
		},
	}
	root.Flags().BoolVarP(&printVersion, "version", "v", false, "print version and exit")

	root.Flags().BoolVarP(&args.Clean, "clean", "c", false, "clean before building")
	root.Flags().BoolVarP(&args.DoPrebuilds, "prebuilds", "p", false, "recurse into <prebuilds>")
	root.Flags().StringVarP(&args.ProjectFile, "file", "f", args.ProjectFile, "project XML file")
	root.Flags().StringVarP(&args.Configuration, "configuration", "g", args.Configuration, "active configuration name")
	root.Flags().StringVarP(&args.OnlySource, "only", "o", "", "compile only the source whose basename equals ONE; no link")
	root.Flags().StringArrayVarP(&args.Subs, "sub", "s", nil, "add substitution KEY:VAL (repeatable; also accepts ';'-separated pairs)")
	root.Flags().StringArrayVarP(&args.DictFiles, "dict", "i", nil, "include dictionary file (repeatable)")
	root.Flags().BoolVarP(&args.DumpPhases, "dump-phases", "x", false, "dump intermediate resolved XML after each evaluation phase")
	root.Flags().BoolVarP(&verbose, "verbose", "V", false, "verbose diagnostic logging")

	root.PreRunE = func(cmd *cobra.Command, _ []string) error {
		args.HasOnlySource = cmd.Flags().Changed("only")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, log.Diagnostic(err))
		return pmerr.ExitCode(err)
	}
	return 0
}

func runBuild(ctx context.Context, args cliargs.Args) error {
	if err := args.Validate(); err != nil {
		return err
	}
	subs, err := args.ResolvedSubs()
	if err != nil {
		return err
	}

	var resolveOpts []project.Option
	if args.DumpPhases {
		resolveOpts = append(resolveOpts, project.WithPhaseDump(func(phase string, root *xmldoc.Element) {
			log.Default().Debug("resolved tree", "phase", phase, "tree", "\n"+xmldoc.Render(root))
		}))
	}

	p, err := project.Resolve(args.ProjectFile, subs, args.DictFiles, args.Configuration, resolveOpts...)
	if err != nil {
		return err
	}

	opts := executor.Options{
		Clean:         args.Clean,
		DoPrebuilds:   args.DoPrebuilds,
		OnlySource:    args.OnlySource,
		HasOnlySource: args.HasOnlySource,
	}

	return executor.Build(ctx, p, opts, log.Default(), makePrebuilder(args))
}

// makePrebuilder returns a Prebuilder that re-enters this same entry
// point for each referenced sub-project (spec.md §4.4, §9 "Recursive
// invocation"). parentArgs is the invocation's own resolved Args: per
// §4.4, a prebuild inherits every field of the current invocation and
// only then applies its own override elements on top.
func makePrebuilder(parentArgs cliargs.Args) executor.Prebuilder {
	return func(ctx context.Context, parentDir string, ref project.PrebuildRef, parentOpts executor.Options) error {
		childArgs := parentArgs.Merge(ref)

		subs, err := childArgs.ResolvedSubs()
		if err != nil {
			return err
		}
		projectFile := filepath.Join(parentDir, ref.Path, childArgs.ProjectFile)
		p, err := project.Resolve(projectFile, subs, childArgs.DictFiles, childArgs.Configuration)
		if err != nil {
			return err
		}

		childOpts := executor.Options{
			Clean:       childArgs.Clean,
			DoPrebuilds: childArgs.DoPrebuilds,
		}
		log.Default().Info("building prebuild", "path", ref.Path, "configuration", childArgs.Configuration)
		return executor.Build(ctx, p, childOpts, log.Default(), makePrebuilder(childArgs))
	}
}
