// Package executor runs the serial action pipeline described in spec.md
// §4.4 and §5: pre-ops, prebuilds, compiles, link/archive, post-ops, each
// a single process invocation, with no intra-build parallelism and
// short-circuit on the first non-zero exit.
package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/pymake-build/pymake/internal/log"
	"github.com/pymake-build/pymake/internal/pmerr"
	"golang.org/x/sys/unix"
)

// Step is one child-process invocation in the pipeline.
type Step struct {
	Argv    []string
	Dir     string
	Element string // diagnostic label, e.g. the source path being compiled
	Shell   bool   // run Argv[0] as a shell command string rather than exec'ing argv directly
}

// RunSerial executes steps one at a time, in order, stopping at the first
// failure or at the first step observed after ctx is cancelled. Standard
// streams pass through to the parent unchanged (spec.md §4.4).
func RunSerial(ctx context.Context, steps []Step, logger log.Logger) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return pmerr.Config("build cancelled before %s", step.Element)
		}
		logger.Debug("run step", "element", step.Element, "argv", strings.Join(step.Argv, " "))
		if err := runOne(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func runOne(ctx context.Context, step Step) error {
	var cmd *exec.Cmd
	if step.Shell {
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", step.Argv[0])
	} else {
		cmd = exec.CommandContext(ctx, step.Argv[0], step.Argv[1:]...)
	}
	cmd.Dir = step.Dir
	cmd.Stdout = os.Stdout
	cmd.Stdin = os.Stdin

	// Run the child in its own process group so a cancellation signal can
	// be delivered to the whole subtree it may have spawned, not just the
	// direct child (spec.md §5, "in-flight children... are signalled").
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}

	commandLine := strings.Join(cmd.Args, " ")
	if step.Shell {
		commandLine = step.Argv[0]
	}

	var stderrTail bytes.Buffer
	cmd.Stderr = &teeWriter{primary: os.Stderr, tail: &stderrTail}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	exitCode := 1
	var exitErr *exec.ExitError
	if asExitError(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return pmerr.ChildFailure(commandLine, exitCode, err)
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}

type teeWriter struct {
	primary *os.File
	tail    *bytes.Buffer
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.tail.Write(p)
	return w.primary.Write(p)
}
