// Package quality runs formatters and linters per language.
//
// Each language is checked independently and concurrently. A missing tool is
// a skip unless the project marks it required; only a tool that ran and
// failed (or a missing required tool) fails the command.
package quality

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sync/errgroup"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/msg"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// Variables for mocking in tests
var execLookPath = exec.LookPath

// batchSize keeps command lines under the Windows length limit.
const batchSize = 100

// Status is the result of one language.
type Status int

const (
	Applied Status = iota
	SkippedToolMissing
	FailedToolMissing
	FailedToolError
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case SkippedToolMissing:
		return "skipped (tool missing)"
	case FailedToolMissing:
		return "failed (required tool missing)"
	case FailedToolError:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is what happened to one language.
type Outcome struct {
	Language    string
	Tool        string
	Status      Status
	Files       int
	ExitCode    int
	Diagnostics string
}

// Failed reports whether the outcome fails the command.
func (o Outcome) Failed() bool {
	return o.Status == FailedToolMissing || o.Status == FailedToolError
}

// Report collects the outcome of every language, in language order.
type Report struct {
	Command  string
	Outcomes []Outcome
}

// Success is true iff no language failed.
func (r Report) Success() bool {
	for _, o := range r.Outcomes {
		if o.Failed() {
			return false
		}
	}
	return true
}

// Err joins one error per failed language.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		switch o.Status {
		case FailedToolError:
			errs = append(errs, forgeerrors.NewToolFailedError(forgeerrors.KindToolInvocationFailed, o.Tool, o.ExitCode, o.Diagnostics))
		case FailedToolMissing:
			errs = append(errs, forgeerrors.NewToolError(o.Tool, "required tool not found", installHint(o.Tool)))
		}
	}
	return errors.Join(errs...)
}

// RequiredTools decides whether a missing tool fails the run instead of
// skipping its language.
type RequiredTools interface {
	IsRequired(tool string) bool
}

// Options configure a Checker.
type Options struct {
	Dir         string
	CppGlobs    []string
	PythonGlobs []string
	// Required may be nil: every missing tool is then skipped.
	Required           RequiredTools
	CompileCommandsDir string
}

// Checker runs format and lint.
type Checker struct {
	exec  types.Executor
	files FileLister
	opts  Options
}

func NewChecker(exec types.Executor, files FileLister, opts Options) *Checker {
	return &Checker{exec: exec, files: files, opts: opts}
}

// Format runs clang-format and black. With check, files are verified but not
// rewritten.
func (c *Checker) Format(ctx context.Context, check bool) Report {
	return c.run(ctx, "format", formatters(c.opts, check))
}

// Lint runs clang-tidy and pylint. With fix, clang-tidy applies fixes.
func (c *Checker) Lint(ctx context.Context, fix bool) Report {
	return c.run(ctx, "lint", linters(c.opts, fix))
}

func (c *Checker) run(ctx context.Context, command string, langs []language) Report {
	outcomes := make([]Outcome, len(langs))

	var eg errgroup.Group
	for i, lang := range langs {
		eg.Go(func() error {
			outcomes[i] = c.runLanguage(ctx, lang)
			return nil
		})
	}
	_ = eg.Wait()

	for _, o := range outcomes {
		if o.Status == SkippedToolMissing {
			msg.Warn("%s not found, skipping %s files", o.Tool, o.Language)
		}
	}

	return Report{Command: command, Outcomes: outcomes}
}

func (c *Checker) runLanguage(ctx context.Context, lang language) Outcome {
	out := Outcome{Language: lang.name, Tool: lang.tool}

	path, err := execLookPath(lang.tool)
	if err != nil {
		if c.isRequired(lang.tool) {
			out.Status = FailedToolMissing
		} else {
			out.Status = SkippedToolMissing
		}
		return out
	}

	files, err := c.files.Collect(lang.globs)
	if err != nil {
		out.Status = FailedToolError
		out.ExitCode = -1
		out.Diagnostics = err.Error()
		return out
	}
	out.Files = len(files)
	if len(files) == 0 {
		out.Status = Applied
		return out
	}

	msg.Debug("%s: %s over %d files", lang.name, lang.tool, len(files))

	var diagnostics string
	for start := 0; start < len(files); start += batchSize {
		end := min(start+batchSize, len(files))
		res, err := c.exec.Run(ctx, types.Invocation{Name: path, Args: lang.args(files[start:end]), Dir: c.opts.Dir})
		if err != nil {
			out.Status = FailedToolError
			out.ExitCode = -1
			out.Diagnostics = err.Error()
			return out
		}
		if !res.Succeeded() {
			if out.ExitCode == 0 {
				out.ExitCode = res.ExitCode
			}
			diagnostics += res.Output
		}
	}

	if out.ExitCode != 0 {
		out.Status = FailedToolError
		out.Diagnostics = forgeerrors.Tail(diagnostics, forgeerrors.MaxDiagnosticLines)
		return out
	}
	out.Status = Applied
	return out
}

func (c *Checker) isRequired(tool string) bool {
	return c.opts.Required != nil && c.opts.Required.IsRequired(tool)
}
