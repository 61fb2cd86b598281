package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/ozacod/forge/internal/pkg/msg"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// State is a step of the dispatch state machine.
type State string

const (
	StateParsed     State = "parsed"
	StateResolved   State = "resolved"
	StateDispatched State = "dispatched"
	StateCompleted  State = "completed"
)

// Resolver resolves the toolchain of a command.
type Resolver interface {
	Resolve(ctx context.Context, req toolchain.Request) (toolchain.Toolchain, error)
}

// Outcome is the result of dispatching one command.
type Outcome struct {
	Command   Command
	Toolchain toolchain.Toolchain
	States    []State
	Err       error
	ExitCode  int
}

// Router parses, resolves and dispatches commands through one Registry.
type Router struct {
	registry *Registry
	resolver Resolver
	handlers Handlers
	platform toolchain.Platform
	standard string
	project  string
	runID    string

	Stdout io.Writer
	Stderr io.Writer
}

// RouterOptions configure a Router.
type RouterOptions struct {
	Registry *Registry
	Resolver Resolver
	Handlers Handlers
	Platform toolchain.Platform
	// Standard is the C++ standard used for the compiler minimum-version check.
	Standard string
	// Project is the name shown in the toolchain banner.
	Project string
	RunID   string
}

func NewRouter(opts RouterOptions) *Router {
	return &Router{
		registry: opts.Registry,
		resolver: opts.Resolver,
		handlers: opts.Handlers,
		platform: opts.Platform,
		standard: opts.Standard,
		project:  opts.Project,
		runID:    opts.RunID,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Registry returns the command table the router dispatches through.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Dispatch runs cmd through its registry handler. Commands that need a
// toolchain resolve it exactly once, before the handler runs.
func (r *Router) Dispatch(ctx context.Context, cmd Command) Outcome {
	out := Outcome{Command: cmd, States: []State{StateParsed}}

	spec, ok := r.registry.Lookup(cmd.Name)
	if !ok {
		return r.complete(out, r.registry.unknownCommand(cmd.Name))
	}

	var tc toolchain.Toolchain
	if spec.NeedsToolchain {
		resolved, err := r.resolver.Resolve(ctx, toolchain.Request{
			Platform:  r.platform,
			Requested: cmd.RequestedCompiler,
			Standard:  r.standard,
		})
		if err != nil {
			return r.complete(out, err)
		}
		tc = resolved
		out.Toolchain = tc
		out.States = append(out.States, StateResolved)
		msg.Debug("run %s: resolved %s on %s", r.runID, tc.Compiler, tc.Platform)
		fmt.Fprintln(r.Stdout, RenderToolchain(r.project, tc))
	}

	out.States = append(out.States, StateDispatched)
	msg.Debug("run %s: dispatching %s", r.runID, cmd.Name)
	return r.complete(out, spec.Handler(ctx, r.handlers, cmd, tc))
}

func (r *Router) complete(out Outcome, err error) Outcome {
	out.Err = err
	out.ExitCode = forgeerrors.ExitCode(err)
	out.States = append(out.States, StateCompleted)
	return out
}

// Run is the process entry point: it parses args, dispatches and returns the
// exit code (0 success, 1 handler failure, 2 usage error).
func (r *Router) Run(ctx context.Context, args []string) int {
	var outcome *Outcome

	root := NewRootCommand(r.registry, func(raw []string) error {
		cmd, err := r.registry.Parse(raw)
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(r.Stdout, r.registry.Usage(raw[0]))
			return nil
		}
		if err != nil {
			return err
		}
		o := r.Dispatch(ctx, cmd)
		outcome = &o
		return o.Err
	})
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(r.Stdout)
	root.SetErr(r.Stderr)

	err := root.ExecuteContext(ctx)
	if outcome != nil {
		if outcome.Err != nil {
			r.report(outcome.Err)
		}
		return outcome.ExitCode
	}
	if err == nil {
		return forgeerrors.ExitOK
	}

	// everything before dispatch is a usage problem, including cobra's own
	// "unknown command" and root flag errors
	r.report(err)
	var parseErr *forgeerrors.ParseError
	if !errors.As(err, &parseErr) {
		fmt.Fprint(r.Stderr, "\n"+r.registry.Overview())
	}
	return forgeerrors.ExitUsage
}

func (r *Router) report(err error) {
	msg.Error("%v", err)

	var parseErr *forgeerrors.ParseError
	if errors.As(err, &parseErr) && parseErr.Usage != "" {
		fmt.Fprint(r.Stderr, "\n"+parseErr.Usage)
	}
}
