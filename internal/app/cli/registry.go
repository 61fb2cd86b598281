package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// Command is a parsed user request.
type Command struct {
	Name              string
	Target            types.Target
	BuildType         types.BuildType
	Pipeline          types.Pipeline // empty means the project default
	Preset            string
	RequestedCompiler toolchain.CompilerID // empty means auto-detect
	Clean             bool
	Check             bool
	Fix               bool
	ExtraFlags        []string
}

// Request converts the command into the value build handlers consume.
func (c Command) Request(tc toolchain.Toolchain) types.Request {
	return types.Request{
		Target:    c.Target,
		BuildType: c.BuildType,
		Pipeline:  c.Pipeline,
		Preset:    c.Preset,
		Clean:     c.Clean,
		ExtraArgs: c.ExtraFlags,
		Toolchain: tc,
	}
}

// Handlers execute commands. The toolchain inside a Request has already been
// resolved by the router.
type Handlers interface {
	Configure(ctx context.Context, req types.Request) error
	Build(ctx context.Context, req types.Request) error
	Install(ctx context.Context, req types.Request) error
	Test(ctx context.Context, req types.Request) error
	Package(ctx context.Context, req types.Request) error
	Clean(ctx context.Context) error
	Format(ctx context.Context, check bool) error
	Lint(ctx context.Context, fix bool) error
}

// HandlerFunc runs one command. tc is the zero value for commands that do
// not need a toolchain.
type HandlerFunc func(ctx context.Context, h Handlers, cmd Command, tc toolchain.Toolchain) error

// FieldKind says how a field is parsed and where it is stored.
type FieldKind int

const (
	FieldTarget FieldKind = iota
	FieldBuildType
	FieldPipeline
	FieldPreset
	FieldCompiler
	FieldClean
	FieldCheck
	FieldFix
)

// Field is one argument of a command.
type Field struct {
	// Name is the positional placeholder (TARGET) or the flag name (compiler).
	Name    string
	Kind    FieldKind
	Default string
	Usage   string
}

func (f Field) isBool() bool {
	return f.Kind == FieldClean || f.Kind == FieldCheck || f.Kind == FieldFix
}

// Spec is the registry entry of one command.
type Spec struct {
	Name           string
	Short          string
	Required       []Field // positional, in order
	Optional       []Field // flags
	NeedsToolchain bool
	// AcceptsExtra forwards arguments after "--" as Command.ExtraFlags.
	AcceptsExtra bool
	Handler      HandlerFunc
}

// Registry is the single table of commands. It is built once and never
// modified; parsing, usage, the cobra tree and dispatch all read it.
type Registry struct {
	specs   []Spec
	byName  map[string]int
	catalog *toolchain.Catalog
}

// NewRegistry builds the command table.
func NewRegistry(catalog *toolchain.Catalog) *Registry {
	compiler := Field{Name: "compiler", Kind: FieldCompiler, Usage: "compiler to use (auto-detected when omitted)"}
	target := Field{Name: "TARGET", Kind: FieldTarget}
	buildType := Field{Name: "BUILD_TYPE", Kind: FieldBuildType}

	specs := []Spec{
		{
			Name:  "configure",
			Short: "Install dependencies and generate the CMake build tree",
			Optional: []Field{
				compiler,
				{Name: "build-type", Kind: FieldBuildType, Default: string(types.Debug), Usage: "build type"},
				{Name: "preset", Kind: FieldPreset, Usage: "CMake configure preset"},
				{Name: "target", Kind: FieldTarget, Default: string(types.TargetAll), Usage: "part of the project to configure"},
				{Name: "pipeline", Kind: FieldPipeline, Usage: "dependency pipeline (default from forge.yaml)"},
			},
			NeedsToolchain: true,
			AcceptsExtra:   true,
			Handler: func(ctx context.Context, h Handlers, cmd Command, tc toolchain.Toolchain) error {
				return h.Configure(ctx, cmd.Request(tc))
			},
		},
		{
			Name:  "build",
			Short: "Configure and build a target",
			Required: []Field{
				target,
				{Name: "PIPELINE", Kind: FieldPipeline},
				{Name: "PRESET", Kind: FieldPreset},
				buildType,
			},
			Optional: []Field{
				compiler,
				{Name: "clean", Kind: FieldClean, Usage: "remove the build directory first"},
			},
			NeedsToolchain: true,
			AcceptsExtra:   true,
			Handler: func(ctx context.Context, h Handlers, cmd Command, tc toolchain.Toolchain) error {
				return h.Build(ctx, cmd.Request(tc))
			},
		},
		{
			Name:           "install",
			Short:          "Install third-party dependencies",
			Required:       []Field{target, buildType},
			Optional:       []Field{compiler},
			NeedsToolchain: true,
			Handler: func(ctx context.Context, h Handlers, cmd Command, tc toolchain.Toolchain) error {
				return h.Install(ctx, cmd.Request(tc))
			},
		},
		{
			Name:           "test",
			Short:          "Run ctest in a configured build directory",
			Required:       []Field{target, buildType},
			Optional:       []Field{compiler},
			NeedsToolchain: true,
			Handler: func(ctx context.Context, h Handlers, cmd Command, tc toolchain.Toolchain) error {
				return h.Test(ctx, cmd.Request(tc))
			},
		},
		{
			Name:           "package",
			Short:          "Run cpack in a configured build directory",
			Required:       []Field{target, buildType},
			Optional:       []Field{compiler},
			NeedsToolchain: true,
			Handler: func(ctx context.Context, h Handlers, cmd Command, tc toolchain.Toolchain) error {
				return h.Package(ctx, cmd.Request(tc))
			},
		},
		{
			Name:     "format",
			Short:    "Format C++ and Python sources",
			Optional: []Field{{Name: "check", Kind: FieldCheck, Usage: "check formatting without modifying files"}},
			Handler: func(ctx context.Context, h Handlers, cmd Command, _ toolchain.Toolchain) error {
				return h.Format(ctx, cmd.Check)
			},
		},
		{
			Name:     "lint",
			Short:    "Lint C++ and Python sources",
			Optional: []Field{{Name: "fix", Kind: FieldFix, Usage: "apply clang-tidy fixes"}},
			Handler: func(ctx context.Context, h Handlers, cmd Command, _ toolchain.Toolchain) error {
				return h.Lint(ctx, cmd.Fix)
			},
		},
		{
			Name:  "clean",
			Short: "Remove the build root",
			Handler: func(ctx context.Context, h Handlers, _ Command, _ toolchain.Toolchain) error {
				return h.Clean(ctx)
			},
		},
	}

	byName := make(map[string]int, len(specs))
	for i, s := range specs {
		byName[s.Name] = i
	}
	return &Registry{specs: specs, byName: byName, catalog: catalog}
}

// Names returns every command name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the spec registered for name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// RequiredFields returns the positional field names of a command.
func (r *Registry) RequiredFields(name string) ([]string, error) {
	spec, ok := r.Lookup(name)
	if !ok {
		return nil, r.unknownCommand(name)
	}
	names := make([]string, len(spec.Required))
	for i, f := range spec.Required {
		names[i] = f.Name
	}
	return names, nil
}

// OptionalFields returns the flag names of a command.
func (r *Registry) OptionalFields(name string) ([]string, error) {
	spec, ok := r.Lookup(name)
	if !ok {
		return nil, r.unknownCommand(name)
	}
	names := make([]string, len(spec.Optional))
	for i, f := range spec.Optional {
		names[i] = f.Name
	}
	return names, nil
}

// Parse turns raw arguments (command name first) into a Command. A help
// request returns pflag.ErrHelp.
func (r *Registry) Parse(rawArgs []string) (Command, error) {
	if len(rawArgs) == 0 {
		return Command{}, forgeerrors.NewParseError("", "missing command", r.Overview())
	}
	spec, ok := r.Lookup(rawArgs[0])
	if !ok {
		return Command{}, r.unknownCommand(rawArgs[0])
	}
	usage := r.Usage(spec.Name)
	fail := func(format string, a ...any) (Command, error) {
		return Command{}, forgeerrors.NewParseError(spec.Name, fmt.Sprintf(format, a...), usage)
	}

	cmd := Command{Name: spec.Name}
	fs, bind := r.flagSet(spec)
	if err := fs.Parse(rawArgs[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Command{}, err
		}
		return fail("%v", err)
	}

	args := fs.Args()
	var extra []string
	if dash := fs.ArgsLenAtDash(); dash >= 0 {
		args, extra = args[:dash], args[dash:]
	}
	if len(extra) > 0 && !spec.AcceptsExtra {
		return fail("unexpected arguments after --: %s", strings.Join(extra, " "))
	}
	if len(args) != len(spec.Required) {
		return fail("expected %d argument(s) %s, got %d", len(spec.Required), placeholders(spec), len(args))
	}

	for i, f := range spec.Required {
		if err := r.assign(&cmd, f, args[i]); err != nil {
			return fail("%s: %v", f.Name, err)
		}
	}
	if err := bind(&cmd); err != nil {
		return fail("%v", err)
	}
	if len(extra) > 0 {
		cmd.ExtraFlags = extra
	}
	return cmd, nil
}

// flagSet builds the FlagSet of spec. bind copies the parsed flag values
// into a Command.
func (r *Registry) flagSet(spec Spec) (*pflag.FlagSet, func(*Command) error) {
	fs := pflag.NewFlagSet(spec.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	binders := make([]func(*Command) error, 0, len(spec.Optional))
	for _, f := range spec.Optional {
		if f.isBool() {
			v := fs.Bool(f.Name, false, f.Usage)
			binders = append(binders, func(c *Command) error {
				return r.assign(c, f, fmt.Sprint(*v))
			})
			continue
		}
		if f.Kind == FieldPreset {
			v := fs.String(f.Name, f.Default, f.Usage)
			binders = append(binders, func(c *Command) error {
				return r.assign(c, f, *v)
			})
			continue
		}
		enum := r.enumFor(f)
		fs.Var(enum, f.Name, f.Usage+" "+enum.HelpString())
		binders = append(binders, func(c *Command) error {
			if enum.Value() == "" {
				return nil
			}
			return r.assign(c, f, enum.Value())
		})
	}

	return fs, func(c *Command) error {
		for _, b := range binders {
			if err := b(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// enumFor returns the value type that validates f.
func (r *Registry) enumFor(f Field) *EnumValue {
	switch f.Kind {
	case FieldTarget:
		return NewEnumValue("TARGET", f.Default, stringsOf(types.Targets))
	case FieldBuildType:
		return NewEnumValue("BUILD_TYPE", f.Default, stringsOf(types.BuildTypes))
	case FieldPipeline:
		return NewEnumValue("PIPELINE", f.Default, stringsOf(types.Pipelines))
	case FieldCompiler:
		return NewEnumValue("ID", f.Default, stringsOf(r.catalog.IDs()))
	default:
		return nil
	}
}

// assign validates value and stores it in the Command field f maps to.
func (r *Registry) assign(c *Command, f Field, value string) error {
	var err error
	switch f.Kind {
	case FieldTarget:
		c.Target, err = types.ParseTarget(value)
	case FieldBuildType:
		c.BuildType, err = types.ParseBuildType(value)
	case FieldPipeline:
		c.Pipeline, err = types.ParsePipeline(value)
	case FieldCompiler:
		c.RequestedCompiler, err = r.catalog.Parse(value)
	case FieldPreset:
		// "none" is the positional spelling of "no preset"
		if value != "none" {
			c.Preset = value
		}
	case FieldClean:
		c.Clean = value == "true"
	case FieldCheck:
		c.Check = value == "true"
	case FieldFix:
		c.Fix = value == "true"
	}
	if err != nil {
		return fmt.Errorf("%w (valid: %s)", err, strings.Join(r.enumFor(f).AllowedKeys(), ", "))
	}
	return nil
}

// Usage returns the usage text of one command.
func (r *Registry) Usage(name string) string {
	spec, ok := r.Lookup(name)
	if !ok {
		return r.Overview()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Usage: forge %s", spec.Name)
	if p := placeholders(spec); p != "" {
		b.WriteString(" " + p)
	}
	if len(spec.Optional) > 0 {
		b.WriteString(" [flags]")
	}
	if spec.AcceptsExtra {
		b.WriteString(" [-- CMAKE_ARGS...]")
	}
	b.WriteString("\n\n" + spec.Short + "\n")

	if len(spec.Required) > 0 {
		b.WriteString("\nArguments:\n")
		for _, f := range spec.Required {
			values := "any preset name, or none"
			if enum := r.enumFor(f); enum != nil {
				values = strings.Join(enum.AllowedKeys(), ", ")
			}
			fmt.Fprintf(&b, "  %-12s %s\n", f.Name, values)
		}
	}

	fs, _ := r.flagSet(spec)
	if flags := fs.FlagUsages(); flags != "" {
		b.WriteString("\nFlags:\n" + flags)
	}
	return b.String()
}

// Overview lists every command.
func (r *Registry) Overview() string {
	var b strings.Builder
	b.WriteString("Usage: forge <command> [arguments]\n\nCommands:\n")
	for _, s := range r.specs {
		fmt.Fprintf(&b, "  %-10s %s\n", s.Name, s.Short)
	}
	return b.String()
}

func (r *Registry) unknownCommand(name string) error {
	return forgeerrors.NewParseError("", fmt.Sprintf("unknown command %q", name), r.Overview())
}

func placeholders(spec Spec) string {
	names := make([]string, len(spec.Required))
	for i, f := range spec.Required {
		names[i] = f.Name
	}
	return strings.Join(names, " ")
}
