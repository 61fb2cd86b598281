package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// Version is the forge version
const Version = "0.3.0"

// NewRootCommand builds the cobra tree from the registry. Cobra only routes
// by name: each subcommand hands its raw arguments to run, which parses them
// with Registry.Parse.
func NewRootCommand(reg *Registry, run func(rawArgs []string) error) *cobra.Command {
	root := &cobra.Command{
		Use:   "forge",
		Short: "Configure, build, test and package the engine template",
		Long: `forge - build driver for the C++ engine/game template

Wraps CMake, Conan or vcpkg, CTest, CPack, clang-format, clang-tidy, black and pylint
behind one command table.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return forgeerrors.NewParseError("", fmt.Sprintf("unknown command %q", args[0]), reg.Overview())
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return forgeerrors.NewParseError("", "missing command", reg.Overview())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	for _, name := range reg.Names() {
		spec, _ := reg.Lookup(name)
		use := spec.Name
		if p := placeholders(spec); p != "" {
			use += " " + p
		}

		root.AddCommand(&cobra.Command{
			Use:                use,
			Short:              spec.Short,
			DisableFlagParsing: true,
			ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
				if len(args) >= len(spec.Required) {
					return nil, cobra.ShellCompDirectiveNoFileComp
				}
				if enum := reg.enumFor(spec.Required[len(args)]); enum != nil {
					return enum.CompletionFunc()(nil, args, "")
				}
				return nil, cobra.ShellCompDirectiveNoFileComp
			},
			RunE: func(_ *cobra.Command, args []string) error {
				return run(append([]string{spec.Name}, args...))
			},
		})
	}
	return root
}
