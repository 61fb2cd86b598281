package root

import (
	"context"
	"os"

	"github.com/ozacod/forge/internal/app/cli"
	"github.com/ozacod/forge/internal/pkg/msg"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// Execute runs forge for the project in the working directory and returns
// the process exit code. Help and usage errors never read the project
// configuration.
func Execute(ctx context.Context, args []string) int {
	reg := cli.NewRegistry(toolchain.DefaultCatalog())
	if _, err := reg.Parse(args); err != nil {
		// reports help or the usage error; nothing is dispatched
		return cli.NewRouter(cli.RouterOptions{Registry: reg}).Run(ctx, args)
	}

	wd, err := os.Getwd()
	if err != nil {
		msg.Error("%v", err)
		return forgeerrors.ExitFailure
	}

	router, err := cli.Bootstrap(wd, reg)
	if err != nil {
		msg.Error("%v", err)
		return forgeerrors.ExitCode(err)
	}
	return router.Run(ctx, args)
}
