// Package conan installs dependencies with Conan 2.
package conan

import (
	"context"
	"path/filepath"

	"github.com/ozacod/forge/internal/pkg/build/cmake"
	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
)

// DefaultBinary is used when no conan path is configured.
const DefaultBinary = "conan"

// Conan implements types.PackageManager.
type Conan struct {
	exec   types.Executor
	binary string
}

// New creates a Conan package manager. An empty binary means "conan" on PATH.
func New(exec types.Executor, binary string) *Conan {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Conan{exec: exec, binary: binary}
}

func (c *Conan) Name() types.Pipeline {
	return types.PipelineConan
}

func (c *Conan) Install(ctx context.Context, opts types.InstallOptions) (types.Result, error) {
	p := cmake.PathFor(opts.Toolchain)
	return c.exec.Run(ctx, types.Invocation{
		Name: c.binary,
		Args: InstallArgs(p(opts.SourceDir), p(opts.BuildDir), p(opts.Profile.Path), opts.BuildType),
		Dir:  opts.SourceDir,
	})
}

// InstallArgs builds the "conan install" command line. The same profile is
// used for the host and build contexts.
func InstallArgs(sourceDir, buildDir, profilePath string, buildType types.BuildType) []string {
	return []string{
		"install", sourceDir,
		"--output-folder", buildDir,
		"--build=missing",
		"-pr:h", profilePath,
		"-pr:b", profilePath,
		"-s", "build_type=" + buildType.CMakeConfig(),
	}
}

func (c *Conan) ToolchainDefs(buildDir string, _ types.Profile) []string {
	return []string{"CMAKE_TOOLCHAIN_FILE=" + filepath.ToSlash(filepath.Join(buildDir, "conan_toolchain.cmake"))}
}
