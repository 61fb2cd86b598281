// Package vcpkg installs dependencies with vcpkg in manifest mode.
package vcpkg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ozacod/forge/internal/pkg/build/cmake"
	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// Vcpkg implements types.PackageManager. Profiles are overlay triplets.
type Vcpkg struct {
	exec types.Executor
	root string
}

// New creates a vcpkg package manager rooted at root.
func New(exec types.Executor, root string) *Vcpkg {
	return &Vcpkg{exec: exec, root: root}
}

// ResolveRoot returns the configured vcpkg root, falling back to VCPKG_ROOT.
func ResolveRoot(configured string) (string, error) {
	root := configured
	if root == "" {
		root = os.Getenv("VCPKG_ROOT")
	}
	if root == "" {
		return "", forgeerrors.ErrNoVcpkgRoot
	}
	return filepath.Abs(root)
}

func (v *Vcpkg) Name() types.Pipeline {
	return types.PipelineVcpkg
}

// Path returns the path to the vcpkg executable
func (v *Vcpkg) Path() string {
	vcpkgPath := filepath.Join(v.root, "vcpkg")
	if runtime.GOOS == "windows" {
		vcpkgPath += ".exe"
	}
	return vcpkgPath
}

func (v *Vcpkg) Install(ctx context.Context, opts types.InstallOptions) (types.Result, error) {
	if v.root == "" {
		return types.Result{ExitCode: -1}, forgeerrors.ErrNoVcpkgRoot
	}
	p := cmake.PathFor(opts.Toolchain)
	return v.exec.Run(ctx, types.Invocation{
		Name: v.Path(),
		Args: InstallArgs(p(opts.BuildDir), opts.Profile.ID, p(filepath.Dir(opts.Profile.Path))),
		Dir:  opts.SourceDir,
		Env:  Env(v.root),
	})
}

// InstallArgs builds the "vcpkg install" command line for a manifest project.
func InstallArgs(buildDir, triplet, overlayDir string) []string {
	return []string{
		"install",
		"--x-install-root=" + installedDir(buildDir),
		"--triplet=" + triplet,
		"--overlay-triplets=" + overlayDir,
	}
}

func (v *Vcpkg) ToolchainDefs(buildDir string, profile types.Profile) []string {
	return []string{
		"CMAKE_TOOLCHAIN_FILE=" + filepath.ToSlash(filepath.Join(v.root, "scripts", "buildsystems", "vcpkg.cmake")),
		"VCPKG_TARGET_TRIPLET=" + profile.ID,
		"VCPKG_OVERLAY_TRIPLETS=" + filepath.ToSlash(filepath.Dir(profile.Path)),
		"VCPKG_INSTALLED_DIR=" + filepath.ToSlash(installedDir(buildDir)),
	}
}

// Env returns the environment vcpkg runs with. Values already present in the
// process environment win, except VCPKG_ROOT which always follows root.
func Env(root string) []string {
	env := []string{"VCPKG_ROOT=" + root}
	if os.Getenv("VCPKG_FEATURE_FLAGS") == "" {
		env = append(env, "VCPKG_FEATURE_FLAGS=manifests")
	}
	if os.Getenv("VCPKG_DISABLE_REGISTRY_UPDATE") == "" {
		env = append(env, "VCPKG_DISABLE_REGISTRY_UPDATE=1")
	}
	return env
}

func installedDir(buildDir string) string {
	return filepath.Join(buildDir, "vcpkg_installed")
}
