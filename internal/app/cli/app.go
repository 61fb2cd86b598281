package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	globalconfig "github.com/ozacod/forge/internal/config"
	"github.com/ozacod/forge/internal/pkg/build"
	"github.com/ozacod/forge/internal/pkg/build/cmake"
	"github.com/ozacod/forge/internal/pkg/build/conan"
	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/build/vcpkg"
	"github.com/ozacod/forge/internal/pkg/msg"
	"github.com/ozacod/forge/internal/pkg/pipeline"
	"github.com/ozacod/forge/internal/pkg/profile"
	"github.com/ozacod/forge/internal/pkg/quality"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	"github.com/ozacod/forge/pkg/config"
)

// EnvRunID is exported to every tool forge runs.
const EnvRunID = "FORGE_RUN_ID"

// App implements Handlers on top of the pipeline service and the quality
// checker.
type App struct {
	service *pipeline.Service
	checker *quality.Checker
	out     io.Writer
}

func NewApp(service *pipeline.Service, checker *quality.Checker, out io.Writer) *App {
	return &App{service: service, checker: checker, out: out}
}

func (a *App) Configure(ctx context.Context, req types.Request) error {
	return a.service.Configure(ctx, req)
}

func (a *App) Build(ctx context.Context, req types.Request) error {
	return a.service.Build(ctx, req)
}

func (a *App) Install(ctx context.Context, req types.Request) error {
	return a.service.Install(ctx, req)
}

func (a *App) Test(ctx context.Context, req types.Request) error {
	return a.service.Test(ctx, req)
}

func (a *App) Package(ctx context.Context, req types.Request) error {
	return a.service.Package(ctx, req)
}

func (a *App) Clean(ctx context.Context) error {
	return a.service.Clean(ctx)
}

func (a *App) Format(ctx context.Context, check bool) error {
	report := a.checker.Format(ctx, check)
	fmt.Fprint(a.out, RenderReport(report))
	return report.Err()
}

func (a *App) Lint(ctx context.Context, fix bool) error {
	report := a.checker.Lint(ctx, fix)
	fmt.Fprint(a.out, RenderReport(report))
	return report.Err()
}

// Bootstrap loads the configuration for the project in dir and wires a Router
// around reg running real tools on the host platform.
func Bootstrap(dir string, reg *Registry) (*Router, error) {
	project, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	global, err := globalconfig.LoadGlobal()
	if err != nil {
		return nil, err
	}
	platform, err := toolchain.HostPlatform()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	msg.Debug("run %s: project %s (config %q)", runID, project.Dir, project.File)

	runner := build.NewRunner(global.Verbose || msg.DebugEnabled(), EnvRunID+"="+runID)

	cm := cmake.New(runner)
	cm.TargetNames = make(map[types.Target]string, len(project.Targets))
	for name, cmakeName := range project.Targets {
		cm.TargetNames[types.Target(name)] = cmakeName
	}

	// a missing vcpkg root only matters when the vcpkg pipeline runs
	vcpkgRoot, err := vcpkg.ResolveRoot(global.VcpkgRoot)
	if err != nil {
		msg.Debug("vcpkg: %v", err)
	}

	service, err := pipeline.New(project, pipeline.Deps{
		CMake: cm,
		Managers: []types.PackageManager{
			conan.New(runner, global.ConanPath),
			vcpkg.New(runner, vcpkgRoot),
		},
		Locators: map[types.Pipeline]pipeline.ProfileLocator{
			types.PipelineConan: profile.NewLocator(project.Dir, project.Profiles.ConanDir, ""),
			types.PipelineVcpkg: profile.NewLocator(project.Dir, project.Profiles.VcpkgDir, profile.VcpkgExt),
		},
	})
	if err != nil {
		return nil, err
	}

	files := &quality.Files{
		Root:        project.Dir,
		Exclude:     project.Quality.Exclude,
		TrackedOnly: *project.Quality.TrackedOnly,
	}
	opts := quality.Options{
		Dir:         project.Dir,
		CppGlobs:    project.Quality.CppGlobs,
		PythonGlobs: project.Quality.PythonGlobs,
		Required:    project.Quality,
	}
	if project.Quality.CompileCommandsDir != "" {
		opts.CompileCommandsDir = project.Path(project.Quality.CompileCommandsDir)
	}
	checker := quality.NewChecker(runner, files, opts)

	name := cmake.ProjectName(project.SourcePath())
	if name == "" {
		name = filepath.Base(project.Dir)
	}

	return NewRouter(RouterOptions{
		Registry: reg,
		Resolver: toolchain.NewResolver(reg.catalog, toolchain.NewSystemProbe(reg.catalog)),
		Handlers: NewApp(service, checker, os.Stdout),
		Platform: platform,
		Standard: project.CXXStandard,
		Project:  name,
		RunID:    runID,
	}), nil
}
