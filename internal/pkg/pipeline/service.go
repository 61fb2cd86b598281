// Package pipeline implements the configure, build, install, test, package
// and clean handlers.
//
// Every handler receives an already resolved toolchain and derives the build
// directory from (build root, build type, compiler, target). Tool success is
// decided by exit code only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/msg"
	"github.com/ozacod/forge/internal/pkg/policy"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	"github.com/ozacod/forge/pkg/config"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// EngineTargetDefinition tells the project which part to generate.
const EngineTargetDefinition = "ENGINE_BUILD_TARGET"

// ProfileLocator finds the profile for a toolchain and build type.
type ProfileLocator interface {
	Locate(tc toolchain.Toolchain, buildType types.BuildType) (types.Profile, error)
}

// Deps are the collaborators a Service drives.
type Deps struct {
	CMake    types.CMake
	Managers []types.PackageManager
	Locators map[types.Pipeline]ProfileLocator
}

// Service runs the build handlers for one project.
type Service struct {
	project  *config.Project
	cmake    types.CMake
	managers map[types.Pipeline]types.PackageManager
	locators map[types.Pipeline]ProfileLocator
	vulkan   *policy.Policy
}

// New creates a Service. It fails if the project's policies do not compile.
func New(project *config.Project, deps Deps) (*Service, error) {
	vulkan, err := policy.Compile(project.Policies.VulkanFromPackageManager)
	if err != nil {
		return nil, forgeerrors.NewConfigError("policies.vulkan_from_package_manager", err.Error(), `e.g. platform != "macos"`)
	}

	managers := make(map[types.Pipeline]types.PackageManager, len(deps.Managers))
	for _, m := range deps.Managers {
		managers[m.Name()] = m
	}

	return &Service{
		project:  project,
		cmake:    deps.CMake,
		managers: managers,
		locators: deps.Locators,
		vulkan:   vulkan,
	}, nil
}

// BuildDir returns the build directory for req.
func (s *Service) BuildDir(req types.Request) string {
	return types.BuildDirectory{
		Root:       s.project.BuildPath(),
		BuildType:  req.BuildType,
		CompilerID: req.Toolchain.Compiler,
		Target:     req.Target,
	}.Path()
}

// Pipeline returns the dependency pipeline req runs with.
func (s *Service) Pipeline(req types.Request) types.Pipeline {
	if req.Pipeline != "" {
		return req.Pipeline
	}
	return types.Pipeline(s.project.PackageManager)
}

// Configure installs dependencies and runs the cmake configure step.
func (s *Service) Configure(ctx context.Context, req types.Request) error {
	dir := s.BuildDir(req)
	if err := s.configure(ctx, req, dir); err != nil {
		return err
	}
	msg.Success("Configured %s", dir)
	return nil
}

// Build configures, then builds. With req.Clean the build directory is
// removed first.
func (s *Service) Build(ctx context.Context, req types.Request) error {
	dir := s.BuildDir(req)

	if req.Clean {
		msg.Info("Removing %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clean build directory: %w", err)
		}
	}

	if err := s.configure(ctx, req, dir); err != nil {
		return err
	}

	msg.Info("Building %s (%s)", req.Target, req.BuildType)
	res, err := s.cmake.Build(ctx, dir, req.Target, req.BuildType, s.project.Jobs, s.project.BuildArgs)
	if err := check(forgeerrors.KindBuildFailed, "cmake", res, err); err != nil {
		return err
	}

	msg.Success("Built %s in %s", req.Target, dir)
	return nil
}

// Install installs third-party dependencies only. The profile must exist.
func (s *Service) Install(ctx context.Context, req types.Request) error {
	dir := s.BuildDir(req)
	pipeline := s.Pipeline(req)
	if pipeline == types.PipelineNone {
		msg.Warn("package_manager is none, nothing to install")
		return nil
	}

	if _, err := s.installDependencies(ctx, req, dir); err != nil {
		return err
	}
	msg.Success("Installed %s dependencies into %s", pipeline, dir)
	return nil
}

// Test runs ctest in an existing build directory.
func (s *Service) Test(ctx context.Context, req types.Request) error {
	dir, err := s.existingBuildDir(req)
	if err != nil {
		return err
	}

	res, err := s.cmake.Test(ctx, dir, req.BuildType)
	if err := check(forgeerrors.KindTestFailed, "ctest", res, err); err != nil {
		return err
	}
	msg.Success("Tests passed")
	return nil
}

// Package runs cpack in an existing build directory.
func (s *Service) Package(ctx context.Context, req types.Request) error {
	dir, err := s.existingBuildDir(req)
	if err != nil {
		return err
	}

	res, err := s.cmake.Package(ctx, dir, req.BuildType)
	if err := check(forgeerrors.KindPackageFailed, "cpack", res, err); err != nil {
		return err
	}
	msg.Success("Packaged %s", req.Target)
	return nil
}

// Clean removes the whole build root.
func (s *Service) Clean(_ context.Context) error {
	root := s.project.BuildPath()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		msg.Info("Nothing to clean")
		return nil
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove %s: %w", root, err)
	}
	msg.Success("Removed %s", root)
	return nil
}

func (s *Service) configure(ctx context.Context, req types.Request, dir string) error {
	defs, err := s.installDependencies(ctx, req, dir)
	if err != nil {
		return err
	}

	vulkanDef, err := s.vulkanDefinition(req)
	if err != nil {
		return err
	}
	defs = append(defs, EngineTargetDefinition+"="+string(req.Target), vulkanDef)

	extra := append(append([]string{}, s.project.CMakeArgs...), req.ExtraArgs...)

	msg.Info("Configuring %s with %s", req.Target, req.Toolchain.Compiler)
	res, err := s.cmake.Configure(ctx, types.ConfigureOptions{
		SourceDir: s.project.SourcePath(),
		BuildDir:  dir,
		BuildType: req.BuildType,
		Preset:    req.Preset,
		Toolchain: req.Toolchain,
		ExtraDefs: defs,
		ExtraArgs: extra,
	})
	return check(forgeerrors.KindConfigureFailed, "cmake", res, err)
}

// installDependencies runs the package manager and returns the cmake
// definitions that point configure at the installed packages.
func (s *Service) installDependencies(ctx context.Context, req types.Request, dir string) ([]string, error) {
	pipeline := s.Pipeline(req)
	if pipeline == types.PipelineNone {
		return nil, nil
	}

	manager, ok := s.managers[pipeline]
	if !ok {
		return nil, forgeerrors.NewConfigError("package_manager", fmt.Sprintf("no %s integration available", pipeline), "")
	}
	locator, ok := s.locators[pipeline]
	if !ok {
		return nil, forgeerrors.NewConfigError("profiles", fmt.Sprintf("no profile directory for %s", pipeline), "")
	}

	prof, err := locator.Locate(req.Toolchain, req.BuildType)
	if err != nil {
		return nil, err
	}

	msg.Info("Installing dependencies with %s (profile %s)", pipeline, prof.ID)
	res, err := manager.Install(ctx, types.InstallOptions{
		SourceDir: s.project.SourcePath(),
		BuildDir:  dir,
		Profile:   prof,
		BuildType: req.BuildType,
		Toolchain: req.Toolchain,
	})
	if err := check(forgeerrors.KindDependencyInstallFailed, string(pipeline), res, err); err != nil {
		return nil, err
	}

	return manager.ToolchainDefs(dir, prof), nil
}

func (s *Service) vulkanDefinition(req types.Request) (string, error) {
	pipeline := s.Pipeline(req)
	if pipeline == types.PipelineNone {
		return policy.Definition(policy.VulkanDefinition, false), nil
	}
	on, err := s.vulkan.Eval(policy.Env{
		Platform:  string(req.Toolchain.Platform),
		Compiler:  string(req.Toolchain.Compiler),
		BuildType: string(req.BuildType),
		Pipeline:  string(pipeline),
	})
	if err != nil {
		return "", forgeerrors.NewConfigError("policies.vulkan_from_package_manager", err.Error(), "")
	}
	return policy.Definition(policy.VulkanDefinition, on), nil
}

func (s *Service) existingBuildDir(req types.Request) (string, error) {
	dir := s.BuildDir(req)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &forgeerrors.BuildDirectoryMissingError{Path: dir}
	}
	return dir, nil
}

// check turns an executor result into the error taxonomy.
func check(kind forgeerrors.Kind, tool string, res types.Result, err error) error {
	if err != nil {
		if errors.Is(err, forgeerrors.ErrNoVcpkgRoot) {
			return err
		}
		return forgeerrors.NewToolError(tool, err.Error(), "")
	}
	if !res.Succeeded() {
		return forgeerrors.NewToolFailedError(kind, tool, res.ExitCode, res.Output)
	}
	return nil
}
