// Package build defines the values and collaborator interfaces shared by the
// build handlers.
//
// Handlers never talk to cmake, conan or vcpkg directly. They go through the
// CMake and PackageManager interfaces, which in turn run subprocesses through
// an Executor. Success of any step is decided by the subprocess exit code alone.
package build

import (
	"context"
	"fmt"
	"slices"

	"github.com/ozacod/forge/internal/pkg/toolchain"
)

// BuildType is a CMake configuration.
type BuildType string

const (
	Debug          BuildType = "debug"
	Release        BuildType = "release"
	RelWithDebInfo BuildType = "relwithdebinfo"
	MinSizeRel     BuildType = "minsizerel"
)

// BuildTypes lists every accepted build type.
var BuildTypes = []BuildType{Debug, Release, RelWithDebInfo, MinSizeRel}

// CMakeConfig returns the CMAKE_BUILD_TYPE / --config spelling.
func (bt BuildType) CMakeConfig() string {
	switch bt {
	case Release:
		return "Release"
	case RelWithDebInfo:
		return "RelWithDebInfo"
	case MinSizeRel:
		return "MinSizeRel"
	default:
		return "Debug"
	}
}

func ParseBuildType(s string) (BuildType, error) {
	bt := BuildType(s)
	if slices.Contains(BuildTypes, bt) {
		return bt, nil
	}
	return "", fmt.Errorf("unknown build type %q", s)
}

// Target is a buildable part of the project.
type Target string

const (
	TargetEngine     Target = "engine"
	TargetGame       Target = "game"
	TargetStandalone Target = "standalone"
	TargetAll        Target = "all"
)

// Targets lists every accepted target.
var Targets = []Target{TargetEngine, TargetGame, TargetStandalone, TargetAll}

func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if slices.Contains(Targets, t) {
		return t, nil
	}
	return "", fmt.Errorf("unknown target %q", s)
}

// Pipeline selects how third-party dependencies are installed.
type Pipeline string

const (
	PipelineConan Pipeline = "conan"
	PipelineVcpkg Pipeline = "vcpkg"
	PipelineNone  Pipeline = "none"
)

// Pipelines lists every accepted pipeline.
var Pipelines = []Pipeline{PipelineConan, PipelineVcpkg, PipelineNone}

func ParsePipeline(s string) (Pipeline, error) {
	p := Pipeline(s)
	if slices.Contains(Pipelines, p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown pipeline %q", s)
}

// Request carries everything a handler needs. The Toolchain is resolved once
// by the router and never re-detected by a handler.
type Request struct {
	Target    Target
	BuildType BuildType
	Pipeline  Pipeline // empty means the project default
	Preset    string   // CMake configure preset, empty for none
	Clean     bool
	ExtraArgs []string
	Toolchain toolchain.Toolchain
}

// Invocation is one external command.
type Invocation struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the current environment
	// Progress renders cmake "[ NN%]" lines as a progress bar instead of
	// echoing them. Display only.
	Progress bool
}

func (inv Invocation) String() string {
	return fmt.Sprintf("%s %v", inv.Name, inv.Args)
}

// Result is the outcome of a finished subprocess.
type Result struct {
	ExitCode int
	// Output is a bounded tail of the combined stdout/stderr.
	Output string
}

// Succeeded reports whether the tool exited with code 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Executor runs external commands. The error return is reserved for failures
// to start the process; a non-zero exit is reported through Result.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ConfigureOptions are the inputs of a CMake configure step.
type ConfigureOptions struct {
	SourceDir string
	BuildDir  string
	BuildType BuildType
	Preset    string
	Toolchain toolchain.Toolchain
	ExtraDefs []string
	ExtraArgs []string
}

// CMake is the cmake/ctest/cpack collaborator.
type CMake interface {
	Configure(ctx context.Context, opts ConfigureOptions) (Result, error)
	Build(ctx context.Context, buildDir string, target Target, buildType BuildType, jobs int, extra []string) (Result, error)
	Test(ctx context.Context, buildDir string, buildType BuildType) (Result, error)
	Package(ctx context.Context, buildDir string, buildType BuildType) (Result, error)
}

// Profile is a package-manager profile on disk.
type Profile struct {
	ID     string
	Path   string
	Exists bool
}

// InstallOptions are the inputs of a dependency install.
type InstallOptions struct {
	SourceDir string
	BuildDir  string
	Profile   Profile
	BuildType BuildType
	Toolchain toolchain.Toolchain
}

// PackageManager installs third-party dependencies (conan or vcpkg).
type PackageManager interface {
	Name() Pipeline
	Install(ctx context.Context, opts InstallOptions) (Result, error)
	// ToolchainDefs returns the cmake definitions that make configure pick up
	// the installed dependencies.
	ToolchainDefs(buildDir string, profile Profile) []string
}
