// Package cmake drives cmake, ctest and cpack through an Executor.
package cmake

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/toolchain"
)

// Tool names
const (
	CMakeBin = "cmake"
	CTestBin = "ctest"
	CPackBin = "cpack"
)

// CMake implements types.CMake.
type CMake struct {
	exec types.Executor
	// TargetNames maps a forge target to the CMake target that builds it.
	// Targets missing from the map build the target of the same name.
	TargetNames map[types.Target]string
}

// New creates a CMake collaborator running tools through exec.
func New(exec types.Executor) *CMake {
	return &CMake{exec: exec}
}

func (c *CMake) Configure(ctx context.Context, opts types.ConfigureOptions) (types.Result, error) {
	return c.exec.Run(ctx, types.Invocation{Name: CMakeBin, Args: ConfigureArgs(opts)})
}

func (c *CMake) Build(ctx context.Context, buildDir string, target types.Target, buildType types.BuildType, jobs int, extra []string) (types.Result, error) {
	args := BuildArgs(buildDir, c.targetName(target), buildType, jobs, extra)
	return c.exec.Run(ctx, types.Invocation{Name: CMakeBin, Args: args, Progress: true})
}

func (c *CMake) Test(ctx context.Context, buildDir string, buildType types.BuildType) (types.Result, error) {
	return c.exec.Run(ctx, types.Invocation{Name: CTestBin, Args: TestArgs(buildDir, buildType)})
}

func (c *CMake) Package(ctx context.Context, buildDir string, buildType types.BuildType) (types.Result, error) {
	return c.exec.Run(ctx, types.Invocation{Name: CPackBin, Args: PackageArgs(buildDir, buildType)})
}

func (c *CMake) targetName(t types.Target) string {
	if t == types.TargetAll {
		return ""
	}
	if name, ok := c.TargetNames[t]; ok && name != "" {
		return name
	}
	return string(t)
}

// ConfigureArgs builds the cmake configure command line. It depends on its
// argument only.
func ConfigureArgs(opts types.ConfigureOptions) []string {
	tc := opts.Toolchain
	p := PathFor(tc)

	args := []string{"-S", p(opts.SourceDir), "-B", p(opts.BuildDir)}
	if opts.Preset != "" {
		args = append(args, "--preset", opts.Preset)
	}
	if tc.Generator != "" {
		args = append(args, "-G", tc.Generator)
	}
	if tc.Toolset != "" {
		args = append(args, "-T", tc.Toolset)
	}
	args = append(args, "-DCMAKE_BUILD_TYPE="+opts.BuildType.CMakeConfig())

	// Visual Studio generators pick the compiler from the toolset
	if !IsVisualStudio(tc.Generator) {
		if tc.CC != "" {
			args = append(args, "-DCMAKE_C_COMPILER="+tc.CC)
		}
		if tc.CXX != "" {
			args = append(args, "-DCMAKE_CXX_COMPILER="+tc.CXX)
		}
	}

	for _, def := range opts.ExtraDefs {
		args = append(args, "-D"+def)
	}
	return append(args, opts.ExtraArgs...)
}

// BuildArgs builds the "cmake --build" command line. An empty target builds
// everything; jobs <= 0 lets the native tool choose.
func BuildArgs(buildDir, target string, buildType types.BuildType, jobs int, extra []string) []string {
	args := []string{"--build", buildDir, "--config", buildType.CMakeConfig()}
	if target != "" {
		args = append(args, "--target", target)
	}
	args = append(args, "--parallel")
	if jobs > 0 {
		args = append(args, strconv.Itoa(jobs))
	}
	if len(extra) > 0 {
		args = append(args, "--")
		args = append(args, extra...)
	}
	return args
}

func TestArgs(buildDir string, buildType types.BuildType) []string {
	return []string{"--test-dir", buildDir, "-C", buildType.CMakeConfig(), "--output-on-failure"}
}

func PackageArgs(buildDir string, buildType types.BuildType) []string {
	return []string{
		"--config", filepath.Join(buildDir, "CPackConfig.cmake"),
		"-C", buildType.CMakeConfig(),
		"-B", filepath.Join(buildDir, "package"),
	}
}

// IsVisualStudio reports whether generator is a Visual Studio generator.
func IsVisualStudio(generator string) bool {
	return strings.HasPrefix(generator, "Visual Studio")
}

// PathFor returns the path translation for tc: mingw toolchains run under a
// POSIX shell and want forward slashes.
func PathFor(tc toolchain.Toolchain) func(string) string {
	if tc.UsesPosixShellEmulation {
		return filepath.ToSlash
	}
	return func(s string) string { return s }
}

var projectRe = regexp.MustCompile(`project\s*\(\s*([^\s\)]+)`)

// ProjectName reads the project() name from sourceDir/CMakeLists.txt.
func ProjectName(sourceDir string) string {
	data, err := os.ReadFile(filepath.Join(sourceDir, "CMakeLists.txt"))
	if err != nil {
		return ""
	}

	// Look for: project(PROJECT_NAME ...)
	matches := projectRe.FindStringSubmatch(string(data))
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}
