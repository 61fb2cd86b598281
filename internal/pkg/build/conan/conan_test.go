package conan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/toolchain"
)

type recordingExecutor struct {
	calls []types.Invocation
	code  int
}

func (r *recordingExecutor) Run(_ context.Context, inv types.Invocation) (types.Result, error) {
	r.calls = append(r.calls, inv)
	return types.Result{ExitCode: r.code, Output: "ERROR: version conflict"}, nil
}

func TestInstallArgs(t *testing.T) {
	args := InstallArgs(".", "build/release/msvc/engine", "conan/profiles/msvc-release", types.Release)
	assert.Equal(t, []string{
		"install", ".",
		"--output-folder", "build/release/msvc/engine",
		"--build=missing",
		"-pr:h", "conan/profiles/msvc-release",
		"-pr:b", "conan/profiles/msvc-release",
		"-s", "build_type=Release",
	}, args)
}

func TestInstallReportsExitCode(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{name: "success", code: 0},
		{name: "dependency conflict", code: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingExecutor{code: tt.code}
			c := New(rec, "")
			res, err := c.Install(context.Background(), types.InstallOptions{
				SourceDir: ".",
				BuildDir:  "b",
				Profile:   types.Profile{ID: "gcc-debug", Path: "conan/profiles/gcc-debug", Exists: true},
				BuildType: types.Debug,
				Toolchain: toolchain.Toolchain{Compiler: toolchain.GCC},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.ExitCode)
			require.Len(t, rec.calls, 1)
			assert.Equal(t, DefaultBinary, rec.calls[0].Name)
		})
	}
}

func TestMinGWPathsUseForwardSlashes(t *testing.T) {
	rec := &recordingExecutor{}
	c := New(rec, "/tools/conan")
	buildDir := filepath.Join("proj", "build", "debug", "mingw-gcc", "all")
	profile := filepath.Join("proj", "conan", "profiles", "mingw-gcc-debug")
	_, err := c.Install(context.Background(), types.InstallOptions{
		SourceDir: "proj",
		BuildDir:  buildDir,
		Profile:   types.Profile{ID: "mingw-gcc-debug", Path: profile},
		BuildType: types.Debug,
		Toolchain: toolchain.Toolchain{Compiler: toolchain.MinGWGCC, UsesPosixShellEmulation: true},
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "/tools/conan", rec.calls[0].Name)
	assert.Contains(t, rec.calls[0].Args, "proj/build/debug/mingw-gcc/all")
	assert.Contains(t, rec.calls[0].Args, "proj/conan/profiles/mingw-gcc-debug")
}

func TestToolchainDefs(t *testing.T) {
	c := New(&recordingExecutor{}, "")
	assert.Equal(t, types.PipelineConan, c.Name())
	assert.Equal(t, []string{"CMAKE_TOOLCHAIN_FILE=/b/conan_toolchain.cmake"}, c.ToolchainDefs("/b", types.Profile{}))
}
