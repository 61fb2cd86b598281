package vcpkg

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

type recordingExecutor struct {
	calls []types.Invocation
	code  int
}

func (r *recordingExecutor) Run(_ context.Context, inv types.Invocation) (types.Result, error) {
	r.calls = append(r.calls, inv)
	return types.Result{ExitCode: r.code}, nil
}

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		env        string
		expectErr  bool
		expected   string
	}{
		{name: "config wins", configured: "/opt/vcpkg", env: "/env/vcpkg", expected: "/opt/vcpkg"},
		{name: "env fallback", env: "/env/vcpkg", expected: "/env/vcpkg"},
		{name: "nothing configured", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VCPKG_ROOT", tt.env)
			root, err := ResolveRoot(tt.configured)
			if tt.expectErr {
				assert.True(t, errors.Is(err, forgeerrors.ErrNoVcpkgRoot))
				return
			}
			require.NoError(t, err)
			want, _ := filepath.Abs(tt.expected)
			assert.Equal(t, want, root)
		})
	}
}

func TestInstall(t *testing.T) {
	rec := &recordingExecutor{}
	root := filepath.Join("opt", "vcpkg")
	v := New(rec, root)
	assert.Equal(t, types.PipelineVcpkg, v.Name())

	profile := types.Profile{ID: "gcc-release", Path: filepath.Join("proj", "vcpkg", "triplets", "gcc-release.cmake"), Exists: true}
	res, err := v.Install(context.Background(), types.InstallOptions{
		SourceDir: "proj",
		BuildDir:  filepath.Join("build", "release", "gcc", "all"),
		Profile:   profile,
		BuildType: types.Release,
		Toolchain: toolchain.Toolchain{Compiler: toolchain.GCC},
	})
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	require.Len(t, rec.calls, 1)
	inv := rec.calls[0]
	want := filepath.Join(root, "vcpkg")
	if runtime.GOOS == "windows" {
		want += ".exe"
	}
	assert.Equal(t, want, inv.Name)
	assert.Equal(t, "proj", inv.Dir)
	assert.Equal(t, []string{
		"install",
		"--x-install-root=" + filepath.Join("build", "release", "gcc", "all", "vcpkg_installed"),
		"--triplet=gcc-release",
		"--overlay-triplets=" + filepath.Join("proj", "vcpkg", "triplets"),
	}, inv.Args)
	assert.Contains(t, inv.Env, "VCPKG_ROOT="+root)
}

func TestInstallWithoutRoot(t *testing.T) {
	rec := &recordingExecutor{}
	_, err := New(rec, "").Install(context.Background(), types.InstallOptions{})
	assert.ErrorIs(t, err, forgeerrors.ErrNoVcpkgRoot)
	assert.Empty(t, rec.calls)
}

func TestToolchainDefs(t *testing.T) {
	v := New(&recordingExecutor{}, "/opt/vcpkg")
	defs := v.ToolchainDefs("/b", types.Profile{ID: "clang-debug", Path: "/p/vcpkg/triplets/clang-debug.cmake"})
	assert.Equal(t, []string{
		"CMAKE_TOOLCHAIN_FILE=/opt/vcpkg/scripts/buildsystems/vcpkg.cmake",
		"VCPKG_TARGET_TRIPLET=clang-debug",
		"VCPKG_OVERLAY_TRIPLETS=/p/vcpkg/triplets",
		"VCPKG_INSTALLED_DIR=/b/vcpkg_installed",
	}, defs)
}

func TestEnvKeepsUserSettings(t *testing.T) {
	t.Setenv("VCPKG_FEATURE_FLAGS", "binarycaching")
	t.Setenv("VCPKG_DISABLE_REGISTRY_UPDATE", "")

	env := Env("/opt/vcpkg")
	assert.Contains(t, env, "VCPKG_ROOT=/opt/vcpkg")
	assert.NotContains(t, env, "VCPKG_FEATURE_FLAGS=manifests")
	assert.Contains(t, env, "VCPKG_DISABLE_REGISTRY_UPDATE=1")
}
