package toolchain

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozacod/forge/internal/pkg/msg"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

type fakeProbe struct {
	installed map[CompilerID]Installation
	detectErr error
	calls     int
}

func (f *fakeProbe) Detect(ctx context.Context, platform Platform) (Installation, error) {
	f.calls++
	if f.detectErr != nil {
		return Installation{}, f.detectErr
	}
	for _, id := range DefaultCatalog().ValidFor(platform) {
		if inst, ok := f.installed[id]; ok {
			return inst, nil
		}
	}
	return Installation{}, ErrNotDetected
}

func (f *fakeProbe) Installed(ctx context.Context, id CompilerID) (Installation, error) {
	f.calls++
	if inst, ok := f.installed[id]; ok {
		return inst, nil
	}
	return Installation{}, ErrNotDetected
}

func installed(ids ...CompilerID) *fakeProbe {
	p := &fakeProbe{installed: map[CompilerID]Installation{}}
	for _, id := range ids {
		p.installed[id] = Installation{ID: id, Path: "/usr/bin/" + string(id), Version: "99.0.0"}
	}
	return p
}

func TestResolveRejectsCrossPlatformWithoutProbing(t *testing.T) {
	probe := installed(MSVC, GCC)
	r := NewResolver(DefaultCatalog(), probe)

	_, err := r.Resolve(context.Background(), Request{Platform: Linux, Requested: MSVC})

	var unsupported *forgeerrors.UnsupportedCompilerError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "msvc", unsupported.Compiler)
	assert.Equal(t, "linux", unsupported.Platform)
	assert.Equal(t, []string{"gcc", "clang"}, unsupported.Supported)
	assert.Zero(t, probe.calls, "probe must not run for a cross-platform request")
}

func TestResolveRequested(t *testing.T) {
	r := NewResolver(DefaultCatalog(), installed(MinGWGCC))

	tc, err := r.Resolve(context.Background(), Request{Platform: Windows, Requested: MinGWGCC})
	require.NoError(t, err)
	assert.Equal(t, Toolchain{
		Compiler:                MinGWGCC,
		Platform:                Windows,
		Generator:               "Ninja",
		UsesPosixShellEmulation: true,
		CC:                      "gcc",
		CXX:                     "g++",
		Path:                    "/usr/bin/mingw-gcc",
		Version:                 "99.0.0",
	}, tc)
}

func TestResolveRequestedNotInstalled(t *testing.T) {
	r := NewResolver(DefaultCatalog(), installed())

	_, err := r.Resolve(context.Background(), Request{Platform: MacOS, Requested: Clang})

	var notFound *forgeerrors.CompilerNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "clang", notFound.Compiler)
}

func TestResolveAutoDetect(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		probe    *fakeProbe
		expected CompilerID
	}{
		{name: "windows prefers msvc", platform: Windows, probe: installed(MinGWGCC, MSVC), expected: MSVC},
		{name: "windows falls back to mingw", platform: Windows, probe: installed(MinGWClang), expected: MinGWClang},
		{name: "linux prefers gcc", platform: Linux, probe: installed(Clang, GCC), expected: GCC},
		{name: "macos clang", platform: MacOS, probe: installed(Clang), expected: Clang},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := NewResolver(DefaultCatalog(), tt.probe).Resolve(context.Background(), Request{Platform: tt.platform})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tc.Compiler)
			assert.Equal(t, tt.platform, tc.Platform)
		})
	}
}

func TestResolveAutoDetectNothingInstalled(t *testing.T) {
	_, err := NewResolver(DefaultCatalog(), installed()).Resolve(context.Background(), Request{Platform: Linux})

	var notFound *forgeerrors.CompilerNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, notFound.Compiler)
}

func TestResolveProbeFailure(t *testing.T) {
	probe := &fakeProbe{detectErr: errors.New("permission denied")}
	_, err := NewResolver(DefaultCatalog(), probe).Resolve(context.Background(), Request{Platform: Linux})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestResolveMinimumVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		standard string
		tooOld   bool
	}{
		{name: "new enough", version: "13.2.0", standard: "23"},
		{name: "too old for c++23", version: "11.4.0", standard: "23", tooOld: true},
		{name: "old but fine for c++17", version: "11.4.0", standard: "17"},
		{name: "no standard requested", version: "4.8", standard: ""},
		{name: "unknown standard", version: "4.8", standard: "98"},
		{name: "unparseable version is not too old", version: "", standard: "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &fakeProbe{installed: map[CompilerID]Installation{
				GCC: {ID: GCC, Path: "/usr/bin/g++", Version: tt.version},
			}}
			tc, err := NewResolver(DefaultCatalog(), probe).Resolve(context.Background(), Request{
				Platform:  Linux,
				Requested: GCC,
				Standard:  tt.standard,
			})
			if tt.tooOld {
				var tooOld *forgeerrors.CompilerVersionTooOldError
				require.ErrorAs(t, err, &tooOld)
				assert.Equal(t, tt.standard, tooOld.Standard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, GCC, tc.Compiler)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver(DefaultCatalog(), installed(MSVC, ClangMSVC))
	req := Request{Platform: Windows, Requested: ClangMSVC}

	first, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "ClangCL", first.Toolset)
}

func TestResolveUnknownVersionWarnsInsteadOfFailing(t *testing.T) {
	var stderr bytes.Buffer
	t.Cleanup(msg.SetOutput(&bytes.Buffer{}, &stderr))

	probe := &fakeProbe{installed: map[CompilerID]Installation{
		MSVC: {ID: MSVC, Path: `C:\VS\cl.exe`, Version: ""},
	}}
	tc, err := NewResolver(DefaultCatalog(), probe).Resolve(context.Background(), Request{
		Platform:  Windows,
		Requested: MSVC,
		Standard:  "20",
	})
	require.NoError(t, err)
	assert.Equal(t, MSVC, tc.Compiler)
	assert.Empty(t, tc.Version)
	assert.Contains(t, stderr.String(), "could not read the msvc version")
}
