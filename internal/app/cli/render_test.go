package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ozacod/forge/internal/pkg/quality"
	"github.com/ozacod/forge/internal/pkg/toolchain"
)

func TestRenderToolchain(t *testing.T) {
	out := RenderToolchain("spacegame", toolchain.Toolchain{
		Compiler:  toolchain.ClangMSVC,
		Platform:  toolchain.Windows,
		Generator: "Visual Studio 17 2022",
		Toolset:   "ClangCL",
		Version:   "17.0.1",
	})
	assert.Contains(t, out, "spacegame")
	assert.Contains(t, out, "clang-msvc 17.0.1")
	assert.Contains(t, out, "windows")
	assert.Contains(t, out, "Visual Studio 17 2022 -T ClangCL")

	out = RenderToolchain("", toolchain.Toolchain{Compiler: toolchain.GCC, Platform: toolchain.Linux})
	assert.NotContains(t, out, "project")
	assert.Contains(t, out, "gcc unknown")
	assert.Contains(t, out, "(cmake default)")
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(quality.Report{
		Command: "lint",
		Outcomes: []quality.Outcome{
			{Language: "cpp", Tool: quality.ClangTidy, Status: quality.FailedToolError, Files: 3, ExitCode: 1,
				Diagnostics: "a.cpp:1:1: warning: x\nb.cpp:2:2: error: y\n"},
			{Language: "python", Tool: quality.Pylint, Status: quality.SkippedToolMissing},
		},
	})
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "clang-tidy")
	assert.Contains(t, out, "exit 1")
	assert.Contains(t, out, "\n    a.cpp:1:1: warning: x\n    b.cpp:2:2: error: y\n")
	assert.Contains(t, out, quality.SkippedToolMissing.String())
}
