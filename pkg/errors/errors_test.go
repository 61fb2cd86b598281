package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: ExitOK},
		{name: "parse error", err: NewParseError("build", "missing TARGET", "usage"), expected: ExitUsage},
		{name: "wrapped parse error", err: fmt.Errorf("cli: %w", NewParseError("", "unknown command", "")), expected: ExitUsage},
		{name: "compiler for another platform", err: &UnsupportedCompilerError{Compiler: "msvc", Platform: "linux"}, expected: ExitUsage},
		{name: "compiler not installed", err: &CompilerNotFoundError{Compiler: "clang", Platform: "linux"}, expected: ExitFailure},
		{name: "profile missing", err: &ProfileNotFoundError{ProfileID: "gcc-debug"}, expected: ExitFailure},
		{name: "tool failed", err: NewToolFailedError(KindBuildFailed, "cmake", 2, ""), expected: ExitFailure},
		{name: "plain error", err: errors.New("boom"), expected: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestTail(t *testing.T) {
	assert.Equal(t, "", Tail("", 5))
	assert.Equal(t, "a\nb", Tail("a\nb\n", 5))

	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	got := Tail(strings.Join(lines, "\n"), 3)
	assert.Equal(t, "...\nline 7\nline 8\nline 9", got)
}

func TestToolFailedError(t *testing.T) {
	err := NewToolFailedError(KindDependencyInstallFailed, "conan", 1, "ERROR: version conflict\n")
	assert.Contains(t, err.Error(), "dependency install failed")
	assert.Contains(t, err.Error(), "exited with code 1")
	assert.Contains(t, err.Error(), "version conflict")

	kind, ok := FailureKind(fmt.Errorf("install: %w", err))
	assert.True(t, ok)
	assert.Equal(t, KindDependencyInstallFailed, kind)

	_, ok = FailureKind(errors.New("other"))
	assert.False(t, ok)
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&UnsupportedCompilerError{Compiler: "msvc", Platform: "linux", Supported: []string{"gcc", "clang"}}).Error(), "gcc, clang")
	assert.Contains(t, (&CompilerNotFoundError{Platform: "linux"}).Error(), "no supported compiler")
	assert.Contains(t, (&CompilerNotFoundError{Compiler: "clang", Platform: "macos"}).Error(), `"clang" is not installed`)
	assert.Contains(t, (&CompilerVersionTooOldError{Compiler: "gcc", Found: "11.4.0", Required: "13", Standard: "23"}).Error(), "C++23")
	assert.True(t, IsProfileNotFound(fmt.Errorf("x: %w", &ProfileNotFoundError{ProfileID: "msvc-release"})))
	assert.True(t, IsConfigError(NewConfigError("build_root", "empty", "")))
	assert.True(t, IsToolError(NewToolError("cmake", "not found", "")))
}
