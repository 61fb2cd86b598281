package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for better error handling and user feedback

// Exit codes returned by the forge binary
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// MaxDiagnosticLines bounds the tool output attached to a failure
const MaxDiagnosticLines = 40

// ParseError represents a malformed or incomplete command line
type ParseError struct {
	Command string
	Message string
	Usage   string
}

func (e *ParseError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Message)
	}
	return e.Message
}

// NewParseError creates a new parse error
func NewParseError(command, message, usage string) *ParseError {
	return &ParseError{Command: command, Message: message, Usage: usage}
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field   string
	Message string
	Hint    string
}

func (e *ConfigError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("config error: %s - %s\nHint: %s", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("config error: %s - %s", e.Field, e.Message)
}

// NewConfigError creates a new config error
func NewConfigError(field, message, hint string) *ConfigError {
	return &ConfigError{Field: field, Message: message, Hint: hint}
}

// UnsupportedCompilerError is returned when a compiler is requested on a
// platform it cannot target.
type UnsupportedCompilerError struct {
	Compiler  string
	Platform  string
	Supported []string
}

func (e *UnsupportedCompilerError) Error() string {
	return fmt.Sprintf("compiler %q is not supported on %s (supported: %s)",
		e.Compiler, e.Platform, strings.Join(e.Supported, ", "))
}

// CompilerNotFoundError is returned when no usable compiler is installed.
type CompilerNotFoundError struct {
	Compiler string // empty when auto-detection found nothing
	Platform string
}

func (e *CompilerNotFoundError) Error() string {
	if e.Compiler == "" {
		return fmt.Sprintf("no supported compiler detected on %s", e.Platform)
	}
	return fmt.Sprintf("compiler %q is not installed on %s", e.Compiler, e.Platform)
}

// CompilerVersionTooOldError is returned when the installed compiler is older
// than the minimum required for the configured C++ standard.
type CompilerVersionTooOldError struct {
	Compiler string
	Found    string
	Required string
	Standard string
}

func (e *CompilerVersionTooOldError) Error() string {
	return fmt.Sprintf("%s %s is too old for C++%s (need >= %s)", e.Compiler, e.Found, e.Standard, e.Required)
}

// ProfileNotFoundError is returned when the package-manager profile for a
// toolchain and build type does not exist on disk.
type ProfileNotFoundError struct {
	ProfileID string
	Path      string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("package manager profile %q not found at %s", e.ProfileID, e.Path)
}

// BuildDirectoryMissingError is returned when a command needs a configured
// build directory that does not exist yet.
type BuildDirectoryMissingError struct {
	Path string
}

func (e *BuildDirectoryMissingError) Error() string {
	return fmt.Sprintf("build directory %s does not exist\nHint: run forge configure (or forge build) for this target, build type and compiler first", e.Path)
}

// Kind classifies a failed external tool invocation
type Kind string

const (
	KindConfigureFailed         Kind = "configure"
	KindDependencyInstallFailed Kind = "dependency install"
	KindBuildFailed             Kind = "build"
	KindTestFailed              Kind = "test"
	KindPackageFailed           Kind = "package"
	KindToolInvocationFailed    Kind = "tool invocation"
)

// ToolFailedError represents an external tool that exited with a non-zero code
type ToolFailedError struct {
	Kind        Kind
	Tool        string
	ExitCode    int
	Diagnostics string
}

func (e *ToolFailedError) Error() string {
	msg := fmt.Sprintf("%s failed: %s exited with code %d", e.Kind, e.Tool, e.ExitCode)
	if e.Diagnostics != "" {
		return msg + "\n" + e.Diagnostics
	}
	return msg
}

// NewToolFailedError creates a new tool failure, keeping only the tail of the output
func NewToolFailedError(kind Kind, tool string, exitCode int, output string) *ToolFailedError {
	return &ToolFailedError{Kind: kind, Tool: tool, ExitCode: exitCode, Diagnostics: Tail(output, MaxDiagnosticLines)}
}

// ToolError represents external tool-related errors
type ToolError struct {
	Tool       string
	Message    string
	InstallCmd string
}

func (e *ToolError) Error() string {
	if e.InstallCmd != "" {
		return fmt.Sprintf("%s: %s\nInstall with: %s", e.Tool, e.Message, e.InstallCmd)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// NewToolError creates a new tool error
func NewToolError(tool, message, installCmd string) *ToolError {
	return &ToolError{Tool: tool, Message: message, InstallCmd: installCmd}
}

// Common errors
var (
	ErrNoVcpkgRoot = errors.New("vcpkg_root not configured. Set it in ~/.config/forge/config.yaml or export VCPKG_ROOT")
)

// IsParseError checks if error is a parse error
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsConfigError checks if error is a config error
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsToolError checks if error is a tool error
func IsToolError(err error) bool {
	var toolErr *ToolError
	return errors.As(err, &toolErr)
}

// IsUnsupportedCompiler checks if error is a compiler requested for the wrong platform
func IsUnsupportedCompiler(err error) bool {
	var unsupported *UnsupportedCompilerError
	return errors.As(err, &unsupported)
}

// IsProfileNotFound checks if error is a missing profile
func IsProfileNotFound(err error) bool {
	var profErr *ProfileNotFoundError
	return errors.As(err, &profErr)
}

// FailureKind returns the kind of the first tool failure wrapped in err
func FailureKind(err error) (Kind, bool) {
	var failed *ToolFailedError
	if errors.As(err, &failed) {
		return failed.Kind, true
	}
	return "", false
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsParseError(err), IsUnsupportedCompiler(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Tail returns at most the last n lines of s
func Tail(s string, n int) string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return "...\n" + strings.Join(lines[len(lines)-n:], "\n")
}
