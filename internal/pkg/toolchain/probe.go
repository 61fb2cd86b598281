package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Variables for mocking in tests
var (
	execLookPath = exec.LookPath
	execOutput   = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).CombinedOutput()
	}
)

var (
	msvcVersionRe    = regexp.MustCompile(`Version\s+(\d+\.\d+(?:\.\d+)*)`)
	genericVersionRe = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)
)

// SystemProbe finds compilers on PATH.
type SystemProbe struct {
	catalog *Catalog
}

func NewSystemProbe(catalog *Catalog) *SystemProbe {
	return &SystemProbe{catalog: catalog}
}

// Detect walks the platform's compilers in preference order and returns the first installed one.
func (p *SystemProbe) Detect(ctx context.Context, platform Platform) (Installation, error) {
	for _, id := range p.catalog.ValidFor(platform) {
		inst, err := p.Installed(ctx, id)
		if err == nil {
			return inst, nil
		}
		if !errors.Is(err, ErrNotDetected) {
			return Installation{}, err
		}
	}
	return Installation{}, ErrNotDetected
}

// Installed looks the compiler's probe executable up on PATH and reads its version.
func (p *SystemProbe) Installed(ctx context.Context, id CompilerID) (Installation, error) {
	entry, err := p.catalog.Lookup(id)
	if err != nil {
		return Installation{}, err
	}
	path, err := execLookPath(entry.Probe)
	if err != nil {
		return Installation{}, ErrNotDetected
	}

	// cl prints its banner on stderr and exits non-zero without input files,
	// so the output is used regardless of the exit status.
	out, _ := execOutput(ctx, path, entry.ProbeArgs...)
	if entry.ImpostorBanner != "" && strings.Contains(strings.ToLower(string(out)), entry.ImpostorBanner) {
		// e.g. Xcode installs Apple clang as /usr/bin/g++
		return Installation{}, ErrNotDetected
	}
	return Installation{ID: id, Path: path, Version: parseVersion(id, string(out))}, nil
}

func parseVersion(id CompilerID, output string) string {
	re := genericVersionRe
	if id == MSVC {
		re = msvcVersionRe
	}
	m := re.FindStringSubmatch(output)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// String is used in debug output.
func (i Installation) String() string {
	return fmt.Sprintf("%s %s (%s)", i.ID, i.Version, i.Path)
}
