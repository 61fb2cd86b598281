package toolchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/ozacod/forge/internal/pkg/msg"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// ErrNotDetected is returned by a Probe when the compiler is not installed.
var ErrNotDetected = errors.New("compiler not detected")

// Installation is a compiler found on the machine.
type Installation struct {
	ID      CompilerID
	Path    string
	Version string
}

// Probe inspects the machine for installed compilers.
type Probe interface {
	// Detect returns the preferred compiler installed for platform.
	Detect(ctx context.Context, platform Platform) (Installation, error)
	// Installed reports whether a specific compiler is installed.
	Installed(ctx context.Context, id CompilerID) (Installation, error)
}

// Toolchain is a resolved compiler + platform pairing. It is built once per
// invocation and passed by value to every handler.
type Toolchain struct {
	Compiler                CompilerID
	Platform                Platform
	Generator               string
	Toolset                 string
	UsesPosixShellEmulation bool
	CC                      string
	CXX                     string
	Path                    string
	Version                 string
}

// Request is the input to Resolve.
type Request struct {
	Platform  Platform
	Requested CompilerID // empty means auto-detect
	// Standard is the C++ standard the project needs ("17", "20", "23").
	// Empty disables the minimum-version check.
	Standard string
}

// Resolver turns a Request into a Toolchain.
type Resolver struct {
	catalog *Catalog
	probe   Probe
}

func NewResolver(catalog *Catalog, probe Probe) *Resolver {
	return &Resolver{catalog: catalog, probe: probe}
}

// Resolve validates the request against the catalog and the probe. A compiler
// requested for the wrong platform is rejected before any probing happens.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Toolchain, error) {
	var (
		inst Installation
		err  error
	)

	if req.Requested == "" {
		inst, err = r.probe.Detect(ctx, req.Platform)
		if errors.Is(err, ErrNotDetected) {
			return Toolchain{}, &forgeerrors.CompilerNotFoundError{Platform: string(req.Platform)}
		}
		if err != nil {
			return Toolchain{}, fmt.Errorf("failed to detect compiler: %w", err)
		}
	} else {
		entry, err := r.catalog.Lookup(req.Requested)
		if err != nil {
			return Toolchain{}, err
		}
		if !entry.ValidOn(req.Platform) {
			return Toolchain{}, &forgeerrors.UnsupportedCompilerError{
				Compiler:  string(req.Requested),
				Platform:  string(req.Platform),
				Supported: idsToStrings(r.catalog.ValidFor(req.Platform)),
			}
		}
		inst, err = r.probe.Installed(ctx, req.Requested)
		if errors.Is(err, ErrNotDetected) {
			return Toolchain{}, &forgeerrors.CompilerNotFoundError{Compiler: string(req.Requested), Platform: string(req.Platform)}
		}
		if err != nil {
			return Toolchain{}, fmt.Errorf("failed to probe %s: %w", req.Requested, err)
		}
	}

	entry, err := r.catalog.Lookup(inst.ID)
	if err != nil {
		return Toolchain{}, err
	}
	if !entry.ValidOn(req.Platform) {
		return Toolchain{}, fmt.Errorf("probe reported %s, which is not valid on %s", inst.ID, req.Platform)
	}

	if err := checkMinVersion(entry, inst, req.Standard); err != nil {
		return Toolchain{}, err
	}

	return Toolchain{
		Compiler:                entry.ID,
		Platform:                req.Platform,
		Generator:               entry.Generator,
		Toolset:                 entry.Toolset,
		UsesPosixShellEmulation: entry.UsesPosixShellEmulation,
		CC:                      entry.CC,
		CXX:                     entry.CXX,
		Path:                    inst.Path,
		Version:                 inst.Version,
	}, nil
}

func checkMinVersion(entry CatalogEntry, inst Installation, standard string) error {
	if standard == "" {
		return nil
	}
	minimum, ok := entry.MinVersions[standard]
	if !ok {
		return nil
	}
	required, err := version.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q for %s: %w", minimum, entry.ID, err)
	}
	found, err := version.NewVersion(inst.Version)
	if err != nil {
		msg.Warn("could not read the %s version from %s, skipping the C++%s minimum (%s) check", entry.ID, inst.Path, standard, minimum)
		return nil
	}
	if found.LessThan(required) {
		return &forgeerrors.CompilerVersionTooOldError{
			Compiler: string(entry.ID),
			Found:    inst.Version,
			Required: minimum,
			Standard: standard,
		}
	}
	return nil
}

func idsToStrings(ids []CompilerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
