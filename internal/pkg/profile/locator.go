// Package profile finds package-manager profiles on disk.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	types "github.com/ozacod/forge/internal/pkg/build/interfaces"
	"github.com/ozacod/forge/internal/pkg/toolchain"
	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// Default profile locations, relative to the project root.
const (
	ConanDir = "conan/profiles"
	VcpkgDir = "vcpkg/triplets"
	VcpkgExt = ".cmake"
)

// Locator maps a toolchain and build type to a profile file.
//
// Existence is checked on every call; nothing is cached between lookups.
type Locator struct {
	FS   fs.FS  // rooted at the project directory
	Root string // project directory on the host, used to build Profile.Path
	Dir  string // slash-separated directory inside FS
	Ext  string
}

// NewLocator creates a Locator over the project directory root.
func NewLocator(root, dir, ext string) *Locator {
	return &Locator{FS: os.DirFS(root), Root: root, Dir: dir, Ext: ext}
}

// ID returns "{compilerId}-{buildType}".
func ID(compiler toolchain.CompilerID, buildType types.BuildType) string {
	return fmt.Sprintf("%s-%s", compiler, buildType)
}

// Locate returns the profile for exactly (tc.Compiler, buildType). A missing
// file is a ProfileNotFoundError; no other profile is ever returned instead.
func (l *Locator) Locate(tc toolchain.Toolchain, buildType types.BuildType) (types.Profile, error) {
	id := ID(tc.Compiler, buildType)
	name := path.Join(filepath.ToSlash(l.Dir), id+l.Ext)
	hostPath := filepath.Join(l.Root, filepath.FromSlash(name))

	info, err := fs.Stat(l.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Profile{ID: id, Path: hostPath}, &forgeerrors.ProfileNotFoundError{ProfileID: id, Path: hostPath}
		}
		return types.Profile{ID: id, Path: hostPath}, fmt.Errorf("failed to check profile %s: %w", hostPath, err)
	}
	if info.IsDir() {
		return types.Profile{ID: id, Path: hostPath}, &forgeerrors.ProfileNotFoundError{ProfileID: id, Path: hostPath}
	}

	return types.Profile{ID: id, Path: hostPath, Exists: true}, nil
}
