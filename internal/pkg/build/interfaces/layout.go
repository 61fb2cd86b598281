package build

import (
	"path/filepath"

	"github.com/ozacod/forge/internal/pkg/toolchain"
)

// BuildDirectory is the on-disk location of one (build type, compiler, target) tuple.
type BuildDirectory struct {
	Root       string
	BuildType  BuildType
	CompilerID toolchain.CompilerID
	Target     Target
}

// Path returns root/buildType/compilerId/target.
func (d BuildDirectory) Path() string {
	return ComputeBuildDir(d.Root, d.BuildType, d.CompilerID, d.Target)
}

// ComputeBuildDir derives a build directory from its inputs only.
func ComputeBuildDir(root string, buildType BuildType, compilerID toolchain.CompilerID, target Target) string {
	return filepath.Join(root, string(buildType), string(compilerID), string(target))
}
