// Package config loads the per-project forge configuration.
//
// The file is forge.yaml (or forge.yml / forge.toml) in the project root, or
// whatever FORGE_CONFIG points at. Every field is optional.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	forgeerrors "github.com/ozacod/forge/pkg/errors"
)

// EnvConfig overrides config file discovery.
const EnvConfig = "FORGE_CONFIG"

// FileNames are tried in order in the project directory.
var FileNames = []string{"forge.yaml", "forge.yml", "forge.toml"}

// Project represents forge.yaml
type Project struct {
	SourceDir      string            `yaml:"source_dir" toml:"source_dir"`
	BuildRoot      string            `yaml:"build_root" toml:"build_root"`
	PackageManager string            `yaml:"package_manager" toml:"package_manager"`
	CXXStandard    string            `yaml:"cxx_standard" toml:"cxx_standard"`
	Jobs           int               `yaml:"jobs" toml:"jobs"`
	Targets        map[string]string `yaml:"targets" toml:"targets"`
	CMakeArgs      []string          `yaml:"cmake_args" toml:"cmake_args"`
	BuildArgs      []string          `yaml:"build_args" toml:"build_args"`
	Profiles       Profiles          `yaml:"profiles" toml:"profiles"`
	Quality        Quality           `yaml:"quality" toml:"quality"`
	Policies       Policies          `yaml:"policies" toml:"policies"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-" toml:"-"`
	// File is the config file that was loaded, empty when defaults are used.
	File string `yaml:"-" toml:"-"`
}

// Profiles locates package-manager profiles, relative to the project root.
type Profiles struct {
	ConanDir string `yaml:"conan_dir" toml:"conan_dir"`
	VcpkgDir string `yaml:"vcpkg_triplet_dir" toml:"vcpkg_triplet_dir"`
}

// Quality configures format and lint.
type Quality struct {
	CppGlobs           []string `yaml:"cpp" toml:"cpp"`
	PythonGlobs        []string `yaml:"python" toml:"python"`
	Exclude            []string `yaml:"exclude" toml:"exclude"`
	RequiredTools      []string `yaml:"required_tools" toml:"required_tools"`
	CompileCommandsDir string   `yaml:"compile_commands_dir" toml:"compile_commands_dir"`
	// TrackedOnly limits format/lint to files tracked by git when the project
	// is a repository.
	TrackedOnly *bool `yaml:"tracked_only" toml:"tracked_only"`
}

// Policies are expr expressions over {platform, compiler, build_type, pipeline}.
type Policies struct {
	VulkanFromPackageManager string `yaml:"vulkan_from_package_manager" toml:"vulkan_from_package_manager"`
}

var cxxStandards = []string{"17", "20", "23"}

// Default returns the configuration used when no file exists.
func Default(dir string) *Project {
	p := &Project{Dir: dir}
	p.applyDefaults()
	return p
}

func (p *Project) applyDefaults() {
	if p.SourceDir == "" {
		p.SourceDir = "."
	}
	if p.BuildRoot == "" {
		p.BuildRoot = "build"
	}
	if p.PackageManager == "" {
		p.PackageManager = "conan"
	}
	if p.CXXStandard == "" {
		p.CXXStandard = "20"
	}
	if p.Profiles.ConanDir == "" {
		p.Profiles.ConanDir = "conan/profiles"
	}
	if p.Profiles.VcpkgDir == "" {
		p.Profiles.VcpkgDir = "vcpkg/triplets"
	}
	if len(p.Quality.CppGlobs) == 0 {
		p.Quality.CppGlobs = []string{"**/*.{cpp,cc,cxx,c,h,hpp,hxx,inl}"}
	}
	if len(p.Quality.PythonGlobs) == 0 {
		p.Quality.PythonGlobs = []string{"**/*.py"}
	}
	if p.Quality.Exclude == nil {
		p.Quality.Exclude = []string{"build/**", "third_party/**", "external/**", "**/vcpkg_installed/**", ".git/**"}
	}
	if p.Quality.TrackedOnly == nil {
		tracked := true
		p.Quality.TrackedOnly = &tracked
	}
}

// Load finds and loads the project config for dir.
func Load(dir string) (*Project, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return LoadFile(path)
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return Default(dir), nil
}

// LoadFile loads a config file, picking the format from its extension.
func LoadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var p Project
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, forgeerrors.NewConfigError(filepath.Base(path), err.Error(), "check the field names against the documentation")
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, forgeerrors.NewConfigError(filepath.Base(path), err.Error(), "check the field names against the documentation")
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute config path: %w", err)
	}
	p.File = abs
	p.Dir = filepath.Dir(abs)
	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks enumerated fields.
func (p *Project) Validate() error {
	switch p.PackageManager {
	case "conan", "vcpkg", "none":
	default:
		return forgeerrors.NewConfigError("package_manager", fmt.Sprintf("unknown package manager %q", p.PackageManager), "use conan, vcpkg or none")
	}
	if !slices.Contains(cxxStandards, p.CXXStandard) {
		return forgeerrors.NewConfigError("cxx_standard", fmt.Sprintf("unsupported standard %q", p.CXXStandard), "use 17, 20 or 23")
	}
	if p.Jobs < 0 {
		return forgeerrors.NewConfigError("jobs", "must not be negative", "use 0 to let the build tool decide")
	}
	for name := range p.Targets {
		switch name {
		case "engine", "game", "standalone":
		default:
			return forgeerrors.NewConfigError("targets", fmt.Sprintf("unknown target %q", name), "only engine, game and standalone can be renamed")
		}
	}
	return nil
}

// Path resolves rel against the project directory.
func (p *Project) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Dir, rel)
}

// SourcePath is the absolute CMake source directory.
func (p *Project) SourcePath() string {
	return p.Path(p.SourceDir)
}

// BuildPath is the absolute build root.
func (p *Project) BuildPath() string {
	return p.Path(p.BuildRoot)
}

// IsRequired reports whether a missing tool must fail format/lint.
func (q Quality) IsRequired(tool string) bool {
	return slices.Contains(q.RequiredTools, tool)
}
