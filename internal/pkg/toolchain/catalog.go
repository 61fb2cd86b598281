// Package toolchain knows which compilers forge supports, where they are valid,
// and how a requested compiler is turned into a concrete Toolchain.
package toolchain

import (
	"fmt"
	"runtime"
	"slices"
)

// CompilerID identifies a supported compiler flavour.
type CompilerID string

const (
	MSVC       CompilerID = "msvc"
	ClangMSVC  CompilerID = "clang-msvc"
	MinGWGCC   CompilerID = "mingw-gcc"
	MinGWClang CompilerID = "mingw-clang"
	GCC        CompilerID = "gcc"
	Clang      CompilerID = "clang"
)

func (id CompilerID) String() string { return string(id) }

// Platform is an operating system forge can build on.
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	MacOS   Platform = "macos"
)

func (p Platform) String() string { return string(p) }

// Platforms lists every supported platform.
var Platforms = []Platform{Windows, Linux, MacOS}

// HostPlatform returns the platform forge is running on.
func HostPlatform() (Platform, error) {
	return platformForGOOS(runtime.GOOS)
}

func platformForGOOS(goos string) (Platform, error) {
	switch goos {
	case "windows":
		return Windows, nil
	case "linux":
		return Linux, nil
	case "darwin":
		return MacOS, nil
	}
	return "", fmt.Errorf("unsupported host operating system %q", goos)
}

// CatalogEntry describes one compiler and what it implies for a build.
type CatalogEntry struct {
	ID        CompilerID
	Platforms []Platform
	// Generator is the CMake generator; empty means CMake's default.
	Generator string
	// Toolset is passed to CMake with -T (e.g. ClangCL for clang-msvc).
	Toolset string
	// UsesPosixShellEmulation is true for MinGW toolchains running under an
	// MSYS-style shell, which expects forward-slash paths.
	UsesPosixShellEmulation bool
	// CC and CXX are the compiler executables probed on PATH. Empty for
	// Visual Studio generators, where CMake locates the compiler.
	CC  string
	CXX string
	// Probe is the executable used to detect the compiler and its version.
	Probe     string
	ProbeArgs []string
	// ImpostorBanner marks a probe executable that is really another
	// compiler when its lower-cased version banner contains this text.
	ImpostorBanner string
	MinVersions    map[string]string // C++ standard -> minimum compiler version
}

// ValidOn reports whether the compiler can target p.
func (e CatalogEntry) ValidOn(p Platform) bool {
	return slices.Contains(e.Platforms, p)
}

// Catalog is the read-only table of supported compilers.
type Catalog struct {
	entries map[CompilerID]CatalogEntry
	order   []CompilerID // auto-detection preference
}

// NewCatalog builds a catalog; the entry order is the auto-detection preference.
func NewCatalog(entries ...CatalogEntry) *Catalog {
	c := &Catalog{entries: make(map[CompilerID]CatalogEntry, len(entries))}
	for _, e := range entries {
		if _, dup := c.entries[e.ID]; dup {
			panic(fmt.Sprintf("duplicate catalog entry %q", e.ID))
		}
		c.entries[e.ID] = e
		c.order = append(c.order, e.ID)
	}
	return c
}

var defaultCatalog = NewCatalog(
	CatalogEntry{
		ID:          MSVC,
		Platforms:   []Platform{Windows},
		Generator:   "Visual Studio 17 2022",
		Probe:       "cl",
		MinVersions: map[string]string{"17": "19.14", "20": "19.29", "23": "19.37"},
	},
	CatalogEntry{
		ID:          ClangMSVC,
		Platforms:   []Platform{Windows},
		Generator:   "Visual Studio 17 2022",
		Toolset:     "ClangCL",
		Probe:       "clang-cl",
		ProbeArgs:   []string{"--version"},
		MinVersions: map[string]string{"17": "5", "20": "13", "23": "17"},
	},
	CatalogEntry{
		ID:                      MinGWGCC,
		Platforms:               []Platform{Windows},
		Generator:               "Ninja",
		UsesPosixShellEmulation: true,
		CC:                      "gcc",
		CXX:                     "g++",
		Probe:                   "g++",
		ProbeArgs:               []string{"--version"},
		ImpostorBanner:          "clang",
		MinVersions:             map[string]string{"17": "7", "20": "10", "23": "13"},
	},
	CatalogEntry{
		ID:                      MinGWClang,
		Platforms:               []Platform{Windows},
		Generator:               "Ninja",
		UsesPosixShellEmulation: true,
		CC:                      "clang",
		CXX:                     "clang++",
		Probe:                   "clang++",
		ProbeArgs:               []string{"--version"},
		MinVersions:             map[string]string{"17": "5", "20": "13", "23": "17"},
	},
	CatalogEntry{
		ID:             GCC,
		Platforms:      []Platform{Linux, MacOS},
		CC:             "gcc",
		CXX:            "g++",
		Probe:          "g++",
		ProbeArgs:      []string{"--version"},
		ImpostorBanner: "clang",
		MinVersions:    map[string]string{"17": "7", "20": "10", "23": "13"},
	},
	CatalogEntry{
		ID:          Clang,
		Platforms:   []Platform{Linux, MacOS},
		CC:          "clang",
		CXX:         "clang++",
		Probe:       "clang++",
		ProbeArgs:   []string{"--version"},
		MinVersions: map[string]string{"17": "5", "20": "13", "23": "17"},
	},
)

// DefaultCatalog returns the compiled-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id CompilerID) (CatalogEntry, error) {
	e, ok := c.entries[id]
	if !ok {
		return CatalogEntry{}, fmt.Errorf("unknown compiler %q", id)
	}
	return e, nil
}

// ValidFor returns the compilers that can target p, in detection preference order.
func (c *Catalog) ValidFor(p Platform) []CompilerID {
	var ids []CompilerID
	for _, id := range c.order {
		if c.entries[id].ValidOn(p) {
			ids = append(ids, id)
		}
	}
	return ids
}

// IDs returns every compiler in the catalog.
func (c *Catalog) IDs() []CompilerID {
	return slices.Clone(c.order)
}

// Parse validates a compiler identifier against the catalog.
func (c *Catalog) Parse(s string) (CompilerID, error) {
	id := CompilerID(s)
	if _, ok := c.entries[id]; !ok {
		return "", fmt.Errorf("unknown compiler %q", s)
	}
	return id, nil
}
