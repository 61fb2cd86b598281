package quality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("// x\n"), 0644))
	}
}

func TestCollectGlobsAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/main.cpp",
		"src/engine/render.hpp",
		"build/debug/gcc/all/generated.cpp",
		"third_party/imgui/imgui.cpp",
		"tools/gen.py",
	)

	f := &Files{Root: root, Exclude: []string{"build/**", "third_party/**"}}
	files, err := f.Collect([]string{"**/*.{cpp,hpp}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/engine/render.hpp", "src/main.cpp"}, files)

	py, err := f.Collect([]string{"**/*.py", "tools/*.py"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tools/gen.py"}, py, "duplicates are dropped")
}

func TestCollectTrackedOnlyOutsideRepository(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.cpp")

	f := &Files{Root: root, TrackedOnly: true}
	files, err := f.Collect([]string{"*.cpp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cpp"}, files)
}

func TestCollectTrackedOnly(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	writeFiles(t, root, "engine/src/tracked.cpp", "engine/src/scratch.cpp", "other/tracked.cpp")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("engine/src/tracked.cpp")
	require.NoError(t, err)
	_, err = wt.Add("other/tracked.cpp")
	require.NoError(t, err)

	// project root is a subdirectory of the repository
	f := &Files{Root: filepath.Join(root, "engine"), TrackedOnly: true}
	files, err := f.Collect([]string{"**/*.cpp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/tracked.cpp"}, files)
}

func TestCollectBadPattern(t *testing.T) {
	f := &Files{Root: t.TempDir()}
	_, err := f.Collect([]string{"[unclosed"})
	assert.Error(t, err)
}
