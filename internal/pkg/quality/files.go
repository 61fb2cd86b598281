package quality

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v6"

	"github.com/ozacod/forge/internal/pkg/msg"
)

// FileLister collects the files a tool runs over.
type FileLister interface {
	Collect(globs []string) ([]string, error)
}

// Files globs files under Root. Results are slash-separated paths relative
// to Root, sorted and without duplicates.
type Files struct {
	Root    string
	Exclude []string
	// TrackedOnly drops files git does not track. Outside a repository it
	// has no effect.
	TrackedOnly bool
}

func (f *Files) Collect(globs []string) ([]string, error) {
	fsys := os.DirFS(f.Root)

	seen := map[string]struct{}{}
	var files []string
	for _, pat := range globs {
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pat, err)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			excluded, err := f.excluded(match)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, match)
		}
	}

	if f.TrackedOnly && len(files) > 0 {
		tracked, ok, err := trackedFiles(f.Root)
		if err != nil {
			return nil, err
		}
		if ok {
			files = slices.DeleteFunc(files, func(name string) bool {
				_, isTracked := tracked[name]
				return !isTracked
			})
		}
	}

	slices.Sort(files)
	return files, nil
}

func (f *Files) excluded(name string) (bool, error) {
	for _, pat := range f.Exclude {
		matched, err := doublestar.Match(pat, name)
		if err != nil {
			return false, fmt.Errorf("bad exclude pattern %q: %w", pat, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// trackedFiles returns the index entries of the repository containing root,
// relative to root. ok is false when root is not inside a repository.
func trackedFiles(root string) (map[string]struct{}, bool, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		msg.Debug("%s is not in a git repository, using every matching file", root)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open git repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, false, fmt.Errorf("failed to open git worktree: %w", err)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read git index: %w", err)
	}

	top, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return nil, false, err
	}
	base, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, false, err
	}
	prefix, err := filepath.Rel(top, base)
	if err != nil {
		return nil, false, err
	}
	prefix = filepath.ToSlash(prefix)

	tracked := make(map[string]struct{}, len(idx.Entries))
	for _, e := range idx.Entries {
		name := e.Name
		if prefix != "." {
			rest, ok := strings.CutPrefix(name, prefix+"/")
			if !ok {
				continue
			}
			name = rest
		}
		tracked[name] = struct{}{}
	}
	return tracked, true, nil
}
