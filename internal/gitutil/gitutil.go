// Package gitutil resolves the suite repository root so modkit can be run
// from any directory inside the suite checkout. It uses go-git rather than
// shelling out, so no git binary is required.
package gitutil

import (
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
)

// RepoRoot returns the root of the git repository enclosing path.
// An empty path means the current working directory.
func RepoRoot(path string) (string, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return worktree.Filesystem.Root(), nil
}

// IsRepository reports whether path (or the cwd when empty) is inside a
// git repository.
func IsRepository(path string) bool {
	_, err := RepoRoot(path)
	return err == nil
}
