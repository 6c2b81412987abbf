// Package gitinfo stamps reports with the commit under validation.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) IsGitRepo(targetPath string) bool {
	_, err := git.PlainOpenWithOptions(targetPath, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// CommitHash returns the HEAD commit of the repository containing targetPath.
// Validation targets are usually subdirectories of the repo, so the .git
// directory is searched upward.
func (g *GitInfoAdapter) CommitHash(targetPath string) (string, error) {
	repo, err := git.PlainOpenWithOptions(targetPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
