package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/meiri-hq/meiri-yaowen/internal/config"
	"github.com/meiri-hq/meiri-yaowen/internal/logger"
)

// Committer stages, commits and pushes the digest file. Every failure
// is logged and reported as a boolean; a broken push must never crash
// the run.
type Committer struct {
	cfg config.GitConfig
	log logger.Logger
}

// NewCommitter builds a Committer for the configured repository.
func NewCommitter(cfg config.GitConfig, log logger.Logger) *Committer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Committer{cfg: cfg, log: log}
}

// Commit commits and pushes path if the repository reports it as
// modified or untracked. Returns false when there is nothing to commit
// or when any step fails. Pushing uses the invoking process's ambient
// credentials.
func (c *Committer) Commit(ctx context.Context, path string) bool {
	committed, err := c.commit(ctx, path)
	if err != nil {
		c.log.ErrorObj("digest commit failed", "publish_git_error", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return false
	}
	return committed
}

func (c *Committer) commit(ctx context.Context, path string) (bool, error) {
	repo, err := git.PlainOpen(c.cfg.Dir)
	if err != nil {
		return false, fmt.Errorf("open repo %s: %w", c.cfg.Dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("worktree: %w", err)
	}

	rel, err := repoRelative(c.cfg.Dir, path)
	if err != nil {
		return false, err
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}

	if !needsCommit(status, rel) {
		c.log.InfoObj("nothing to commit", "publish_git_clean", map[string]any{
			"path": rel,
		})
		return false, nil
	}

	if _, err := wt.Add(rel); err != nil {
		return false, fmt.Errorf("stage %s: %w", rel, err)
	}

	now := time.Now()
	msg := fmt.Sprintf(c.cfg.MessageTemplate, now.Format("2006-01-02"))
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.cfg.AuthorName,
			Email: c.cfg.AuthorEmail,
			When:  now,
		},
	})
	if err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	refspec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", c.cfg.Branch, c.cfg.Branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: c.cfg.Remote,
		RefSpecs:   []gitconfig.RefSpec{refspec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("push %s/%s: %w", c.cfg.Remote, c.cfg.Branch, err)
	}

	c.log.InfoObj("digest committed", "publish_git_ok", map[string]any{
		"path":   rel,
		"commit": hash.String(),
	})
	return true, nil
}

// needsCommit reports whether the file shows up as modified or
// untracked in either the worktree or the index. A file absent from
// the status map is clean.
func needsCommit(status git.Status, rel string) bool {
	st, ok := status[rel]
	if !ok || st == nil {
		return false
	}
	for _, code := range []git.StatusCode{st.Worktree, st.Staging} {
		switch code {
		case git.Modified, git.Untracked, git.Added:
			return true
		}
	}
	return false
}

// repoRelative converts path to the slash-separated form go-git status
// entries use.
func repoRelative(repoDir, path string) (string, error) {
	absRepo, err := filepath.Abs(repoDir)
	if err != nil {
		return "", fmt.Errorf("resolve repo dir: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	rel, err := filepath.Rel(absRepo, absPath)
	if err != nil {
		return "", fmt.Errorf("path %s is outside repo %s: %w", path, repoDir, err)
	}
	return filepath.ToSlash(rel), nil
}
