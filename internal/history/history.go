// Package history keeps a git history of a file-backed data home so earlier
// states of the stored lists can be recovered.
package history

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Snapshot when the data home is unchanged.
var ErrNothingToCommit = errors.New("nothing to snapshot")

// ErrNotEnabled is returned when the data home is not a git repository.
var ErrNotEnabled = errors.New("history is not enabled for this data home")

// Author identifies snapshot commits.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor is used when the config names no author.
var DefaultAuthor = Author{Name: "monedero", Email: "monedero@localhost"}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// ignored lists data-home paths that never enter the history.
var ignored = []string{"logs/", "*.db-journal", "*.db-wal", "*.db-shm", ".tmp-*", ".env"}

// Init turns dir into a git repository with a .gitignore for volatile files.
// It is a no-op when dir already is one.
func Init(dir string) error {
	if Enabled(dir) {
		return nil
	}
	if _, err := git(dir, "init", "--quiet"); err != nil {
		return err
	}
	gitignore := strings.Join(ignored, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

// Enabled reports whether dir is the root of a git repository.
func Enabled(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Snapshot stages every change in dir and commits it. Returns the short
// commit hash, or ErrNothingToCommit when there is nothing new. Empty author
// fields fall back to DefaultAuthor.
func Snapshot(dir, message string, author Author) (string, error) {
	if !Enabled(dir) {
		return "", ErrNotEnabled
	}
	if author.Name == "" {
		author.Name = DefaultAuthor.Name
	}
	if author.Email == "" {
		author.Email = DefaultAuthor.Email
	}
	if _, err := git(dir, "add", "-A"); err != nil {
		return "", err
	}

	status, err := git(dir, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(status) == "" {
		return "", ErrNothingToCommit
	}

	if _, err := git(dir,
		"-c", "user.name="+author.Name,
		"-c", "user.email="+author.Email,
		"commit", "--quiet", "-m", message, "--author", author.String(),
	); err != nil {
		return "", err
	}

	hash, err := git(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(hash), nil
}

// Count returns the number of snapshots recorded in dir.
func Count(dir string) (int, error) {
	if !Enabled(dir) {
		return 0, ErrNotEnabled
	}
	out, err := git(dir, "rev-list", "--count", "HEAD")
	if err != nil {
		// A repository without commits has no HEAD yet.
		return 0, nil
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d", &n); err != nil {
		return 0, fmt.Errorf("parsing commit count %q: %w", out, err)
	}
	return n, nil
}

func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
