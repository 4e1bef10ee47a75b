// Package git lists practice session files that changed in a git work tree.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dotcommander/praxy/internal/discovery"
)

// StagedSessions returns absolute paths of staged session files under rootPath.
// Returns an empty slice if rootPath is not in a git repository.
func StagedSessions(rootPath string) ([]string, error) {
	if !IsRepo(rootPath) {
		return []string{}, nil
	}

	output, err := run(rootPath, "diff", "--name-only", "--relative", "--staged")
	if err != nil {
		return nil, err
	}
	return filterSessions(output, rootPath), nil
}

// ChangedSessions returns absolute paths of session files with uncommitted
// changes (staged and unstaged) under rootPath. In a repository without
// commits every tracked session file counts as changed.
func ChangedSessions(rootPath string) ([]string, error) {
	if !IsRepo(rootPath) {
		return []string{}, nil
	}

	if _, err := run(rootPath, "rev-parse", "HEAD"); err != nil {
		output, err := run(rootPath, "ls-files")
		if err != nil {
			return nil, err
		}
		return filterSessions(output, rootPath), nil
	}

	output, err := run(rootPath, "diff", "--name-only", "--relative", "HEAD")
	if err != nil {
		return nil, err
	}
	return filterSessions(output, rootPath), nil
}

// IsRepo checks if the given directory is within a git repository
func IsRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	return cmd.Run() == nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// filterSessions keeps existing session files from git's path listing and
// returns them as absolute paths. Deleted files are reported by git too.
func filterSessions(gitOutput, rootPath string) []string {
	files := []string{}
	for _, line := range strings.Split(gitOutput, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isSessionFile(line) {
			continue
		}

		absPath, err := filepath.Abs(filepath.Join(rootPath, filepath.FromSlash(line)))
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err != nil {
			continue
		}
		files = append(files, absPath)
	}
	return files
}

// isSessionFile applies the same patterns as directory discovery
func isSessionFile(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range discovery.DefaultExclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}
	for _, pattern := range discovery.DefaultPatterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}
