package discovery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns match every session file format the submission parser reads
var DefaultPatterns = []string{"**/*.json", "**/*.yaml", "**/*.yml"}

// DefaultExclude skips hidden files, hidden directories and node_modules
var DefaultExclude = []string{"**/node_modules/**", "**/.*", "**/.*/**"}

// File represents a discovered session file
type File struct {
	Path    string
	RelPath string
	Size    int64
}

// FileDiscovery finds session files under a root directory
type FileDiscovery struct {
	rootPath string
	include  []string
	exclude  []string
}

// NewFileDiscovery creates a FileDiscovery. Empty include uses DefaultPatterns;
// exclude patterns are added to DefaultExclude.
func NewFileDiscovery(rootPath string, include, exclude []string) *FileDiscovery {
	if len(include) == 0 {
		include = DefaultPatterns
	}
	ex := make([]string, 0, len(DefaultExclude)+len(exclude))
	ex = append(ex, DefaultExclude...)
	ex = append(ex, exclude...)
	return &FileDiscovery{rootPath: rootPath, include: include, exclude: ex}
}

// DiscoverFiles returns matching files sorted by relative path. A file
// matched by several patterns is returned once.
func (fd *FileDiscovery) DiscoverFiles() ([]File, error) {
	for _, pattern := range append(append([]string{}, fd.include...), fd.exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}
	}

	fsys := os.DirFS(fd.rootPath)
	seen := make(map[string]bool)
	var files []File

	for _, pattern := range fd.include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] || fd.excluded(match) {
				continue
			}
			f, ok := fd.processMatch(match)
			if !ok {
				continue
			}
			seen[match] = true
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func (fd *FileDiscovery) excluded(match string) bool {
	for _, pattern := range fd.exclude {
		if ok, _ := doublestar.Match(pattern, match); ok {
			return true
		}
	}
	return false
}

// processMatch converts a glob match into a File, returning false if the match should be skipped
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	fullPath := filepath.Join(fd.rootPath, filepath.FromSlash(match))

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return File{}, false
	}

	return File{
		Path:    fullPath,
		RelPath: match,
		Size:    info.Size(),
	}, true
}

// ValidateFilePath checks that path names a readable, non-empty text file
// and returns its absolute path.
func ValidateFilePath(path string) (absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return "", fmt.Errorf("unsupported file type %q: sessions must be .json, .yaml or .yml", ext)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	if bytes.Contains(buf[:n], []byte{0}) {
		return "", fmt.Errorf("file appears to be binary, not text: %s", absPath)
	}

	return absPath, nil
}
