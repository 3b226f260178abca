// Package readme reads a repository's README and pulls features and
// technology names out of its text.
package readme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the README looked up at the repository root.
const FileName = "README.md"

var ErrNotFound = errors.New("README.md not found")

// Read returns the README text found at root.
func Read(root string) (string, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrNotFound, root)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// RepoName is the final path segment of root.
func RepoName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return filepath.Base(abs)
}
