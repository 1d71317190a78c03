// Package sandbox confines destructive filesystem operations to the local
// working directory of a release line.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath checks that name, joined to root, stays inside root after
// symlinks are resolved. It returns the resolved absolute path.
func ValidatePath(root, name string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving working directory symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, name))

	// The file may already be gone, so resolve as much of it as exists.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", name, err)
	}

	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the working directory '%s'", name, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// path and appends the rest unchanged.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}
	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, filepath.Base(path)), nil
}

// Remove deletes name from root. Symlinks are removed, never followed out of
// root.
func Remove(root, name string) error {
	target := filepath.Join(root, name)
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if filepath.Dir(filepath.Clean(target)) != filepath.Clean(root) {
			return fmt.Errorf("refusing to remove '%s': not directly inside the working directory", name)
		}
		return os.Remove(target)
	}

	resolved, err := ValidatePath(root, name)
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

// RemoveIfExists is Remove that treats a missing file as success. It reports
// whether a file was removed.
func RemoveIfExists(root, name string) (bool, error) {
	err := Remove(root, name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureDir creates the working directory if needed.
func EnsureDir(root string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating working directory %s: %w", root, err)
	}
	return nil
}
