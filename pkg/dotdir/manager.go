// Package dotdir resolves the .nexus/ directory that holds config.toml and,
// for the file storage provider, the persisted memory records.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName = ".nexus"

	// MemoryDirName is the default subdirectory for profile and session records.
	MemoryDirName = "memory"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .nexus/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.nexus/ dir
//  3. Home ~/.nexus/ dir
//
// If none is found an empty string is returned.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating nexus directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, dirName)) {
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if isDir(filepath.Join(home, dirName)) {
		return filepath.Join(home, dirName), nil
	}

	return "", nil
}

// Ensure behaves like Target but creates ~/.nexus/ when nothing was resolved.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil || target != "" {
		return target, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating nexus directory %s: %w", dir, err)
	}
	return dir, nil
}

// Subdir returns <target>/<name>, creating both as needed.
func (m *Manager) Subdir(overrideDir, name string) (string, error) {
	target, err := m.Ensure(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
