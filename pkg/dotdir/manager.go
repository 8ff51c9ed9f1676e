// Package dotdir manages the .sparrow/ and ~/.sparrow directories.
//
// The directory holds config.toml, the default audit database and the
// pointer to the most recent chat session.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the sparrow directory.
	dirName = ".sparrow"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .sparrow/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.sparrow/ dir
//  3. Home ~/.sparrow/ dir
//
// It returns an empty string when no directory was found.
func (m *Manager) Target(overrideDir string) (string, error) {
	switch {
	case overrideDir != "":
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating sparrow directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}

		dir := filepath.Join(home, dirName)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return "", nil
		}
		return dir, nil
	}
}

// Init returns the Target directory, creating ~/.sparrow/ when no directory
// exists yet.
func (m *Manager) Init(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir = filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating sparrow directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDirExists checks whether a .sparrow/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
