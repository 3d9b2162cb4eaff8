// Package dotdir resolves the .plexbot/ directory that holds config.toml, the
// terminal chat log and, by default, the transcript database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DirName = ".plexbot"

	// ChatLogFile receives logs while the full screen chat owns the terminal.
	ChatLogFile = "chat.log"

	// TranscriptsFile is the conventional name for tap.sqlite_path.
	TranscriptsFile = "transcripts.db"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute .plexbot/ directory, creating it if needed.
// The override wins, then ./.plexbot/, then ~/.plexbot/.
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.locate(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating plexbot directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Path joins name onto the resolved target directory.
func (m *Manager) Path(overrideDir, name string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(target, name), nil
}

// Resolve places a bare file name inside the target directory. Absolute
// paths, paths with a directory part and ":memory:" are returned unchanged,
// as is the empty string.
func (m *Manager) Resolve(overrideDir, p string) (string, error) {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) || strings.ContainsRune(p, filepath.Separator) || strings.ContainsRune(p, '/') {
		return p, nil
	}
	return m.Path(overrideDir, p)
}

func (m *Manager) locate(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if info, err := os.Stat(filepath.Join(cwd, DirName)); err == nil && info.IsDir() {
		return filepath.Join(cwd, DirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}
