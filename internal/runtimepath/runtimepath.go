package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/canvaslist-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/canvaslist-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "canvaslist.sock"), nil
}

// StateDir returns the directory for state that must survive a reboot:
// $XDG_STATE_HOME/canvaslist, falling back to ~/.local/state/canvaslist.
func StateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, "canvaslist"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", "canvaslist"), nil
}

// LayoutPath returns the default layout store location for a backend: a
// directory of JSON files, or a SQLite database file.
func LayoutPath(backend string) (string, error) {
	stateDir, err := StateDir()
	if err != nil {
		return "", err
	}
	if backend == "sqlite" {
		return filepath.Join(stateDir, "layouts.db"), nil
	}
	return filepath.Join(stateDir, "layouts"), nil
}
