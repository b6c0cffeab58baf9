package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/canvaslist-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/canvaslist.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}
}

func TestLayoutPath(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	dir, err := LayoutPath("json")
	if err != nil {
		t.Fatalf("LayoutPath(json) error: %v", err)
	}
	if dir != filepath.Join(state, "canvaslist", "layouts") {
		t.Fatalf("LayoutPath(json) = %q", dir)
	}

	db, err := LayoutPath("sqlite")
	if err != nil {
		t.Fatalf("LayoutPath(sqlite) error: %v", err)
	}
	if db != filepath.Join(state, "canvaslist", "layouts.db") {
		t.Fatalf("LayoutPath(sqlite) = %q", db)
	}
}

func TestStateDir_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	got, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() error: %v", err)
	}
	if got != filepath.Join(home, ".local", "state", "canvaslist") {
		t.Fatalf("StateDir() = %q", got)
	}
}
