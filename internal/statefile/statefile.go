package statefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/focusd/internal/types"
)

// Writer mirrors session snapshots to a JSON file for status widgets and
// bars to poll. Writes go through a temp file and rename so readers never
// observe a partial snapshot. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns the state file location under the user runtime dir.
func DefaultPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}
	return filepath.Join(runtimeDir, "focusd-state.json")
}

// NewWriter creates a writer targeting the given path, or DefaultPath when
// empty.
func NewWriter(path string) *Writer {
	if path == "" {
		path = DefaultPath()
	}
	return &Writer{path: path}
}

// Path returns the state file location.
func (w *Writer) Path() string {
	return w.path
}

// Publish writes the snapshot to the state file.
func (w *Writer) Publish(snap types.Snapshot) error {
	if snap.Workspaces == nil {
		snap.Workspaces = []int64{}
	}

	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Clear removes the state file. Missing files are not an error.
func (w *Writer) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := os.Remove(w.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
