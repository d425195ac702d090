package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/focusd/internal/types"
)

func TestPublishAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	w := NewWriter(path)

	err := w.Publish(types.Snapshot{
		Active:     true,
		State:      "working",
		Remaining:  "24:59",
		Workspaces: []int64{1, 2},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap types.Snapshot
	require.NoError(t, sonic.Unmarshal(data, &snap))
	assert.True(t, snap.Active)
	assert.Equal(t, "working", snap.State)
	assert.Equal(t, "24:59", snap.Remaining)
	assert.Equal(t, []int64{1, 2}, snap.Workspaces)

	require.NoError(t, w.Clear())
	_, err = os.ReadFile(path)
	assert.Error(t, err)

	// Clearing an already-missing file is fine.
	assert.NoError(t, w.Clear())
}

func TestPublishNilWorkspaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	w := NewWriter(path)

	require.NoError(t, w.Publish(types.Snapshot{State: "inactive", Remaining: "00:00"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"workspaces":[]`)
}
