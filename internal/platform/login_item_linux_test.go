//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginItemLinux(t *testing.T) {
	item := NewLoginItem("Gamer Timer", "/opt/gamer timer/gamertimer")
	item.baseDir = t.TempDir()

	assert.False(t, item.Enabled())
	require.NoError(t, item.Apply(true))
	assert.True(t, item.Enabled())

	content, err := os.ReadFile(filepath.Join(item.baseDir, "autostart", "gamer-timer.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `Exec="/opt/gamer timer/gamertimer" --background`)

	require.NoError(t, item.Apply(false))
	assert.False(t, item.Enabled())
	require.NoError(t, item.Apply(false), "disabling twice is fine")
}

func TestLoginItemValidation(t *testing.T) {
	assert.Error(t, NewLoginItem("", "/bin/true").Apply(true))
	assert.Error(t, NewLoginItem("Gamer Timer", "").Apply(true))
}
