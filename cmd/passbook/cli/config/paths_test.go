package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		dir, err := Dir()
		require.NoError(t, err)
		assert.Equal(t, "/custom/config/passbook", dir)
	})

	t.Run("defaults to ~/.config when XDG_CONFIG_HOME not set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")

		home, err := os.UserHomeDir()
		require.NoError(t, err)

		dir, err := Dir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "passbook"), dir)
	})
}

func TestFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path, err := File()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/passbook/config.yaml", path)
}

func TestDefaultMap(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Sign.Chain = "/etc/passbook/wwdr.pem"
	cfg.Sign.Password = "secret"

	m := cfg.Map()
	assert.Equal(t, "sha1", m["digest"])
	assert.Equal(t, "deflate", m["compression"])
	assert.Equal(t, "auto", m["progress"])
	assert.Equal(t, map[string]any{"chain": "/etc/passbook/wwdr.pem"}, m["sign"])
}
