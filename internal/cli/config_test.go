package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/crypticarchive/archive/pkg/archive"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv(archive.EnvScheme, "")
	t.Setenv(archive.EnvHost, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ConfigVersion, cfg.Version)
	assert.Equal(t, archive.DefaultScheme, cfg.Scheme)
	assert.Equal(t, archive.DefaultHost, cfg.Host)
	assert.Empty(t, cfg.SessionID)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv(archive.EnvScheme, "http")
	t.Setenv(archive.EnvHost, "localhost:3000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.ArchiveConfig().BaseURL())
}

func TestConfigRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", DefaultConfigFile)
	cfg := &Config{
		Version:   ConfigVersion,
		Scheme:    "http",
		Host:      "localhost:3000",
		SessionID: "session-0001",
		Handle:    "me",
	}
	require.NoError(t, cfg.WriteConfig(file))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	assert.Error(t, cfg.WriteConfig(""))
}

func TestConfigVersionCheck(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"0.1.0", false},
		{"0.1.7", false},
		{"0.2.0", true},
		{"1.0.0", true},
		{"not-a-version", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), DefaultConfigFile)
			content := "version: " + tt.version + "\nscheme: https\nhost: archive.test\n"
			require.NoError(t, os.WriteFile(file, []byte(content), 0600))

			_, err := LoadConfig(file)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedConfigVersion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(file, []byte("version: [unclosed\n"), 0600))
	_, err := LoadConfig(file)
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	c := newCLITest(t)
	c.mustRun("login", "--handle", "me", "--password", "password")

	out := c.mustRun("config", "--scheme", "http", "--host", "localhost:3000")
	assert.Contains(t, out, "Server configured: http://localhost:3000")

	cfg := c.loadConfig()
	assert.Equal(t, "http", cfg.Scheme)
	assert.Equal(t, "localhost:3000", cfg.Host)
	assert.Empty(t, cfg.SessionID, "changing the server clears the session")

	out = c.mustRun("config", "show")
	assert.Contains(t, out, "Server: http://localhost:3000")
	assert.Contains(t, out, "Session: none")

	out = c.mustRun("config", "show", "--json")
	assert.Equal(t, "http://localhost:3000", gjson.Get(out, "server").String())
	assert.False(t, gjson.Get(out, "connected").Bool())

	_, _, err := c.run("config", "--scheme", "ftp")
	assert.ErrorIs(t, err, archive.ErrInvalidConfig)
	assert.Equal(t, "http", c.loadConfig().Scheme)
}
