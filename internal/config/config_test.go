package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("api.base_url", "https://coffer.example.gov")
	viper.Set("logging.level", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://coffer.example.gov", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NotZero(t, cfg.APITimeout, "timeout should default when unset")
}

func TestLoadRejectsBadURL(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("api.base_url", "not a url")
	_, err := Load()
	assert.Error(t, err)

	viper.Set("api.base_url", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "coffer"), ExpandPath("~/coffer"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "", ExpandPath(""))

	t.Setenv("COFFER_TEST_DIR", "/srv/data")
	assert.Equal(t, "/srv/data/coffer", ExpandPath("$COFFER_TEST_DIR/coffer"))
}
