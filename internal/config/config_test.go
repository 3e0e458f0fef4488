package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
ocpi:
  versions_url: https://cpo.example.test/ocpi/versions
  token: secret
  commands_base_url: https://emsp.example.test/ocpi/commands
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://cpo.example.test/ocpi/versions", conf.Ocpi.VersionsUrl)
	assert.Equal(t, 30*time.Second, conf.Ocpi.RequestTimeout)
	assert.Equal(t, "", conf.Ocpi.Version)
	assert.Equal(t, 24*time.Hour, conf.Commands.TTL)
	assert.Equal(t, time.Minute, conf.Commands.ReapInterval)
	assert.Equal(t, "5100", conf.Listen.Port)
	assert.False(t, conf.Mongo.Enabled)
	assert.Equal(t, "emsp", conf.Mongo.Database)
	assert.Equal(t, "UTC", conf.TimeZone)
	assert.False(t, conf.Api.Enabled)
	assert.Equal(t, 10*time.Second, conf.Api.WaitTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
is_debug: true
ocpi:
  versions_url: https://cpo.example.test/ocpi/versions
  token: secret
  version: "2.1.1"
  commands_base_url: https://emsp.example.test/ocpi/commands
  request_timeout: 5s
commands:
  ttl: 2h
telegram:
  enabled: true
  chat_ids: [10, 20]
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.True(t, conf.IsDebug)
	assert.Equal(t, "2.1.1", conf.Ocpi.Version)
	assert.Equal(t, 5*time.Second, conf.Ocpi.RequestTimeout)
	assert.Equal(t, 2*time.Hour, conf.Commands.TTL)
	assert.True(t, conf.Telegram.Enabled)
	assert.Equal(t, []int64{10, 20}, conf.Telegram.ChatIds)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, env := range []string{"OCPI_VERSIONS_URL", "OCPI_TOKEN", "OCPI_COMMANDS_BASE_URL"} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	path := writeConfig(t, "is_debug: false\n")

	_, err := Load(path)
	require.Error(t, err)
}
