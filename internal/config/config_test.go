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
	path := filepath.Join(t.TempDir(), "gocalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())
	assert.Equal(t, "x", conf.Variable)
	assert.Equal(t, 5, conf.MaxDepth)
	assert.Equal(t, "text", conf.Format)
	assert.Equal(t, int64(1<<20), conf.Server.MaxBodyBytes)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, "")
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
variable: t
max_depth: 8
format: json
log:
  level: debug
  format: json
  file: /tmp/gocalc.log
server:
  addr: 127.0.0.1:9090
  allow_origins: ["https://example.com"]
  read_timeout: 3s
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "t", conf.Variable)
	assert.Equal(t, 8, conf.MaxDepth)
	assert.Equal(t, "json", conf.Format)
	assert.Equal(t, "debug", conf.Log.Level)
	assert.Equal(t, "/tmp/gocalc.log", conf.Log.File)
	assert.Equal(t, 100, conf.Log.MaxSize, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:9090", conf.Server.Addr)
	assert.Equal(t, []string{"https://example.com"}, conf.Server.AllowOrigins)
	assert.Equal(t, 3*time.Second, conf.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, conf.Server.WriteTimeout)
}

func TestLoadFileFromEnvironment(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, writeConfig(t, "max_depth: 2\n"))
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, conf.MaxDepth)
}

func TestLoadEmptyFile(t *testing.T) {
	conf, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "max_dept: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_dept")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "variable: t\nmax_depth: 8\n")
	t.Setenv(ENV_VARIABLE, "y")
	t.Setenv(ENV_MAX_DEPTH, "3")
	t.Setenv(ENV_LOG_LEVEL, "warn")
	t.Setenv(ENV_SERVER_ALLOW_ORIGINS, "http://a.test, https://b.test,")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "y", conf.Variable)
	assert.Equal(t, 3, conf.MaxDepth)
	assert.Equal(t, "warn", conf.Log.Level)
	assert.Equal(t, []string{"http://a.test", "https://b.test"}, conf.Server.AllowOrigins)
}

func TestApplyEnvBadNumber(t *testing.T) {
	env := map[string]string{ENV_MAX_DEPTH: "deep"}
	err := Default().ApplyEnv(func(k string) string { return env[k] })
	require.Error(t, err)
	assert.Contains(t, err.Error(), ENV_MAX_DEPTH)
}

func TestValidate(t *testing.T) {
	conf := Default()
	conf.Variable = "2x"
	conf.MaxDepth = 0
	conf.Format = "xml"
	conf.Log.Level = "loud"
	conf.Log.Format = "logfmt"
	conf.Server.MaxBodyBytes = 0
	conf.Server.AllowOrigins = []string{"example.com"}

	err := conf.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`variable "2x"`,
		"max_depth must be between 1 and 16, got 0",
		`invalid format "xml"`,
		`invalid log level "loud"`,
		`invalid log format "logfmt"`,
		"max_body_bytes",
		`bad origin "example.com"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRejectsDeepMaxDepth(t *testing.T) {
	conf := Default()
	conf.MaxDepth = 17
	err := conf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_depth must be between 1 and 16, got 17")

	t.Setenv(ENV_CONFIG_FILE_PATH, "")
	t.Setenv(ENV_MAX_DEPTH, "40")
	_, err = Load("")
	assert.Error(t, err)
}

func TestIsValidFormat(t *testing.T) {
	for _, f := range ValidFormats {
		assert.True(t, IsValidFormat(f))
	}
	assert.False(t, IsValidFormat("TEXT"))
}
