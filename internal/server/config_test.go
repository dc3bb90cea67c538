package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigTOML = `
[server]
host = "127.0.0.1"
port = "9090"

[grpc]
enable_reflection = true
max_receive_message_size = 4194304
max_send_message_size = 4194304

[database]
host = "localhost"
port = 5432
user = "identity"
password = "identity"
name = "identity_core"

[credentials]
bcrypt_cost = 10
constant_scan = true
totp_issuer = "example"
`

func writeTestConfig(t *testing.T, body string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", "server"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "server", "config.toml"), []byte(body), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(dir))
}

func TestLoadConfig(t *testing.T) {
	writeTestConfig(t, testConfigTOML)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.GRPC.EnableReflection)
	assert.Equal(t, "identity_core", cfg.Database.Name)
	assert.Equal(t, 10, cfg.Credentials.BcryptCost)
	assert.True(t, cfg.Credentials.ConstantScan)
	assert.Equal(t, "example", cfg.Credentials.TOTPIssuer)
}

func TestLoadConfigDefaults(t *testing.T) {
	writeTestConfig(t, `
[server]
host = "0.0.0.0"
port = "9090"

[database]
host = "localhost"
port = 5432
user = "identity"
password = "identity"
name = "identity_core"
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Credentials.BcryptCost)
	assert.Equal(t, uint(1), cfg.Credentials.TOTPSkew)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.False(t, cfg.Credentials.ConstantScan)
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(dir))

	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvProduction, EnvTesting} {
		logger, err := NewLogger(env)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
