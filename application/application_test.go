package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(configPathEnv, "")

	path, explicit, err := resolveConfigPath(nil)
	assert.NoError(t, err)
	assert.Equal(t, defaultConfigPath, path)
	assert.False(t, explicit)

	path, explicit, err = resolveConfigPath([]string{"--config", "a.yaml"})
	assert.NoError(t, err)
	assert.Equal(t, "a.yaml", path)
	assert.True(t, explicit)

	path, _, err = resolveConfigPath([]string{"--config=b.json"})
	assert.NoError(t, err)
	assert.Equal(t, "b.json", path)

	_, _, err = resolveConfigPath([]string{"--config"})
	assert.Error(t, err)

	t.Setenv(configPathEnv, "env.yaml")
	path, explicit, err = resolveConfigPath(nil)
	assert.NoError(t, err)
	assert.Equal(t, "env.yaml", path)
	assert.True(t, explicit)
}

func TestRunWithConfig(t *testing.T) {
	t.Setenv(configPathEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
compression:
  enable: true
  min-size: 16
log:
  level: warn
logging:
  msgpack:
    level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	app := New()
	require.NoError(t, app.RunWithArgs([]string{"--config", path}))
	defer app.Close()

	assert.True(t, app.Config().Compression.Enable)
	assert.Equal(t, 16, app.Config().Compression.MinSize)
	assert.NotNil(t, app.Logger("msgpack"))
	assert.NotNil(t, app.Logger("unknown"))

	id := uuid.New()
	data, err := app.Serializer().Marshal(id)
	require.NoError(t, err)
	assert.True(t, msgpack.IsCompressed(data))

	var got uuid.UUID
	require.NoError(t, app.Serializer().Unmarshal(data, &got))
	assert.Equal(t, id, got)

	decoded, err := msgpack.Deserialize[uuid.UUID](data, app.Options()...)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestRunWithoutConfigFile(t *testing.T) {
	t.Setenv(configPathEnv, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	app := New()
	require.NoError(t, app.RunWithArgs(nil))
	defer app.Close()
	assert.False(t, app.Config().Compression.Enable)

	data, err := app.Serializer().Marshal("plain")
	require.NoError(t, err)
	assert.False(t, msgpack.IsCompressed(data))

	err = New().RunWithArgs([]string{"--config", "missing.yaml"})
	assert.Error(t, err)
}
