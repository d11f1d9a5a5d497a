package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initWithTempConfig(t *testing.T, contents string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0640))
	}
	require.NoError(t, Init(path))
	return path
}

func TestInit_Defaults(t *testing.T) {
	initWithTempConfig(t, "")

	assert.Equal(t, []string{"eng"}, Languages())
	assert.Equal(t, []string{"hash", "imdb", "text"}, SearchMethods())
	assert.Empty(t, DownloadDir())
	assert.False(t, Overwrite())
	assert.Equal(t, "info", LogLevel())

	user, pass := Credentials()
	assert.Empty(t, user)
	assert.Empty(t, pass)
}

func TestInit_ReadsConfigFile(t *testing.T) {
	initWithTempConfig(t, `
languages:
  - ell
  - eng
search:
  methods:
    - hash
download:
  dir: /tmp/subs
  overwrite: true
log:
  level: debug
`)

	assert.Equal(t, []string{"ell", "eng"}, Languages())
	assert.Equal(t, []string{"hash"}, SearchMethods())
	assert.Equal(t, "/tmp/subs", DownloadDir())
	assert.True(t, Overwrite())
	assert.Equal(t, "debug", LogLevel())
}

func TestSaveRoundTrip(t *testing.T) {
	path := initWithTempConfig(t, "")

	SetLanguages([]string{"fre", "eng"})
	SetSearchMethods([]string{"hash", "text"})
	SetCredentials("alice", "s3cret")
	require.NoError(t, Save())

	viper.Reset()
	require.NoError(t, Init(path))

	assert.Equal(t, []string{"fre", "eng"}, Languages())
	assert.Equal(t, []string{"hash", "text"}, SearchMethods())
	user, pass := Credentials()
	assert.Equal(t, "alice", user)
	assert.Equal(t, "s3cret", pass)
}
