package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntAndSeconds(t *testing.T) {
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_BAD", "forty")
	t.Setenv("CFG_NEG", "-3")

	assert.Equal(t, 42, Int("CFG_INT", 1))
	assert.Equal(t, 7, Int("CFG_BAD", 7))
	assert.Equal(t, 7, Int("CFG_NEG", 7))
	assert.Equal(t, 42*time.Second, Seconds("CFG_INT", time.Second))
	assert.Equal(t, time.Minute, Seconds("CFG_MISSING", time.Minute))
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("CFG_ON", "yes")
	t.Setenv("CFG_OFF", "0")
	t.Setenv("CFG_LIST", " a, ,b ,c")

	assert.True(t, Bool("CFG_ON", false))
	assert.False(t, Bool("CFG_OFF", true))
	assert.True(t, Bool("CFG_UNSET", true))
	assert.Equal(t, []string{"a", "b", "c"}, List("CFG_LIST", ""))
	assert.Nil(t, List("CFG_UNSET", ""))
}

func TestPort(t *testing.T) {
	t.Setenv("CFG_PORT", "70000")
	_, err := Port("CFG_PORT", "8080")
	require.Error(t, err)

	p, err := Port("CFG_PORT_UNSET", "8080")
	require.NoError(t, err)
	assert.Equal(t, "8080", p)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_DOTENV_VALUE=from-file\n"), 0o600))
	t.Setenv("CFG_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("CFG_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", String("CFG_DOTENV_VALUE", ""))
}
