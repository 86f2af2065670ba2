package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/inmemcache/internal/cache"
)

func TestLogger_WritesLevelsAndTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.log")
	require.NoError(t, Init(path))
	t.Cleanup(func() {
		SetTrace(false)
		_ = Close()
	})

	Infof("hello %s", "world")
	Warnf("careful")
	Tracef("hidden")

	SetTrace(true)
	m := cache.New(cache.Options{Capacity: 4, Sink: CacheSink()})
	m.Store("k", []byte("ab"))

	require.NoError(t, Close())
	out, err := os.ReadFile(path)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "[INFO] hello world")
	assert.Contains(t, s, "[WARN] careful")
	assert.NotContains(t, s, "hidden")
	assert.Contains(t, s, "[TRACE] [cache] cached: k")
	assert.Contains(t, s, "[TRACE] [cache] cache size: 2")
}

func TestEnsureParentDir(t *testing.T) {
	assert.NoError(t, ensureParentDir("file.log"))

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, ensureParentDir(filepath.Join(dir, "x.log")))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
