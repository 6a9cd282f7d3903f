package konfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSignatureMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	a, err := ReadSignature(path, false)
	require.NoError(t, err)
	assert.False(t, a.Exists)

	b, err := ReadSignature(path, true)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	writeFile(t, path, "")
	c, err := ReadSignature(path, false)
	require.NoError(t, err)
	assert.True(t, c.Exists)
	assert.False(t, a.Equal(c), "an empty file differs from a missing one")
}

func TestSignatureSameSizeRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, "aaaa")
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	plainBefore, err := ReadSignature(path, false)
	require.NoError(t, err)
	hashedBefore, err := ReadSignature(path, true)
	require.NoError(t, err)

	writeFile(t, path, "bbbb")
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	plainAfter, err := ReadSignature(path, false)
	require.NoError(t, err)
	hashedAfter, err := ReadSignature(path, true)
	require.NoError(t, err)

	assert.True(t, plainBefore.Equal(plainAfter), "size and mtime alone cannot see this rewrite")
	assert.False(t, hashedBefore.Equal(hashedAfter))
}

func TestSignatureDetectsReplacedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, "aaaa")
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	before, err := ReadSignature(path, false)
	require.NoError(t, err)

	// 编辑器常见的"写临时文件再重命名"
	tmp := filepath.Join(dir, "config.json.tmp")
	writeFile(t, tmp, "bbbb")
	require.NoError(t, os.Chtimes(tmp, stamp, stamp))
	require.NoError(t, os.Rename(tmp, path))

	after, err := ReadSignature(path, false)
	require.NoError(t, err)
	assert.False(t, before.Equal(after))
}

func TestReadSignatureStatError(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	writeFile(t, parent, "x")

	_, err := ReadSignature(filepath.Join(parent, "config.json"), false)
	assert.Error(t, err)
}

// TestHashFile 测试hashFile函数
func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	writeFile(t, path, "Hello World!")

	h, err := hashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069", h)

	_, err = hashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

// BenchmarkReadSignature 基准测试
func BenchmarkReadSignature(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.json")
	if err := os.WriteFile(path, make([]byte, 64*1024), 0o644); err != nil {
		b.Fatal(err)
	}

	b.Run("stat", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ReadSignature(path, false)
		}
	})
	b.Run("checksum", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ReadSignature(path, true)
		}
	})
}
