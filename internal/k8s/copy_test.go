package k8s

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarFromContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tarFromContent(&buf, "/etc/app/config.yaml", "key: value\n"))

	tr := tar.NewReader(&buf)
	header, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", header.Name)

	data, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))
}

func TestTarFromPath_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.conf"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "conf.d"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.d", "extra.conf"), []byte("b"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, tarFromPath(&buf, dir, "/etc/app"))

	names := map[string]bool{}
	tr := tar.NewReader(&buf)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names[header.Name] = true
	}

	assert.True(t, names["app/app.conf"])
	assert.True(t, names["app/conf.d/"])
	assert.True(t, names["app/conf.d/extra.conf"])
}

func TestUntarToPath(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "data/", Typeflag: tar.TypeDir, Mode: 0o755}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "data/file.txt", Typeflag: tar.TypeReg, Mode: 0o644, Size: 5}))
	_, err := tw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, untarToPath(&buf, "data", dest))

	content, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestUntarToPath_RejectsEscape(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../../etc/passwd", Typeflag: tar.TypeReg, Mode: 0o644, Size: 3}))
	_, err := tw.Write([]byte("pwn"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	err = untarToPath(&buf, "data", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
}
