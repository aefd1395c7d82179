package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestFileAdapterLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	content := "# pins\nnumpy >1.20.0\ntorchmetrics >=0.7.0, <0.10.0  # strict\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	adapter := NewManifestFileAdapter()
	manifest, err := adapter.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, manifest.Path)
	require.Len(t, manifest.Requirements(), 2)
	assert.True(t, manifest.Requirements()[1].Strict)
}

func TestManifestFileAdapterLoadMissing(t *testing.T) {
	adapter := NewManifestFileAdapter()
	_, err := adapter.Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestManifestFileAdapterSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "requirements.txt")
	content := "# pins\nnumpy >1.20.0\n\ntorchmetrics >=0.7.0, <0.10.0  # strict\n"
	require.NoError(t, os.WriteFile(source, []byte(content), 0644))

	adapter := NewManifestFileAdapter()
	manifest, err := adapter.Load(source)
	require.NoError(t, err)

	target := filepath.Join(dir, "nested", "requirements.txt")
	require.NoError(t, adapter.Save(manifest, target))

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	if diff := cmp.Diff(content, string(written)); diff != "" {
		t.Fatalf("rewrite changed content (-want +got):\n%s", diff)
	}
}
