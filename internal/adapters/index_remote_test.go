package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqforge/internal/ports"
	"reqforge/internal/types"
)

func buildIndexFixture() types.PackageIndexFile {
	return types.PackageIndexFile{Packages: map[string][]string{
		"numpy": {"1.20.0", "1.21.0"},
	}}
}

const simpleRootHTML = `<!DOCTYPE html>
<html><body>
<a href="/simple/numpy/">numpy</a>
<a href="/simple/lightning-utilities/">Lightning_Utilities</a>
</body></html>`

const simpleNumpyHTML = `<!DOCTYPE html>
<html><body>
<a href="../../packages/numpy-1.20.0-cp38-cp38-manylinux1_x86_64.whl#sha256=abc">numpy-1.20.0-cp38-cp38-manylinux1_x86_64.whl</a>
<a href="../../packages/numpy-1.21.0.tar.gz#sha256=def">numpy-1.21.0.tar.gz</a>
<a href="../../packages/numpy-1.19.5.zip?x=1">numpy-1.19.5.zip</a>
</body></html>`

const simpleLightningHTML = `<!DOCTYPE html>
<html><body>
<a href="../../packages/lightning_utilities-0.10.1-py3-none-any.whl">lightning_utilities-0.10.1-py3-none-any.whl</a>
</body></html>`

func newSimpleIndexServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/simple/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simple/":
			fmt.Fprint(w, simpleRootHTML)
		case "/simple/numpy/":
			fmt.Fprint(w, simpleNumpyHTML)
		case "/simple/lightning-utilities/":
			fmt.Fprint(w, simpleLightningHTML)
		default:
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestBuildWalksWholeIndex(t *testing.T) {
	server := newSimpleIndexServer(t)
	adapter := NewPackageIndexBuilderAdapter()

	index, err := adapter.Build(context.Background(), ports.IndexBuildRequest{
		IndexURL: server.URL + "/simple",
	})
	require.NoError(t, err)

	expected := map[string][]string{
		"numpy":               {"1.19.5", "1.20.0", "1.21.0"},
		"lightning-utilities": {"0.10.1"},
	}
	if diff := cmp.Diff(expected, index.Packages); diff != "" {
		t.Fatalf("unexpected index (-want +got):\n%s", diff)
	}
}

func TestBuildExplicitPackageList(t *testing.T) {
	server := newSimpleIndexServer(t)
	adapter := NewPackageIndexBuilderAdapter()

	index, err := adapter.Build(context.Background(), ports.IndexBuildRequest{
		IndexURL: server.URL + "/simple",
		Packages: []string{"numpy"},
	})
	require.NoError(t, err)
	assert.Len(t, index.Packages, 1)
	assert.Equal(t, []string{"1.19.5", "1.20.0", "1.21.0"}, index.Packages["numpy"])
}

func TestBuildUnknownPackageSkipped(t *testing.T) {
	server := newSimpleIndexServer(t)
	adapter := NewPackageIndexBuilderAdapter()

	index, err := adapter.Build(context.Background(), ports.IndexBuildRequest{
		IndexURL: server.URL + "/simple",
		Packages: []string{"does-not-exist"},
	})
	require.NoError(t, err)
	assert.Empty(t, index.Packages)
}

func TestBuildMaxPackages(t *testing.T) {
	server := newSimpleIndexServer(t)
	adapter := NewPackageIndexBuilderAdapter()

	index, err := adapter.Build(context.Background(), ports.IndexBuildRequest{
		IndexURL:    server.URL + "/simple",
		MaxPackages: 1,
	})
	require.NoError(t, err)
	assert.Len(t, index.Packages, 1)
}

func TestBuildRequiresIndexURL(t *testing.T) {
	adapter := NewPackageIndexBuilderAdapter()
	_, err := adapter.Build(context.Background(), ports.IndexBuildRequest{})
	require.Error(t, err)
}

func TestBuildRetriesTransientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, simpleNumpyHTML)
	}))
	t.Cleanup(server.Close)

	adapter := NewPackageIndexBuilderAdapter()
	index, err := adapter.Build(context.Background(), ports.IndexBuildRequest{
		IndexURL:         server.URL,
		Packages:         []string{"numpy"},
		HTTPRetries:      3,
		HTTPRetryDelayMs: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.19.5", "1.20.0", "1.21.0"}, index.Packages["numpy"])
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestBuildSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		fmt.Fprint(w, simpleNumpyHTML)
	}))
	t.Cleanup(server.Close)

	adapter := NewPackageIndexBuilderAdapter()
	_, err := adapter.Build(context.Background(), ports.IndexBuildRequest{
		IndexURL: server.URL,
		Packages: []string{"numpy"},
		APIKey:   "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "api", gotUser, "default basic auth user")
	assert.Equal(t, "secret", gotPass)
}

func TestParseVersionFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"numpy-1.20.0-cp38-cp38-manylinux1_x86_64.whl", "1.20.0"},
		{"lightning_utilities-0.10.1-py3-none-any.whl", "0.10.1"},
		{"numpy-1.21.0.tar.gz", "1.21.0"},
		{"numpy-1.19.5.zip", "1.19.5"},
		{"torch-2.1.2-cp311-cp311-manylinux1_x86_64.whl", "2.1.2"},
		{"README.txt", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseVersionFromFilename(tt.filename))
		})
	}
}

func TestNormalizeSimpleIndex(t *testing.T) {
	assert.Equal(t, "https://pypi.org/simple/", normalizeSimpleIndex("https://pypi.org/simple"))
	assert.Equal(t, "https://pypi.org/simple/", normalizeSimpleIndex("https://pypi.org/simple/"))
	assert.Equal(t, "https://pypi.org/simple/", normalizeSimpleIndex("https://pypi.org"))
}

func TestWriterRoundTrip(t *testing.T) {
	path := t.TempDir() + "/nested/package-index.yaml"
	writer := NewPackageIndexWriterAdapter()
	require.NoError(t, writer.Write(path, buildIndexFixture()))

	reader := NewPackageIndexFileAdapter(path)
	versions, err := reader.AvailableVersions("numpy")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.20.0", "1.21.0"}, versions)
}
