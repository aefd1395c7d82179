package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"reqforge/tests/testutil"
)

func TestLockCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	outDir := t.TempDir()

	cmd := exec.Command("go", "run", "./cmd/reqforge", "lock",
		"--manifest", "fixtures/requirements-sample.txt",
		"--index", "fixtures/package-index.yaml",
		"--output", outDir,
		"--python-version", "3.8",
		"--debian-compat",
	)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	require.FileExists(t, filepath.Join(outDir, "requirements.lock"))
	require.FileExists(t, filepath.Join(outDir, "debian.lock"))
	require.FileExists(t, filepath.Join(outDir, "resolution.report"))
}

func TestValidateCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)

	cmd := exec.Command("go", "run", "./cmd/reqforge", "validate",
		"--manifest", "fixtures/requirements-sample.txt",
		"--overrides", "fixtures/overrides.yaml",
	)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}
