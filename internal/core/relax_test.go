package core

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqforge/internal/types"
)

const relaxInput = `# ci pins
torchmetrics >=0.7.0, <0.10.0  # strict
lightning-utilities >=0.8.0, <0.11.0
numpy >1.20.0
typing-extensions <=4.9.0; python_version < '3.9'
`

func TestRelaxDropsOnlyNonStrictUpperBounds(t *testing.T) {
	manifest, err := ParseManifest("requirements.txt", []byte(relaxInput))
	require.NoError(t, err)

	relaxed, dropped := Relax(context.Background(), manifest)

	expectedDropped := []types.RelaxedBound{
		{Package: "lightning-utilities", Op: types.ConstraintOpLt, Version: "0.11.0"},
		{Package: "typing-extensions", Op: types.ConstraintOpLte, Version: "4.9.0"},
	}
	if diff := cmp.Diff(expectedDropped, dropped); diff != "" {
		t.Fatalf("unexpected dropped bounds (-want +got):\n%s", diff)
	}

	reqs := relaxed.Requirements()
	require.Len(t, reqs, 4)

	// strict entry keeps its bounds verbatim
	assert.Equal(t, []types.Constraint{
		{Op: types.ConstraintOpGte, Version: "0.7.0"},
		{Op: types.ConstraintOpLt, Version: "0.10.0"},
	}, reqs[0].Constraints)

	// non-strict entry keeps only the lower bound
	assert.Equal(t, []types.Constraint{
		{Op: types.ConstraintOpGte, Version: "0.8.0"},
	}, reqs[1].Constraints)

	// lower bounds alone are untouched
	assert.Equal(t, []types.Constraint{
		{Op: types.ConstraintOpGt, Version: "1.20.0"},
	}, reqs[2].Constraints)

	// markers survive relaxation even when all constraints drop
	assert.Nil(t, reqs[3].Constraints)
	assert.Equal(t, "python_version < '3.9'", reqs[3].Marker)
}

func TestRelaxPreservesCommentLines(t *testing.T) {
	manifest, err := ParseManifest("requirements.txt", []byte(relaxInput))
	require.NoError(t, err)

	relaxed, _ := Relax(context.Background(), manifest)
	require.NotEmpty(t, relaxed.Lines)
	assert.Equal(t, "# ci pins", relaxed.Lines[0].Raw)
}

func TestRelaxRenderedOutputKeepsStrictAnnotation(t *testing.T) {
	manifest, err := ParseManifest("requirements.txt", []byte(relaxInput))
	require.NoError(t, err)

	relaxed, _ := Relax(context.Background(), manifest)
	content := string(FormatManifest(relaxed))
	assert.Contains(t, content, "torchmetrics >=0.7.0, <0.10.0  # strict")
	assert.NotContains(t, content, "<0.11.0")
}

func TestRelaxIsIdempotent(t *testing.T) {
	manifest, err := ParseManifest("requirements.txt", []byte(relaxInput))
	require.NoError(t, err)

	once, _ := Relax(context.Background(), manifest)
	twice, dropped := Relax(context.Background(), once)
	assert.Empty(t, dropped)
	if diff := cmp.Diff(FormatManifest(once), FormatManifest(twice)); diff != "" {
		t.Fatalf("relax is not idempotent (-want +got):\n%s", diff)
	}
}

func TestRelaxRewritesCompatibleRelease(t *testing.T) {
	manifest, err := ParseManifest("requirements.txt", []byte(`torch ~=2.1.0
pydantic ~=1.10.0  # strict
`))
	require.NoError(t, err)

	relaxed, dropped := Relax(context.Background(), manifest)

	// the implicit ceiling goes, the floor stays
	expectedDropped := []types.RelaxedBound{
		{Package: "torch", Op: types.ConstraintOpCompat, Version: "2.1.0"},
	}
	if diff := cmp.Diff(expectedDropped, dropped); diff != "" {
		t.Fatalf("unexpected dropped bounds (-want +got):\n%s", diff)
	}

	reqs := relaxed.Requirements()
	require.Len(t, reqs, 2)
	assert.Equal(t, []types.Constraint{
		{Op: types.ConstraintOpGte, Version: "2.1.0"},
	}, reqs[0].Constraints)
	assert.Equal(t, []types.Constraint{
		{Op: types.ConstraintOpCompat, Version: "1.10.0"},
	}, reqs[1].Constraints)

	again, droppedAgain := Relax(context.Background(), relaxed)
	assert.Empty(t, droppedAgain)
	assert.Equal(t, FormatManifest(relaxed), FormatManifest(again))
}

func TestRelaxExclusionsSurvive(t *testing.T) {
	manifest, err := ParseManifest("requirements.txt", []byte("scipy >=1.4.1, !=1.9.2, <1.12.0\n"))
	require.NoError(t, err)

	relaxed, dropped := Relax(context.Background(), manifest)
	require.Len(t, dropped, 1)
	assert.Equal(t, []types.Constraint{
		{Op: types.ConstraintOpGte, Version: "1.4.1"},
		{Op: types.ConstraintOpNe, Version: "1.9.2"},
	}, relaxed.Requirements()[0].Constraints)
}
