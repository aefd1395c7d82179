package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqforge/internal/types"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		raw      string
		expected types.Requirement
	}{
		{
			raw: "numpy >1.20.0",
			expected: types.Requirement{
				Name: "numpy",
				Constraints: []types.Constraint{
					{Op: types.ConstraintOpGt, Version: "1.20.0"},
				},
			},
		},
		{
			raw: "lightning-utilities >=0.8.0, <0.11.0",
			expected: types.Requirement{
				Name: "lightning-utilities",
				Constraints: []types.Constraint{
					{Op: types.ConstraintOpGte, Version: "0.8.0"},
					{Op: types.ConstraintOpLt, Version: "0.11.0"},
				},
			},
		},
		{
			raw: "typing-extensions; python_version < '3.9'",
			expected: types.Requirement{
				Name:   "typing-extensions",
				Marker: "python_version < '3.9'",
			},
		},
		{
			raw: "torchmetrics >=0.7.0, <0.10.0  # strict",
			expected: types.Requirement{
				Name: "torchmetrics",
				Constraints: []types.Constraint{
					{Op: types.ConstraintOpGte, Version: "0.7.0"},
					{Op: types.ConstraintOpLt, Version: "0.10.0"},
				},
				Strict:  true,
				Comment: "strict",
			},
		},
		{
			raw: "torch ~=2.1.0",
			expected: types.Requirement{
				Name: "torch",
				Constraints: []types.Constraint{
					{Op: types.ConstraintOpCompat, Version: "2.1.0"},
				},
			},
		},
		{
			raw: "scipy !=1.9.2, >=1.4.1",
			expected: types.Requirement{
				Name: "scipy",
				Constraints: []types.Constraint{
					{Op: types.ConstraintOpNe, Version: "1.9.2"},
					{Op: types.ConstraintOpGte, Version: "1.4.1"},
				},
			},
		},
		{
			raw: "packaging",
			expected: types.Requirement{
				Name: "packaging",
			},
		},
		{
			raw: "pandas >=1.1.0; python_version >= '3.8' and sys_platform == 'linux'  # dataframe backend",
			expected: types.Requirement{
				Name: "pandas",
				Constraints: []types.Constraint{
					{Op: types.ConstraintOpGte, Version: "1.1.0"},
				},
				Marker:  "python_version >= '3.8' and sys_platform == 'linux'",
				Comment: "dataframe backend",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req, err := ParseRequirement(tt.raw, 1)
			require.NoError(t, err)
			tt.expected.Line = 1
			if diff := cmp.Diff(tt.expected, req); diff != "" {
				t.Fatalf("unexpected requirement (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRequirementStrictWordMatch(t *testing.T) {
	req, err := ParseRequirement("numpy <2.0  # pinned, strict, upstream bug", 3)
	require.NoError(t, err)
	assert.True(t, req.Strict)

	req, err = ParseRequirement("numpy <2.0  # strictly speaking optional", 3)
	require.NoError(t, err)
	assert.False(t, req.Strict, "substring must not mark strict")
}

func TestParseRequirementHashInsideMarkerString(t *testing.T) {
	req, err := ParseRequirement("foo >=1.0; extra == 'a#b'", 1)
	require.NoError(t, err)
	assert.Equal(t, "extra == 'a#b'", req.Marker)
	assert.Empty(t, req.Comment)
}

func TestParseRequirementErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty line", "   "},
		{"comment only", "  # just a note"},
		{"missing version", "numpy >="},
		{"missing comparator", "numpy 1.20.0"},
		{"bad name", "-numpy >=1.0"},
		{"empty clause", "numpy >=1.0,, <2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequirement(tt.raw, 7)
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
			assert.Contains(t, err.Error(), "line 7")
		})
	}
}

func TestFormatRequirementRoundTrip(t *testing.T) {
	lines := []string{
		"numpy >1.20.0",
		"lightning-utilities >=0.8.0, <0.11.0",
		"typing-extensions; python_version < '3.9'",
		"torchmetrics >=0.7.0, <0.10.0  # strict",
		"torch ==2.1.2  # cuda build strict",
		"packaging",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			req, err := ParseRequirement(line, 1)
			require.NoError(t, err)
			formatted := FormatRequirement(req)
			reparsed, err := ParseRequirement(formatted, 1)
			require.NoError(t, err)
			if diff := cmp.Diff(req, reparsed); diff != "" {
				t.Fatalf("round trip changed requirement (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatRequirementAppendsStrict(t *testing.T) {
	req := types.Requirement{
		Name: "numpy",
		Constraints: []types.Constraint{
			{Op: types.ConstraintOpLt, Version: "2.0"},
		},
		Strict: true,
	}
	formatted := FormatRequirement(req)
	assert.Equal(t, "numpy <2.0  # strict", formatted)

	req.Comment = "pinned for abi"
	formatted = FormatRequirement(req)
	assert.Equal(t, "numpy <2.0  # pinned for abi strict", formatted)
}
