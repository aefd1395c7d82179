package core

import (
	"strings"

	"reqforge/internal/types"
)

// ParseManifest parses a full requirements manifest. Blank lines and
// whole-line comments are preserved verbatim so that transformations
// can rewrite the file without losing its annotations.
func ParseManifest(path string, content []byte) (types.Manifest, error) {
	manifest := types.Manifest{Path: path}
	lines := strings.Split(string(content), "\n")
	for idx, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			if idx == len(lines)-1 && trimmed == "" {
				continue
			}
			manifest.Lines = append(manifest.Lines, types.ManifestLine{Raw: raw})
			continue
		}
		req, err := ParseRequirement(raw, idx+1)
		if err != nil {
			return types.Manifest{}, err
		}
		manifest.Lines = append(manifest.Lines, types.ManifestLine{Requirement: &req})
	}
	return manifest, nil
}

// FormatManifest renders the manifest back to file content.
func FormatManifest(manifest types.Manifest) []byte {
	var out []string
	for _, line := range manifest.Lines {
		if line.Requirement != nil {
			out = append(out, FormatRequirement(*line.Requirement))
			continue
		}
		out = append(out, line.Raw)
	}
	return []byte(strings.Join(out, "\n") + "\n")
}
