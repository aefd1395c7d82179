package ports

import "reqforge/internal/types"

type ManifestPort interface {
	Load(path string) (types.Manifest, error)
	Save(manifest types.Manifest, path string) error
}

type OverridesPort interface {
	LoadOverrides(path string) ([]types.OverrideDirective, error)
}
