package ports

import (
	"context"

	"reqforge/internal/types"
)

type PackageIndexPort interface {
	AvailableVersions(name string) ([]string, error)
}

type IndexBuildRequest struct {
	IndexURL         string
	User             string
	APIKey           string
	Packages         []string
	MaxPackages      int
	Workers          int
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

type PackageIndexBuilderPort interface {
	Build(ctx context.Context, request IndexBuildRequest) (types.PackageIndexFile, error)
}

type PackageIndexWriterPort interface {
	Write(path string, index types.PackageIndexFile) error
}
