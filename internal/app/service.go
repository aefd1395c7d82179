package app

import (
	"time"

	"reqforge/internal/adapters"
	"reqforge/internal/ports"
)

type Service struct {
	Manifest     ports.ManifestPort
	Overrides    ports.OverridesPort
	IndexBuild   ports.PackageIndexBuilderPort
	IndexWriter  ports.PackageIndexWriterPort
	OutputReader ports.OutputReaderPort
	Clock        func() time.Time
}

func NewService() Service {
	return Service{
		Manifest:     adapters.NewManifestFileAdapter(),
		Overrides:    adapters.NewOverridesFileAdapter(),
		IndexBuild:   adapters.NewPackageIndexBuilderAdapter(),
		IndexWriter:  adapters.NewPackageIndexWriterAdapter(),
		OutputReader: adapters.NewLockReaderAdapter(),
		Clock:        time.Now,
	}
}
