package types

// PackageIndexFile is the offline snapshot of available versions per
// package, produced by the index command and consumed by lock.
type PackageIndexFile struct {
	Packages map[string][]string `yaml:"packages"`
}
