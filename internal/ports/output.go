package ports

import "reqforge/internal/types"

type LockOutputPort interface {
	WriteLock(entries []types.LockEntry) error
	WriteDebianLock(entries []types.DebianLockEntry) error
	WriteResolutionReport(report types.ResolutionReport) error
}

type OutputReaderPort interface {
	ReadLock(path string) ([]types.LockEntry, error)
	ReadResolutionReport(path string) (types.ResolutionReport, error)
}
