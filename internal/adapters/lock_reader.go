package adapters

import (
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/ports"
	"reqforge/internal/types"
)

type LockReaderAdapter struct{}

func NewLockReaderAdapter() LockReaderAdapter {
	return LockReaderAdapter{}
}

func (a LockReaderAdapter) ReadLock(path string) ([]types.LockEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("requirements.lock not found").
			WithCause(err)
	}
	var entries []types.LockEntry
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "==", 2)
		if len(parts) != 2 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid requirements.lock format")
		}
		entries = append(entries, types.LockEntry{
			Package: strings.TrimSpace(parts[0]),
			Version: strings.TrimSpace(parts[1]),
		})
	}
	return entries, nil
}

func (a LockReaderAdapter) ReadResolutionReport(path string) (types.ResolutionReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.ResolutionReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("resolution.report not found").
			WithCause(err)
	}
	var records []types.ResolutionRecord
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 5 {
			return types.ResolutionReport{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid resolution.report format")
		}
		record := types.ResolutionRecord{
			Dependency: strings.TrimSpace(parts[0]),
			Action:     strings.TrimSpace(parts[1]),
			Value:      strings.TrimSpace(parts[2]),
			Reason:     strings.TrimSpace(parts[3]),
			Owner:      strings.TrimSpace(parts[4]),
		}
		if len(parts) > 5 {
			record.ExpiresAt = strings.TrimSpace(parts[5])
		}
		records = append(records, record)
	}
	return types.ResolutionReport{Records: records}, nil
}

var _ ports.OutputReaderPort = LockReaderAdapter{}
