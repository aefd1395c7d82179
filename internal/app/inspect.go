package app

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/adapters"
)

func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	locks, err := s.OutputReader.ReadLock(filepath.Join(outputDir, adapters.LockFileName))
	if err != nil {
		return InspectResult{}, err
	}
	report, err := s.OutputReader.ReadResolutionReport(filepath.Join(outputDir, adapters.ResolutionReportFileName))
	if err != nil {
		return InspectResult{}, err
	}
	return InspectResult{
		LockCount:         len(locks),
		Locks:             locks,
		ResolutionRecords: report.Records,
	}, nil
}
