package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"reqforge/internal/ports"
	"reqforge/internal/types"
)

const (
	LockFileName             = "requirements.lock"
	DebianLockFileName       = "debian.lock"
	ResolutionReportFileName = "resolution.report"
)

type LockFileAdapter struct {
	Dir string
}

func NewLockFileAdapter(dir string) LockFileAdapter {
	return LockFileAdapter{Dir: dir}
}

// WriteLock emits a pip-installable pin list, one `name==version` per
// line, sorted by package name.
func (a LockFileAdapter) WriteLock(entries []types.LockEntry) error {
	path, err := a.ensurePath(LockFileName)
	if err != nil {
		return err
	}
	ordered := append([]types.LockEntry(nil), entries...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Package < ordered[j].Package
	})
	var lines []string
	for _, entry := range ordered {
		lines = append(lines, fmt.Sprintf("%s==%s", entry.Package, entry.Version))
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// WriteDebianLock emits the resolved set as Debian package pins for
// consumers that install the Python stack from system packages.
// Versions that do not parse as Debian versions are kept but logged.
func (a LockFileAdapter) WriteDebianLock(entries []types.DebianLockEntry) error {
	path, err := a.ensurePath(DebianLockFileName)
	if err != nil {
		return err
	}
	ordered := append([]types.DebianLockEntry(nil), entries...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Package < ordered[j].Package
	})
	var lines []string
	for _, entry := range ordered {
		if !debversion.Valid(entry.Version) {
			log.Warn().
				Str("package", entry.Package).
				Str("version", entry.Version).
				Msg("version is not a valid Debian version")
		}
		lines = append(lines, fmt.Sprintf("%s=%s", entry.Package, entry.Version))
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

func (a LockFileAdapter) WriteResolutionReport(report types.ResolutionReport) error {
	path, err := a.ensurePath(ResolutionReportFileName)
	if err != nil {
		return err
	}
	ordered := append([]types.ResolutionRecord(nil), report.Records...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Dependency != ordered[j].Dependency {
			return ordered[i].Dependency < ordered[j].Dependency
		}
		if ordered[i].Action != ordered[j].Action {
			return ordered[i].Action < ordered[j].Action
		}
		return ordered[i].Value < ordered[j].Value
	})
	var lines []string
	for _, record := range ordered {
		lines = append(lines, fmt.Sprintf(
			"%s,%s,%s,%s,%s,%s",
			record.Dependency,
			record.Action,
			record.Value,
			record.Reason,
			record.Owner,
			record.ExpiresAt,
		))
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func (a LockFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.LockOutputPort = LockFileAdapter{}
