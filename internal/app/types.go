package app

import "reqforge/internal/types"

type ValidateRequest struct {
	ManifestPath  string
	OverridesPath string
}

type ValidateResult struct {
	ManifestPath     string
	RequirementCount int
	StrictCount      int
}

type RelaxRequest struct {
	ManifestPath string
	OutputPath   string
}

type RelaxResult struct {
	OutputPath    string
	DroppedBounds []types.RelaxedBound
}

type LockRequest struct {
	ManifestPath   string
	IndexPath      string
	OutputDir      string
	OverridesPath  string
	PythonVersion  string
	MarkerOverride map[string]string
	DebianCompat   bool
}

type LockResult struct {
	ManifestPath string
	OutputDir    string
	LockCount    int
	SkippedCount int
}

type IndexRequest struct {
	Output           string
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

type IndexResult struct {
	OutputPath   string
	PackageCount int
}

type InspectRequest struct {
	OutputDir string
}

type InspectResult struct {
	LockCount         int
	Locks             []types.LockEntry
	ResolutionRecords []types.ResolutionRecord
}
