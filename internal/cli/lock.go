package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reqforge/internal/app"
)

type lockOptions struct {
	Manifest      string
	Index         string
	OutputDir     string
	Overrides     string
	PythonVersion string
	Markers       []string
	DebianCompat  bool
}

func newLockCommand() *cobra.Command {
	opts := lockOptions{}
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve the manifest against a package index and write lock outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLock(cmd.Context(), cmd, opts)
		},
	}
	addLockFlags(cmd, &opts)
	return cmd
}

// resolve is an alias for lock, kept for muscle memory from other
// package tooling.
func newResolveCommand() *cobra.Command {
	opts := lockOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the manifest against a package index and write lock outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLock(cmd.Context(), cmd, opts)
		},
	}
	addLockFlags(cmd, &opts)
	return cmd
}

func addLockFlags(cmd *cobra.Command, opts *lockOptions) {
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "Requirements manifest path")
	cmd.Flags().StringVar(&opts.Index, "index", "", "Package index file")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Overrides, "overrides", "", "Overrides file path")
	cmd.Flags().StringVar(&opts.PythonVersion, "python-version", "", "Target python version for markers")
	cmd.Flags().StringSliceVar(&opts.Markers, "marker", nil, "Marker variable override (key=value)")
	cmd.Flags().BoolVar(&opts.DebianCompat, "debian-compat", false, "Also emit a Debian package lock")

	_ = viper.BindPFlag("manifest", cmd.Flags().Lookup("manifest"))
	_ = viper.BindPFlag("index", cmd.Flags().Lookup("index"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("overrides", cmd.Flags().Lookup("overrides"))
	_ = viper.BindPFlag("python_version", cmd.Flags().Lookup("python-version"))
	_ = viper.BindPFlag("debian_compat", cmd.Flags().Lookup("debian-compat"))
}

func runLock(ctx context.Context, cmd *cobra.Command, opts lockOptions) error {
	markers, err := parseMarkerOverrides(resolveStrings(cmd, opts.Markers, "markers", "marker"))
	if err != nil {
		return err
	}
	service := newAppService()
	result, err := service.Lock(ctx, app.LockRequest{
		ManifestPath:   resolveString(cmd, opts.Manifest, "manifest", "manifest"),
		IndexPath:      resolveString(cmd, opts.Index, "index", "index"),
		OutputDir:      resolveString(cmd, opts.OutputDir, "output", "output"),
		OverridesPath:  resolveString(cmd, opts.Overrides, "overrides", "overrides"),
		PythonVersion:  resolveString(cmd, opts.PythonVersion, "python_version", "python-version"),
		MarkerOverride: markers,
		DebianCompat:   resolveBool(cmd, opts.DebianCompat, "debian_compat", "debian-compat"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("locked: %s (%d packages, %d skipped by markers)\n",
		result.ManifestPath, result.LockCount, result.SkippedCount)
	return nil
}

func parseMarkerOverrides(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	markers := map[string]string{}
	for _, value := range values {
		parts := strings.SplitN(value, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid marker override %q, expected key=value", value))
		}
		markers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return markers, nil
}
