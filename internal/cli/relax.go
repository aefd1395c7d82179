package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reqforge/internal/app"
)

type relaxOptions struct {
	Manifest string
	Output   string
}

func newRelaxCommand() *cobra.Command {
	opts := relaxOptions{}
	cmd := &cobra.Command{
		Use:   "relax",
		Short: "Drop CI-only upper bounds, keeping strict entries verbatim",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelax(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "Requirements manifest path")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Output path (defaults to in-place)")
	_ = viper.BindPFlag("manifest", cmd.Flags().Lookup("manifest"))
	return cmd
}

func runRelax(ctx context.Context, cmd *cobra.Command, opts relaxOptions) error {
	service := newAppService()
	result, err := service.Relax(ctx, app.RelaxRequest{
		ManifestPath: resolveString(cmd, opts.Manifest, "manifest", "manifest"),
		OutputPath:   opts.Output,
	})
	if err != nil {
		return err
	}
	fmt.Printf("relaxed: %s (%d bounds dropped)\n", result.OutputPath, len(result.DroppedBounds))
	for _, bound := range result.DroppedBounds {
		fmt.Printf("- %s %s%s\n", bound.Package, bound.Op, bound.Version)
	}
	return nil
}
