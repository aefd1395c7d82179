package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reqforge/internal/app"
)

type indexOptions struct {
	Output       string
	IndexURL     string
	User         string
	APIKey       string
	Packages     []string
	Max          int
	Workers      int
	Timeout      int
	Retries      int
	RetryDelayMs int
}

func newIndexCommand() *cobra.Command {
	opts := indexOptions{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build an offline package index from a PyPA simple index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Output, "output", "package-index.yaml", "Output index file")
	cmd.Flags().StringVar(&opts.IndexURL, "index-url", "https://pypi.org/simple", "Simple index base URL")
	cmd.Flags().StringVar(&opts.User, "user", "", "Index basic auth user")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "Index basic auth key")
	cmd.Flags().StringSliceVar(&opts.Packages, "package", nil, "Package name(s) to index (default: whole index)")
	cmd.Flags().IntVar(&opts.Max, "max", 0, "Maximum number of packages to index")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent fetch workers")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", 0, "HTTP timeout in seconds")
	cmd.Flags().IntVar(&opts.Retries, "retries", 0, "HTTP retry attempts")
	cmd.Flags().IntVar(&opts.RetryDelayMs, "retry-delay-ms", 0, "Base HTTP retry delay in milliseconds")

	_ = viper.BindPFlag("index_output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("index_url", cmd.Flags().Lookup("index-url"))
	_ = viper.BindPFlag("index_user", cmd.Flags().Lookup("user"))
	_ = viper.BindPFlag("index_api_key", cmd.Flags().Lookup("api-key"))
	_ = viper.BindPFlag("index_packages", cmd.Flags().Lookup("package"))
	_ = viper.BindPFlag("index_max", cmd.Flags().Lookup("max"))
	_ = viper.BindPFlag("index_workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("index_timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("index_retries", cmd.Flags().Lookup("retries"))
	_ = viper.BindPFlag("index_retry_delay_ms", cmd.Flags().Lookup("retry-delay-ms"))
	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, opts indexOptions) error {
	service := newAppService()
	result, err := service.Index(ctx, app.IndexRequest{
		Output:           resolveString(cmd, opts.Output, "index_output", "output"),
		IndexURL:         resolveString(cmd, opts.IndexURL, "index_url", "index-url"),
		User:             resolveString(cmd, opts.User, "index_user", "user"),
		APIKey:           resolveString(cmd, opts.APIKey, "index_api_key", "api-key"),
		Packages:         resolveStrings(cmd, opts.Packages, "index_packages", "package"),
		MaxPackages:      resolveInt(cmd, opts.Max, "index_max", "max"),
		Workers:          resolveInt(cmd, opts.Workers, "index_workers", "workers"),
		HTTPTimeoutSec:   resolveInt(cmd, opts.Timeout, "index_timeout", "timeout"),
		HTTPRetries:      resolveInt(cmd, opts.Retries, "index_retries", "retries"),
		HTTPRetryDelayMs: resolveInt(cmd, opts.RetryDelayMs, "index_retry_delay_ms", "retry-delay-ms"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("indexed: %d packages -> %s\n", result.PackageCount, result.OutputPath)
	return nil
}
