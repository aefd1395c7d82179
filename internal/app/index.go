package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"reqforge/internal/ports"
)

func (s Service) Index(ctx context.Context, req IndexRequest) (IndexResult, error) {
	output := strings.TrimSpace(req.Output)
	if output == "" {
		return IndexResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	index, err := s.IndexBuild.Build(ctx, ports.IndexBuildRequest{
		IndexURL:         req.IndexURL,
		User:             req.User,
		APIKey:           req.APIKey,
		Packages:         req.Packages,
		MaxPackages:      req.MaxPackages,
		Workers:          req.Workers,
		HTTPTimeoutSec:   req.HTTPTimeoutSec,
		HTTPRetries:      req.HTTPRetries,
		HTTPRetryDelayMs: req.HTTPRetryDelayMs,
	})
	if err != nil {
		return IndexResult{}, err
	}
	if err := s.IndexWriter.Write(output, index); err != nil {
		return IndexResult{}, err
	}
	return IndexResult{
		OutputPath:   output,
		PackageCount: len(index.Packages),
	}, nil
}
