package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"gopkg.in/yaml.v3"

	"reqforge/internal/ports"
	"reqforge/internal/shared"
	"reqforge/internal/types"
)

type PackageIndexBuilderAdapter struct{}

type PackageIndexWriterAdapter struct{}

const defaultFetchWorkers = 8
const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

func NewPackageIndexBuilderAdapter() PackageIndexBuilderAdapter {
	return PackageIndexBuilderAdapter{}
}

func NewPackageIndexWriterAdapter() PackageIndexWriterAdapter {
	return PackageIndexWriterAdapter{}
}

// Build fetches available versions per package from a PyPA simple
// index. When no explicit package list is given the whole index is
// walked, bounded by MaxPackages.
func (a PackageIndexBuilderAdapter) Build(ctx context.Context, request ports.IndexBuildRequest) (types.PackageIndexFile, error) {
	indexURL := strings.TrimSpace(request.IndexURL)
	if indexURL == "" {
		return types.PackageIndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index url is required")
	}
	simpleBase := normalizeSimpleIndex(indexURL)
	httpCfg := normalizeHTTPConfig(request.HTTPTimeoutSec, request.HTTPRetries, request.HTTPRetryDelayMs)
	names := uniqueStrings(normalizePackageNames(request.Packages))
	if len(names) == 0 {
		list, err := fetchPackageNames(ctx, simpleBase, request.User, request.APIKey, httpCfg)
		if err != nil {
			return types.PackageIndexFile{}, err
		}
		names = list
	}
	if request.MaxPackages > 0 && len(names) > request.MaxPackages {
		names = names[:request.MaxPackages]
	}
	index := map[string][]string{}
	if len(names) == 0 {
		return types.PackageIndexFile{Packages: index}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	workerCount := request.Workers
	if workerCount <= 0 {
		workerCount = defaultFetchWorkers
	}
	if len(names) < workerCount {
		workerCount = len(names)
	}
	type fetchResult struct {
		name     string
		versions []string
		err      error
	}
	tasks := make(chan string)
	results := make(chan fetchResult, len(names))
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range tasks {
				if ctx.Err() != nil {
					results <- fetchResult{name: name, err: ctx.Err()}
					continue
				}
				versions, err := fetchPackageVersions(ctx, simpleBase, name, request.User, request.APIKey, httpCfg)
				results <- fetchResult{name: name, versions: versions, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		tasks <- name
	}
	close(tasks)

	var firstErr error
	for result := range results {
		if result.err != nil && firstErr == nil {
			firstErr = result.err
			cancel()
		}
		if result.err == nil && len(result.versions) > 0 {
			index[result.name] = result.versions
		}
	}
	if firstErr != nil {
		return types.PackageIndexFile{}, firstErr
	}
	return types.PackageIndexFile{Packages: index}, nil
}

func (a PackageIndexWriterAdapter) Write(path string, index types.PackageIndexFile) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	data, err := yaml.Marshal(index)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal package index").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create package index directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write package index").
			WithCause(err)
	}
	return nil
}

func fetchPackageNames(ctx context.Context, simpleBase string, user string, apiKey string, httpCfg httpRetryConfig) ([]string, error) {
	resp, err := doRequest(ctx, simpleBase, user, apiKey, httpCfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to fetch package index").
			WithCause(shared.HTTPStatusError(resp.StatusCode, simpleBase))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read package index").
			WithCause(err)
	}
	names := parseSimpleNames(string(body))
	if len(names) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package index returned no packages")
	}
	return names, nil
}

func fetchPackageVersions(ctx context.Context, simpleBase string, name string, user string, apiKey string, httpCfg httpRetryConfig) ([]string, error) {
	url := strings.TrimRight(simpleBase, "/") + "/" + name + "/"
	resp, err := doRequest(ctx, url, user, apiKey, httpCfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to fetch package versions").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read package versions").
			WithCause(err)
	}
	versions := parseVersionsFromSimple(string(body))
	return sortPep440Versions(versions), nil
}

func normalizeSimpleIndex(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if strings.HasSuffix(trimmed, "/simple") {
		return trimmed + "/"
	}
	return trimmed + "/simple/"
}

func parseSimpleNames(content string) []string {
	re := regexp.MustCompile(`(?is)<a[^>]*>([^<]+)</a>`)
	matches := re.FindAllStringSubmatch(content, -1)
	var names []string
	for _, match := range matches {
		name := strings.TrimSpace(match[1])
		if name == "" {
			continue
		}
		names = append(names, shared.NormalizePipName(name))
	}
	sort.Strings(names)
	return uniqueStrings(names)
}

func parseVersionsFromSimple(content string) []string {
	re := regexp.MustCompile(`href=["']([^"']+)["']`)
	matches := re.FindAllStringSubmatch(content, -1)
	versions := map[string]struct{}{}
	for _, match := range matches {
		raw := strings.Split(match[1], "#")[0]
		raw = strings.Split(raw, "?")[0]
		filename := filepath.Base(raw)
		version := parseVersionFromFilename(filename)
		if version == "" {
			continue
		}
		if _, err := pep440.Parse(version); err != nil {
			continue
		}
		versions[version] = struct{}{}
	}
	return mapKeys(versions)
}

func parseVersionFromFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	wheel := regexp.MustCompile(`^(.+?)-([0-9][^-]*)(?:-[^-]+)?-[^-]+-[^-]+-[^-]+\.whl$`)
	if match := wheel.FindStringSubmatch(filename); len(match) == 3 {
		return match[2]
	}
	sdist := regexp.MustCompile(`^(.+?)-([0-9][^-]*)\.(?:tar\.gz|zip|tar\.bz2|tar\.xz|tgz)$`)
	if match := sdist.FindStringSubmatch(filename); len(match) == 3 {
		return match[2]
	}
	return ""
}

func normalizePackageNames(values []string) []string {
	var out []string
	for _, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		out = append(out, shared.NormalizePipName(name))
	}
	return out
}

func sortPep440Versions(versions []string) []string {
	sort.Slice(versions, func(i, j int) bool {
		vi, err := pep440.Parse(versions[i])
		if err != nil {
			return versions[i] < versions[j]
		}
		vj, err := pep440.Parse(versions[j])
		if err != nil {
			return versions[i] < versions[j]
		}
		return vi.Compare(vj) < 0
	})
	return versions
}

func mapKeys(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for key := range values {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func uniqueStrings(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func doRequest(ctx context.Context, url string, user string, apiKey string, cfg httpRetryConfig) (*http.Response, error) {
	client := &http.Client{Timeout: cfg.timeout}
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		if strings.TrimSpace(apiKey) != "" {
			authUser := strings.TrimSpace(user)
			if authUser == "" {
				authUser = "api"
			}
			req.SetBasicAuth(authUser, apiKey)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				time.Sleep(httpRetryDelay(attempt, cfg))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			time.Sleep(httpRetryDelay(attempt, cfg))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.PackageIndexBuilderPort = PackageIndexBuilderAdapter{}
var _ ports.PackageIndexWriterPort = PackageIndexWriterAdapter{}
