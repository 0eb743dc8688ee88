package networker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultFetchTimeout = 30 * time.Second

type NetworkWorker struct {
	Logger *zap.SugaredLogger
	Client *http.Client
}

func NewNetworker(logger *zap.SugaredLogger, timeout time.Duration) *NetworkWorker {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &NetworkWorker{
		Logger: logger,
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (repo *NetworkWorker) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	repo.Logger.Debugw("fetch url", "url", url)

	resp, err := repo.Client.Do(req)
	if err != nil {
		repo.Logger.Warnw("fetch url error", "url", url, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	fetchResult := new(FetchResult)

	fetchResult.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		repo.Logger.Warnw("read body error", "url", url, "err", err)
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	fetchResult.ContentType = resp.Header.Get("Content-Type")
	if fetchResult.ContentType == "" {
		if len(fetchResult.Body) > 0 {
			fetchResult.ContentType = http.DetectContentType(fetchResult.Body)
		} else {
			fetchResult.ContentType = "application/octet-stream"
		}
	}

	fetchResult.Status = resp.StatusCode

	return fetchResult, nil
}
