package networker

import (
	"context"
	"fmt"
	"net/http"

	"photo-loader/internal/cache"
	"photo-loader/internal/utils"

	"github.com/jimsmart/grobotstxt"
	"go.uber.org/zap"
)

const robotsKeyPrefix = "robots:"

// RobotsNetworker refuses URLs the host's robots.txt disallows for Agent.
// robots.txt bodies are kept in Cache.
type RobotsNetworker struct {
	Logger *zap.SugaredLogger
	Next   Networker
	Cache  cache.CachedStorage
	Agent  string
}

func NewRobotsNetworker(logger *zap.SugaredLogger, next Networker, storage cache.CachedStorage, agent string) *RobotsNetworker {
	return &RobotsNetworker{
		Logger: logger,
		Next:   next,
		Cache:  storage,
		Agent:  agent,
	}
}

func (n *RobotsNetworker) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	allowed, err := n.isAllowedByRobots(ctx, url)
	if err != nil {
		return nil, err
	}

	if !allowed {
		n.Logger.Warnw("skipping url because of robots.txt", "url", url)
		return nil, ErrNotAllowedByRobots
	}

	return n.Next.Fetch(ctx, url)
}

// isAllowedByRobots errors only when robots.txt could not be fetched at all.
// A 5xx robots.txt disallows everything.
func (n *RobotsNetworker) isAllowedByRobots(ctx context.Context, urlToCheck string) (bool, error) {
	baseURL, err := utils.GetBaseURL(urlToCheck)
	if err != nil {
		return false, fmt.Errorf("failed to get robots url for %s: %w", urlToCheck, err)
	}

	robots, errRobotsCache := n.Cache.Get(ctx, robotsKeyPrefix+baseURL)
	if errRobotsCache == nil {
		return grobotstxt.AgentAllowed(robots, n.Agent, urlToCheck), nil
	}

	robotsURL := baseURL + "/robots.txt"
	responseData, errFetch := n.Next.Fetch(ctx, robotsURL)
	if errFetch != nil {
		n.Logger.Errorw("failed to fetch robots", "url", robotsURL, "err", errFetch)
		return false, fmt.Errorf("failed to fetch %s: %w", robotsURL, errFetch)
	}

	// no robots.txt, or one we may not read: everything is allowed
	if responseData.Status >= http.StatusBadRequest && responseData.Status < http.StatusInternalServerError {
		robots = ""
	} else if responseData.Status >= http.StatusInternalServerError {
		n.Logger.Warnw("robots url unavailable", "url", robotsURL, "status", responseData.Status)
		return false, nil
	} else {
		robots = string(responseData.Body)
	}

	if errSaveCache := n.Cache.Set(ctx, robotsKeyPrefix+baseURL, robots, cache.BaseTTL); errSaveCache != nil {
		n.Logger.Warnw("failed to save robots cache", "url", baseURL, "err", errSaveCache)
	}

	return grobotstxt.AgentAllowed(robots, n.Agent, urlToCheck), nil
}
