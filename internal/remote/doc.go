// Package remote loads a value from a URL at most once, publishes every state
// change to its subscribers and can be offloaded to free the value and allow a
// later re-fetch.
//
// A Resource moves through NotStarted -> Loading -> Success|Failure and back to
// NotStarted on Offload. Loads are idempotent while Loading or Success, and a
// completion that arrives after Offload is dropped.
//
// Basic usage:
//
//	authors := remote.New(logger, fetcher, baseURL+"/v2/list", remote.JSONTransform[[]photos.Photo]())
//	unsubscribe := authors.Subscribe(func(s remote.FetchState[[]photos.Photo]) {
//	    logger.Infow("authors changed", "status", s.Status)
//	})
//	defer unsubscribe()
//
//	authors.Load(ctx)
//	...
//	authors.Offload()
package remote
