package app

import (
	"context"
	"errors"
	"time"

	"photo-loader/internal/cache"
	"photo-loader/internal/events"
	"photo-loader/internal/photos"
	"photo-loader/internal/remote"
	"photo-loader/internal/server"
	"photo-loader/internal/store"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const saveTimeout = 10 * time.Second

type LoaderApp struct {
	logger    *zap.SugaredLogger
	nodeID    string
	publisher *remote.SerialExecutor
	catalog   *photos.Catalog
	server    *server.Server

	sink      events.Sink
	kafkaSink *events.KafkaSink
	photoRepo store.PhotoRepo
	storage   cache.CachedStorage
	tp        *trace.TracerProvider
}

var _ App = (*LoaderApp)(nil)

func (app *LoaderApp) StartApp(ctx context.Context) error {
	if app.photoRepo != nil {
		if err := app.photoRepo.EnsureConnectivity(ctx); err != nil {
			app.logger.Errorw("Error ensuring neo4j connectivity", "error", err)
			return err
		}

		app.catalog.Subscribe(app.persistAuthors)
	}

	events.Forward(app.catalog, app.sink, app.nodeID)

	go app.publisher.Start()

	if app.kafkaSink != nil {
		go app.kafkaSink.StartProducer()
	}

	go func() {
		if err := app.server.Start(); err != nil {
			app.logger.Errorw("HTTP server stopped", "error", err)
		}
	}()

	// the author list is the first thing every client asks for
	app.catalog.Authors().Load(context.WithoutCancel(ctx))

	return nil
}

func (app *LoaderApp) persistAuthors(change photos.Change) {
	if change.Kind != photos.AuthorsKind || change.Status != remote.Success {
		return
	}

	// runs on the publisher; don't block it on the database
	go func(list []photos.Photo) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := app.photoRepo.SavePhotos(ctx, list); err != nil {
			app.logger.Warnw("Failed to persist author list", "error", err)
			return
		}

		app.logger.Infow("Persisted author list", "photos", len(list))
	}(change.Photos)
}

func (app *LoaderApp) StopApp(ctx context.Context) error {
	var errs []error

	if err := app.server.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	app.catalog.OffloadAll()

	if err := app.publisher.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := app.sink.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if app.photoRepo != nil {
		if err := app.photoRepo.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := app.storage.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if app.tp != nil {
		if err := app.tp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
