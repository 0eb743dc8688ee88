package store

import (
	"context"
	"fmt"
	"time"

	"photo-loader/internal/photos"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

const (
	queryTimeout = 5 * time.Second

	savePhotosQuery = `
		UNWIND $photos AS photo
		MERGE (p:Photo {id: photo.id})
		ON CREATE SET p.foundAt = $seenAt
		SET p.width = photo.width, p.height = photo.height, p.url = photo.url,
			p.downloadURL = photo.downloadURL, p.lastSeenAt = $seenAt
		MERGE (a:Author {name: photo.author})
		MERGE (a)-[:SHOT]->(p)
	`
)

type Neo4jPhotoRepo struct {
	driver   neo4j.DriverWithContext
	logger   *zap.SugaredLogger
	database string
}

func NewNeo4jRepo(logger *zap.SugaredLogger, driver neo4j.DriverWithContext, database string) *Neo4jPhotoRepo {
	return &Neo4jPhotoRepo{
		driver:   driver,
		logger:   logger,
		database: database,
	}
}

func (repo *Neo4jPhotoRepo) EnsureConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return repo.driver.VerifyConnectivity(ctx)
}

func (repo *Neo4jPhotoRepo) SavePhotos(ctx context.Context, list []photos.Photo) error {
	if len(list) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	params := map[string]any{
		"photos": photoParams(list),
		"seenAt": time.Now().UTC(),
	}

	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if repo.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(repo.database))
	}

	queryRes, errQuery := neo4j.ExecuteQuery(ctx, repo.driver, savePhotosQuery, params, neo4j.EagerResultTransformer, opts...)
	if errQuery != nil {
		repo.logger.Errorw("failed to save photos", "count", len(list), "err", errQuery)
		return fmt.Errorf("failed to save photos: %w", errQuery)
	}

	repo.logger.Debugw("photos saved",
		"count", len(list),
		"nodesCreated", queryRes.Summary.Counters().NodesCreated(),
		"took", queryRes.Summary.ResultAvailableAfter(),
	)

	return nil
}

func (repo *Neo4jPhotoRepo) Stop(ctx context.Context) error {
	return repo.driver.Close(ctx)
}
