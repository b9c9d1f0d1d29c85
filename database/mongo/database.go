// Package mongo implements the photo metadata repo using MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sagarc03/snapvault"
)

type database struct {
	client *driver.Client
	db     *driver.Database
	tables snapvault.Tables
}

// Connect creates a MongoDB client for the given URI. The photos
// collection lives in dbName.
func Connect(ctx context.Context, dsn, dbName string, tables snapvault.Tables) (*database, error) {
	if dbName == "" {
		return nil, fmt.Errorf("connect mongo: database name is required")
	}

	client, err := driver.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &database{
		client: client,
		db:     client.Database(dbName),
		tables: tables,
	}, nil
}

// Ping verifies the primary is reachable.
func (d *database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Migrate creates the owner listing indexes. The collection itself is
// created implicitly on first write.
func (d *database) Migrate(ctx context.Context) error {
	_, err := d.collection().Indexes().CreateMany(ctx, indexModels(d.tables))
	if err != nil {
		return fmt.Errorf("migrate: create indexes: %w", err)
	}
	return nil
}

// Validate checks that both owner listing indexes exist.
func (d *database) Validate(ctx context.Context) error {
	cur, err := d.collection().Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("validate schema %s: list indexes: %w", d.tables.Photos, err)
	}

	var indexes []bson.M
	if err := cur.All(ctx, &indexes); err != nil {
		return fmt.Errorf("validate schema %s: read indexes: %w", d.tables.Photos, err)
	}

	present := make(map[string]bool, len(indexes))
	for _, idx := range indexes {
		if name, ok := idx["name"].(string); ok {
			present[name] = true
		}
	}

	for _, model := range indexModels(d.tables) {
		name := *model.Options.Name
		if !present[name] {
			return fmt.Errorf("validate schema %s: missing index %s", d.tables.Photos, name)
		}
	}

	return nil
}

// GetRepo returns the MetaDataRepo for database operations.
func (d *database) GetRepo() snapvault.MetaDataRepo {
	return &repo{col: d.collection()}
}

// Close disconnects the client.
func (d *database) Close() error {
	return d.client.Disconnect(context.Background())
}

func (d *database) collection() *driver.Collection {
	return d.db.Collection(d.tables.Photos)
}

func indexModels(tables snapvault.Tables) []driver.IndexModel {
	return []driver.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName(tables.IndexName("user_idx")),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1}, {Key: "version_type", Value: 1},
				{Key: "created_at", Value: -1}, {Key: "_id", Value: -1},
			},
			Options: options.Index().SetName(tables.IndexName("user_version_idx")),
		},
	}
}
