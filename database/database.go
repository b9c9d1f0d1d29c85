package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/dynamodb"
	"github.com/sagarc03/snapvault/database/mongo"
	"github.com/sagarc03/snapvault/database/postgres"
	"github.com/sagarc03/snapvault/database/sqlite"
)

// Config holds the configuration for connecting to a metadata backend.
type Config struct {
	Type        string           `mapstructure:"type" validate:"required,oneof=sqlite postgres dynamodb mongo"`
	DSN         string           `mapstructure:"dsn" validate:"required_unless=Type dynamodb"`
	AutoMigrate bool             `mapstructure:"auto_migrate"`
	Tables      snapvault.Tables `mapstructure:"tables"`
	DynamoDB    DynamoDBConfig   `mapstructure:"dynamodb"`
	Mongo       MongoConfig      `mapstructure:"mongo"`
}

// DynamoDBConfig configures the DynamoDB client. Endpoint is only needed
// for DynamoDB Local or other compatible services.
type DynamoDBConfig struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// MongoConfig names the MongoDB database holding the photos collection.
type MongoConfig struct {
	Database string `mapstructure:"database"`
}

// Database is a connected metadata backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() snapvault.MetaDataRepo
	Close() error
}

// Connect opens the configured backend. It does not migrate or validate;
// callers decide which of those to run.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var (
		db  Database
		err error
	)

	switch cfg.Type {
	case "sqlite":
		db, err = sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		db, err = postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	case "dynamodb":
		db, err = dynamodb.Connect(ctx, dynamodb.Options{
			Region:    cfg.DynamoDB.Region,
			Endpoint:  cfg.DynamoDB.Endpoint,
			AccessKey: cfg.DynamoDB.AccessKey,
			SecretKey: cfg.DynamoDB.SecretKey,
		}, cfg.Tables)
	case "mongo":
		db, err = mongo.Connect(ctx, cfg.DSN, cfg.Mongo.Database, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	return db, nil
}
