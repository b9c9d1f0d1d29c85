// Package database provides a unified interface for connecting to metadata backends.
//
// # Supported Backends
//
//   - SQLite: single-node deployments and tests, via modernc.org/sqlite
//   - PostgreSQL: pgx connection pool
//   - DynamoDB: aws-sdk-go-v2, photos table with two owner indexes
//   - MongoDB: mongo-driver, photos collection with two owner indexes
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "snapvault.db",
//	    Tables: snapvault.Tables{Photos: "snapvault_photos"},
//	}
//
//	db, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	repo := db.GetRepo()
//
// Connect only opens the backend. Migrate creates tables and indexes;
// Validate checks an existing schema without changing it.
package database
