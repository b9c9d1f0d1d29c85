// Package config provides configuration loading and validation for snapvault.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SNAPVAULT_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SNAPVAULT_ prefix:
//   - server.port → SNAPVAULT_SERVER_PORT
//   - database.type → SNAPVAULT_DATABASE_TYPE
//   - identity.jwt.secret → SNAPVAULT_IDENTITY_JWT_SECRET
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev or prod, selects the log format
//   - Server: port, public_url and max_upload_size
//   - Service: credential_ttl in seconds for presigned URLs
//   - Database: metadata backend (sqlite, postgres, dynamodb, mongo) and table names
//   - Storage: object store (filesystem, s3, minio) and bucket names
//   - Identity: header or jwt caller identification
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
package config
