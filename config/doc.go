// Package config provides configuration loading and validation for Vana.
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
//  3. Environment variables (VANA_ prefix)
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
// All config keys map to environment variables with VANA_ prefix:
//   - server.port → VANA_SERVER_PORT
//   - database.type → VANA_DATABASE_TYPE
//   - log.level → VANA_LOG_LEVEL
//
// Backend blocks are map-valued and are best configured through files.
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port and graceful shutdown timeout
//   - Database: type (sqlite/postgres) and DSN
//   - Backends: named storage backend blocks; each name becomes a legal
//     storagePlatform value
//   - Credentials: inline or file-based signing credentials, keyed by
//     backend name
//   - Messages: optional error message catalog file
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be sqlite or postgres
//   - Backend type must be gcs, s3, or memory
//   - Log level must be debug, info, warn, or error
package config
