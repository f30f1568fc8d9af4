// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseURL: Database connection string or sqlite path (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - AdminPassword: Shared admin secret (required)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--admin-password Admin password

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_PASSWORD → --admin-password

CLI flags take precedence over environment variables. main loads a .env
file via godotenv before parsing, so a local .env works for development.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_PASSWORD must be provided
  - DATABASE_TYPE, when set, must be sqlite or postgres

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open(cfg.DriverName(), cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(store, h, cfg)
*/
package cliparse
