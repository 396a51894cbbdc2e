// Package config loads the TaskHive configuration with Viper from YAML, JSON
// or TOML files, applies TASKHIVE_ prefixed environment overrides and watches
// the file for changes.
//
// Load configuration from file:
//
//	cfg, err := config.LoadConfig("./config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Example YAML:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	data:
//	  database:
//	    driver: sqlite3
//	    source: file:taskhive.db?_busy_timeout=5000
//	auth:
//	  jwt:
//	    secret: change-me
//	    access_expiry: 1h
//	reminder:
//	  interval: 30m
//	  window: 1h
//
// Environment variables take precedence over file configuration, with dots
// replaced by underscores:
//
//	export TASKHIVE_SERVER_PORT=9000
//	export TASKHIVE_AUTH_JWT_SECRET=production-secret
//
// Every section falls back to defaults when a key is missing, so an empty
// configuration starts a working development server on SQLite.
package config
