package config

import (
	"time"

	"github.com/spf13/viper"
)

// Data data config struct
type Data struct {
	Database *Database
	Redis    *Redis
}

// Database relational store config struct
type Database struct {
	// Driver is one of sqlite3, postgres, mysql.
	Driver          string
	Source          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// Redis cache config struct. An empty Addr disables caching.
type Redis struct {
	Addr     string
	Username string
	Password string
	DB       int
	TTL      time.Duration
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		Database: &Database{
			Driver:          getStringOrDefault(v, "data.database.driver", "sqlite3"),
			Source:          getStringOrDefault(v, "data.database.source", "file:taskhive.db?_busy_timeout=5000"),
			MaxOpenConns:    getIntOrDefault(v, "data.database.max_open_conns", 16),
			MaxIdleConns:    getIntOrDefault(v, "data.database.max_idle_conns", 4),
			ConnMaxLifetime: getDurationOrDefault(v, "data.database.conn_max_lifetime", 30*time.Minute),
			Migrate:         getBoolOrDefault(v, "data.database.migrate", true),
		},
		Redis: &Redis{
			Addr:     v.GetString("data.redis.addr"),
			Username: v.GetString("data.redis.username"),
			Password: v.GetString("data.redis.password"),
			DB:       v.GetInt("data.redis.db"),
			TTL:      getDurationOrDefault(v, "data.redis.ttl", 5*time.Minute),
		},
	}
}
