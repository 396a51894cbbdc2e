package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "TASKHIVE"

var (
	mu     sync.Mutex
	v      *viper.Viper
	path   string
	config *Config
)

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	Server   *Server
	Logger   *Logger
	Data     *Data
	Auth     *Auth
	OAuth    *OAuth
	Email    *Email
	Storage  *Storage
	Reminder *Reminder
	Activity *Activity
	Tracing  *Tracing
	Viper    *viper.Viper
}

// Server http server config struct
type Server struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host:         getStringOrDefault(v, "server.host", "0.0.0.0"),
		Port:         getIntOrDefault(v, "server.port", 8080),
		ReadTimeout:  getDurationOrDefault(v, "server.read_timeout", 15*time.Second),
		WriteTimeout: getDurationOrDefault(v, "server.write_timeout", 15*time.Second),
		IdleTimeout:  getDurationOrDefault(v, "server.idle_timeout", 60*time.Second),
		CORSOrigins:  getStringSliceOrDefault(v, "server.cors_origins", []string{"*"}),
	}
}

// LoadConfig loads the configuration from the file. An empty path searches
// the usual locations and falls back to defaults when no file is found.
func LoadConfig(configPath string) (*Config, error) {
	nv := viper.New()
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.AddConfigPath(".")
		nv.AddConfigPath("$HOME/.taskhive")
		nv.AddConfigPath("/etc/taskhive")
		if ex, err := os.Executable(); err == nil {
			nv.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(nv)

	mu.Lock()
	v, path, config = nv, configPath, cfg
	mu.Unlock()

	return cfg, nil
}

// Default returns a configuration populated only with defaults.
func Default() *Config {
	return fromViper(viper.New())
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:  getStringOrDefault(v, "app_name", "taskhive"),
		RunMode:  getStringOrDefault(v, "run_mode", "release"),
		Server:   getServerConfig(v),
		Logger:   getLoggerConfig(v),
		Data:     getDataConfig(v),
		Auth:     getAuthConfig(v),
		OAuth:    getOAuthConfig(v),
		Email:    getEmailConfig(v),
		Storage:  getStorageConfig(v),
		Reminder: getReminderConfig(v),
		Activity: getActivityConfig(v),
		Tracing:  getTracingConfig(v),
		Viper:    v,
	}
}

// GetConfig returns the last loaded configuration.
func GetConfig() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		return nil, errors.New("config not loaded")
	}
	return config, nil
}

// Reload reloads the configuration from the file.
func Reload() (*Config, error) {
	mu.Lock()
	nv := v
	mu.Unlock()
	if nv == nil {
		return nil, errors.New("config not loaded")
	}

	if err := nv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	cfg := fromViper(nv)

	mu.Lock()
	config = cfg
	mu.Unlock()
	return cfg, nil
}

// Watch watches the configuration file and reloads it when it changes.
// Reload errors are passed to onError when it is not nil.
func Watch(callback func(*Config), onError func(error)) {
	mu.Lock()
	nv := v
	mu.Unlock()
	if nv == nil || nv.ConfigFileUsed() == "" {
		return
	}

	nv.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Reload()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(cfg)
	})
	nv.WatchConfig()
}
