// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Default values.
const (
	DefaultConfigFile      = "todolist.toml"
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultStoreDriver     = DriverMemory
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "todolist"
	DefaultMongoCollection = "todos"
	DefaultSQLitePath      = "todolist.db"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultBaseURL         = "http://localhost:8080"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

var (
	storeDrivers = []string{DriverMemory, DriverMongo, DriverSQLite}
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"text", "json", "pretty"}
)

// Config holds the full configuration for the todolist server and client.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
	Client ClientConfig `toml:"client"`

	// ConfigFile is the TOML file the values were read from, if any.
	ConfigFile string `toml:"-"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	CORS            bool          `toml:"cors"`
}

// StoreConfig selects and configures the todo store.
type StoreConfig struct {
	Driver          string `toml:"driver"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	SQLitePath      string `toml:"sqlite_path"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ClientConfig configures API clients such as the terminal frontend.
type ClientConfig struct {
	BaseURL string `toml:"base_url"`
}

// setDefaults fills cfg with the built-in defaults.
func setDefaults(cfg *Config) {
	cfg.Server = ServerConfig{
		Addr:            DefaultAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		CORS:            true,
	}
	cfg.Store = StoreConfig{
		Driver:          DefaultStoreDriver,
		MongoURI:        DefaultMongoURI,
		MongoDatabase:   DefaultMongoDatabase,
		MongoCollection: DefaultMongoCollection,
		SQLitePath:      DefaultSQLitePath,
	}
	cfg.Log = LogConfig{
		Level:  DefaultLogLevel,
		Format: DefaultLogFormat,
	}
	cfg.Client = ClientConfig{
		BaseURL: DefaultBaseURL,
	}
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Validate checks enumerated values and required fields.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if !slices.Contains(storeDrivers, c.Store.Driver) {
		return fmt.Errorf("unknown store.driver %q (want one of %v)", c.Store.Driver, storeDrivers)
	}
	if c.Store.Driver == DriverMongo && c.Store.MongoURI == "" {
		return fmt.Errorf("store.mongo_uri is required for the mongo driver")
	}
	if c.Store.Driver == DriverSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("unknown log.level %q (want one of %v)", c.Log.Level, logLevels)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("unknown log.format %q (want one of %v)", c.Log.Format, logFormats)
	}
	return nil
}
