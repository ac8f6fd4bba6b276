package config

import (
	"flag"
	"time"
)

// flagValues holds parsed flag values until they are applied over the
// file and environment layers.
type flagValues struct {
	configFile      string
	addr            string
	shutdownTimeout time.Duration
	cors            bool
	storeDriver     string
	mongoURI        string
	mongoDatabase   string
	sqlitePath      string
	logLevel        string
	logFormat       string
	baseURL         string
}

// bindFlags defines the CLI flags on fs with defaults taken from cfg.
func bindFlags(fs *flag.FlagSet, cfg *Config) *flagValues {
	fv := &flagValues{}

	fs.StringVar(&fv.configFile, "config", "", "Path to TOML config file")
	fs.StringVar(&fv.addr, "addr", cfg.Server.Addr, "HTTP server address")
	fs.DurationVar(&fv.shutdownTimeout, "shutdown-timeout", cfg.Server.ShutdownTimeout, "Graceful shutdown timeout")
	fs.BoolVar(&fv.cors, "cors", cfg.Server.CORS, "Send permissive CORS headers")
	fs.StringVar(&fv.storeDriver, "store", cfg.Store.Driver, "Store driver (memory, mongo, sqlite)")
	fs.StringVar(&fv.mongoURI, "mongo-uri", cfg.Store.MongoURI, "MongoDB connection URI")
	fs.StringVar(&fv.mongoDatabase, "mongo-db", cfg.Store.MongoDatabase, "MongoDB database name")
	fs.StringVar(&fv.sqlitePath, "sqlite-path", cfg.Store.SQLitePath, "SQLite database file")
	fs.StringVar(&fv.logLevel, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&fv.logFormat, "log-format", cfg.Log.Format, "Log format (text, json, pretty)")
	fs.StringVar(&fv.baseURL, "api-url", cfg.Client.BaseURL, "Base URL of the todo API (tui)")

	return fv
}

// apply copies every flag the user explicitly set into cfg.
func (fv *flagValues) apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = fv.addr
		case "shutdown-timeout":
			cfg.Server.ShutdownTimeout = fv.shutdownTimeout
		case "cors":
			cfg.Server.CORS = fv.cors
		case "store":
			cfg.Store.Driver = fv.storeDriver
		case "mongo-uri":
			cfg.Store.MongoURI = fv.mongoURI
		case "mongo-db":
			cfg.Store.MongoDatabase = fv.mongoDatabase
		case "sqlite-path":
			cfg.Store.SQLitePath = fv.sqlitePath
		case "log-level":
			cfg.Log.Level = fv.logLevel
		case "log-format":
			cfg.Log.Format = fv.logFormat
		case "api-url":
			cfg.Client.BaseURL = fv.baseURL
		}
	})
}
