package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (-config flag, TODOLIST_CONFIG, or ./todolist.toml when present)
// 3. Environment variables
// 4. CLI flags
func Load(flags *flag.FlagSet, args []string) (*Config, error) {
	return load(flags, args, os.LookupEnv)
}

func load(flags *flag.FlagSet, args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// flags are parsed first so -config is known, but applied last
	fv := bindFlags(flags, cfg)
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 2. Config file
	path, explicit := configFilePath(fv.configFile, lookup)
	if path != "" {
		err := loadConfigFile(cfg, path)
		switch {
		case err == nil:
			cfg.ConfigFile = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// 3. Override from environment
	if err := loadFromEnv(cfg, lookup); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// 4. Explicitly set flags override everything
	fv.apply(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configFilePath resolves which file to read and whether the user asked for it.
func configFilePath(flagValue string, lookup func(string) (string, bool)) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if v, ok := lookup("TODOLIST_CONFIG"); ok && v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys %v", undecoded)
	}
	return nil
}

// loadFromEnv overrides config from TODOLIST_* environment variables.
func loadFromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str("TODOLIST_ADDR", &cfg.Server.Addr)
	str("TODOLIST_STORE_DRIVER", &cfg.Store.Driver)
	str("TODOLIST_MONGO_URI", &cfg.Store.MongoURI)
	str("TODOLIST_MONGO_DATABASE", &cfg.Store.MongoDatabase)
	str("TODOLIST_MONGO_COLLECTION", &cfg.Store.MongoCollection)
	str("TODOLIST_SQLITE_PATH", &cfg.Store.SQLitePath)
	str("TODOLIST_LOG_LEVEL", &cfg.Log.Level)
	str("TODOLIST_LOG_FORMAT", &cfg.Log.Format)
	str("TODOLIST_API_URL", &cfg.Client.BaseURL)

	if v, ok := lookup("TODOLIST_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TODOLIST_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v, ok := lookup("TODOLIST_CORS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODOLIST_CORS: %w", err)
		}
		cfg.Server.CORS = b
	}

	return nil
}
