package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sadopc/taskboard/internal/store"
)

const (
	configName = "taskboard"
	envPrefix  = "TASKBOARD"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

type Config struct {
	DataDir  string `mapstructure:"data_dir" validate:"required"`
	Storage  string `mapstructure:"storage" validate:"oneof=sqlite file"`
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// DBPath is the sqlite database inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "taskboard.db")
}

// BoardFile is the JSON file used by the file storage backend.
func (c Config) BoardFile() string {
	return filepath.Join(c.DataDir, "board.json")
}

var validate = validator.New()

// Load resolves configuration from defaults, an optional config file,
// TASKBOARD_* environment variables (a .env file is honoured) and any
// flags bound in fs. cfgFile may be empty.
func Load(cfgFile string, fs *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	dataDir, err := store.DefaultDataDir()
	if err != nil {
		dataDir = ".taskboard"
	}
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("storage", StorageSQLite)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	if fs != nil {
		for _, key := range []string{"data_dir", "storage", "log_file", "log_level"} {
			if f := fs.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
