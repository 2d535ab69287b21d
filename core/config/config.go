package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"lakehouse-utils/core/database"
	"lakehouse-utils/core/logger"
	"lakehouse-utils/core/server"
	"lakehouse-utils/core/storage"
	"lakehouse-utils/feature/deploy"
	"lakehouse-utils/feature/jobstatus"
	"lakehouse-utils/feature/lakehouse"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP function host.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Lakehouse holds the BigQuery and object store table destinations.
	Lakehouse lakehouse.Config `mapstructure:"lakehouse"`
	// Job holds configuration for job status tracking.
	Job jobstatus.Config `mapstructure:"job"`
	// Deploy holds configuration for publishing user data functions.
	Deploy deploy.Config `mapstructure:"deploy"`
	// Sync holds defaults for reconciliation runs.
	Sync SyncConfig `mapstructure:"sync"`
}

// SyncConfig holds defaults for reconciliation runs.
type SyncConfig struct {
	// Enabled exposes the reconcile endpoints on the HTTP host.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// SchemaPath points at the schema file applied to both snapshots, if any.
	SchemaPath string `mapstructure:"schema_path" default:""`
	// Encoding is the text encoding of CSV snapshots, e.g. "windows-1252".
	Encoding string `mapstructure:"encoding" default:""`
}

// LoadConfig loads configuration from an optional config.yaml, the .env file and
// environment variables, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
