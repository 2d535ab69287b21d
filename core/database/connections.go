package database

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrConnectionNotFound is returned when a connections file has no entry for the
// requested environment and name.
var ErrConnectionNotFound = errors.New("connection not found")

// LoadConnection reads a named connection from a connections file laid out as
// {environment: {name: {driver, host, port, name, user, password}}}.
// Lookups are case-insensitive. Fields missing from the entry keep the Config defaults.
func LoadConnection(path, environment, name string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read connections file %s: %w", path, err)
	}

	sub := v.Sub(environment + "." + name)
	if sub == nil {
		return Config{}, fmt.Errorf("%w: %s/%s in %s", ErrConnectionNotFound, environment, name, path)
	}

	cfg := Config{
		Driver:         DriverMySQL,
		Host:           "localhost",
		Port:           3306,
		TimeoutSeconds: 30,
		SSLMode:        "disable",
	}
	if sub.IsSet("driver") && sub.GetString("driver") == DriverPostgres && !sub.IsSet("port") {
		cfg.Port = 5432
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode connection %s/%s: %w", environment, name, err)
	}
	return cfg, nil
}
