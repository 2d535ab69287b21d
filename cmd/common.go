package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"lakehouse-utils/core/config"
	"lakehouse-utils/core/database"
	"lakehouse-utils/core/logger"
	"lakehouse-utils/core/schema"
	"lakehouse-utils/feature/export"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// loadSchemaFile loads and validates a schema file. An empty path means no schema.
func loadSchemaFile(path string) (schema.Schema, error) {
	if path == "" {
		return nil, nil
	}
	s, err := schema.LoadSchema(path)
	if err != nil {
		return nil, err
	}
	return s.Validate()
}

// fileOptions resolves the sheet and encoding flags, falling back to configuration.
func fileOptions(cfg *config.Config, sheet, encoding string) (export.Options, error) {
	if encoding == "" {
		encoding = cfg.Sync.Encoding
	}
	enc, err := export.Encoding(encoding)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{Sheet: sheet, Encoding: enc}, nil
}

// connectionFlags selects a database from a connections file instead of the configuration.
type connectionFlags struct {
	file        string
	environment string
	name        string
}

// connect opens the configured database, or the named connection when a connections
// file is given.
func (f connectionFlags) connect(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	if f.file != "" {
		c, err := database.LoadConnection(f.file, f.environment, f.name)
		if err != nil {
			return nil, err
		}
		dbCfg = c
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// confirmDestructiveAction prompts the user for confirmation or uses the --yes flag.
func confirmDestructiveAction(yes bool) bool {
	if yes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}

// contentType returns the MIME type of an exported file.
func contentType(path string) string {
	switch export.Format(path) {
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "xml":
		return "application/vnd.ms-excel"
	case "json":
		return "application/json"
	default:
		return "text/csv"
	}
}
