package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lakehouse-utils/core/database"
	"lakehouse-utils/core/table"
	"lakehouse-utils/feature/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var readFlags struct {
	filter   string
	query    string
	out      string
	describe bool
	encoding string
	conn     connectionFlags
}

// readCmd exports database tables to files.
var readCmd = &cobra.Command{
	Use:   "read [table...]",
	Short: "Read database tables into files",
	Long: `Read one or more tables, or the result of a query, from the configured database
or a connection picked from a connections file.

With a single table or --query, --out names the output file. With several tables,
--out is either an .xlsx workbook with one sheet per table or a directory of CSV files.

Examples:
  read people --filter "status = 'active'" --out people.csv
  read people positions --out snapshot.xlsx --connections connections.yaml --env dev --connection hr
  read --query "SELECT id, name FROM people" --out people.json
  read people --describe`,
	RunE: runRead,
}

func init() {
	f := readCmd.Flags()
	f.StringVar(&readFlags.filter, "filter", "", "SQL condition applied to every table")
	f.StringVar(&readFlags.query, "query", "", "Run this query instead of reading tables")
	f.StringVar(&readFlags.out, "out", "", "Output file or directory")
	f.BoolVar(&readFlags.describe, "describe", false, "Read the column definitions instead of the rows")
	f.StringVar(&readFlags.encoding, "encoding", "", "Text encoding of CSV outputs")
	f.StringVar(&readFlags.conn.file, "connections", "", "Connections file to pick the database from")
	f.StringVar(&readFlags.conn.environment, "env", "prod", "Environment in the connections file")
	f.StringVar(&readFlags.conn.name, "connection", "", "Connection name in the connections file")

	RootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if readFlags.query == "" && len(args) == 0 {
		return errors.New("name at least one table or pass --query")
	}
	if readFlags.query != "" && len(args) > 0 {
		return errors.New("--query cannot be combined with table names")
	}

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	opts, err := fileOptions(cfg, "", readFlags.encoding)
	if err != nil {
		return err
	}

	db, err := readFlags.conn.connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	reader := database.NewReader(db)

	names := args
	tables := make(map[string]*table.Table, len(args))
	switch {
	case readFlags.query != "":
		t, err := reader.Query(ctx, readFlags.query)
		if err != nil {
			return err
		}
		names = []string{"query"}
		tables["query"] = t
	case readFlags.describe:
		for _, name := range args {
			t, err := reader.Describe(ctx, name)
			if err != nil {
				return err
			}
			tables[name] = t
		}
	default:
		// Keep what could be read and report the rest at the end.
		tables, err = reader.ReadTables(ctx, args, readFlags.filter)
		if err != nil {
			l.Error("Some tables could not be read", zap.Error(err))
		}
	}

	for _, name := range names {
		if t, ok := tables[name]; ok {
			l.Info("Read", zap.String("table", name), zap.Int("rows", t.Len()), zap.Strings("columns", t.Columns))
		}
	}

	if readFlags.out != "" {
		files, werr := writeTables(readFlags.out, names, tables, export.Options{Encoding: opts.Encoding})
		if werr != nil {
			return werr
		}
		l.Info("Tables written", zap.Strings("files", files))
	}
	return err
}

// writeTables writes the tables that were read, in the given order.
func writeTables(out string, names []string, tables map[string]*table.Table, opts export.Options) ([]string, error) {
	var present []string
	for _, name := range names {
		if _, ok := tables[name]; ok {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}

	if len(names) == 1 {
		return []string{out}, export.WriteFile(out, tables[present[0]], opts)
	}

	if export.Format(out) == "xlsx" {
		list := make([]*table.Table, len(present))
		for i, name := range present {
			list[i] = tables[name]
		}
		return []string{out}, export.WriteSheets(out, list, present, false)
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, err
	}
	files := make([]string, 0, len(present))
	for _, name := range present {
		path := filepath.Join(out, name+".csv")
		if err := export.WriteFile(path, tables[name], opts); err != nil {
			return files, fmt.Errorf("failed to write %s: %w", name, err)
		}
		files = append(files, path)
	}
	return files, nil
}
