package cmd

import (
	"fmt"

	"lakehouse-utils/feature/export"
	syncfeature "lakehouse-utils/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enforceFlags struct {
	in         string
	schemaPath string
	out        string
	sheet      string
	encoding   string
}

// enforceCmd coerces a file to a schema.
var enforceCmd = &cobra.Command{
	Use:   "enforce",
	Short: "Coerce the columns of a file to a schema",
	Long: `Read a file, coerce its columns to the types declared in a schema file and
write the result. Values that cannot be coerced become empty.

Examples:
  enforce --in positions.csv --schema schema.yaml --out positions.xlsx
  enforce --in legacy.csv --encoding windows-1252 --schema schema.yaml --out clean.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		schemaPath := enforceFlags.schemaPath
		if schemaPath == "" {
			schemaPath = cfg.Sync.SchemaPath
		}
		if schemaPath == "" {
			return fmt.Errorf("no schema given: set --schema or sync.schema_path")
		}
		sch, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}

		opts, err := fileOptions(cfg, enforceFlags.sheet, enforceFlags.encoding)
		if err != nil {
			return err
		}

		in, err := export.ReadFile(enforceFlags.in, opts)
		if err != nil {
			return err
		}

		out, err := syncfeature.NewService(l).Enforce(in, sch)
		if err != nil {
			return err
		}

		if err := export.WriteFile(enforceFlags.out, out, export.Options{Encoding: opts.Encoding}); err != nil {
			return err
		}

		l.Info("Schema enforced",
			zap.String("in", enforceFlags.in),
			zap.String("out", enforceFlags.out),
			zap.Int("rows", out.Len()),
			zap.Strings("columns", sch.Columns()),
		)
		return nil
	},
}

func init() {
	f := enforceCmd.Flags()
	f.StringVar(&enforceFlags.in, "in", "", "Input file (csv, xlsx, xls or json)")
	f.StringVar(&enforceFlags.schemaPath, "schema", "", "Schema file (defaults to sync.schema_path)")
	f.StringVar(&enforceFlags.out, "out", "", "Output file (csv, xlsx, xml or json)")
	f.StringVar(&enforceFlags.sheet, "sheet", "", "Worksheet to read from spreadsheet inputs")
	f.StringVar(&enforceFlags.encoding, "encoding", "", "Text encoding of CSV input and output")
	_ = enforceCmd.MarkFlagRequired("in")
	_ = enforceCmd.MarkFlagRequired("out")

	RootCmd.AddCommand(enforceCmd)
}
