package cmd

import (
	"context"
	"fmt"

	"lakehouse-utils/core/logger"
	"lakehouse-utils/core/storage"
	"lakehouse-utils/feature/export"
	"lakehouse-utils/feature/jobstatus"
	"lakehouse-utils/feature/lakehouse"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lakeFlags struct {
	in         string
	out        string
	schemaPath string
	mode       string
	bigquery   bool
	sheet      string
	encoding   string
	track      bool
	fix        bool
}

// lakeCmd groups the lakehouse table commands.
var lakeCmd = &cobra.Command{
	Use:   "lake",
	Short: "Manage lakehouse tables",
	Long:  `Write, read, list and check the lakehouse tables kept as CSV parts in the object store or loaded into BigQuery.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// lakeWriteCmd writes a file into a lakehouse table.
var lakeWriteCmd = &cobra.Command{
	Use:   "write <table>",
	Short: "Write a file into a lakehouse table",
	Long: `Coerce a file to the schema and write it into a lakehouse table, appending a new
part or replacing the table. With --bigquery the table is loaded into the configured
BigQuery dataset instead. --track appends the job status row to the status table
kept in the same store.

Examples:
  lake write people --in people.csv --schema schema.yaml --mode append
  lake write people --in people.xlsx --mode overwrite --bigquery --track`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		mode, err := lakehouse.ParseMode(lakeFlags.mode)
		if err != nil {
			return err
		}

		schemaPath := lakeFlags.schemaPath
		if schemaPath == "" {
			schemaPath = cfg.Sync.SchemaPath
		}
		sch, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}

		opts, err := fileOptions(cfg, lakeFlags.sheet, lakeFlags.encoding)
		if err != nil {
			return err
		}

		var client storage.Client
		if !lakeFlags.bigquery || lakeFlags.track {
			if client, err = storage.NewClient(cfg.Storage); err != nil {
				return fmt.Errorf("failed to connect to storage: %w", err)
			}
			if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
				return err
			}
		}

		var w lakehouse.Writer
		var sink jobstatus.Sink = jobstatus.LogSink{Logger: l}
		if lakeFlags.bigquery {
			bq, err := lakehouse.NewBigQueryWriter(ctx, cfg.Lakehouse, name, sch, l)
			if err != nil {
				return err
			}
			defer bq.Close()
			w = bq
		} else {
			w = lakehouse.NewObjectWriter(client, cfg.Storage.Bucket, tablePrefix(cfg, name), sch, l)
		}

		if lakeFlags.track {
			status := lakehouse.NewObjectWriter(client, cfg.Storage.Bucket, tablePrefix(cfg, cfg.Job.StatusTable), jobstatus.StatusSchema, l)
			sink = jobstatus.MultiSink{sink, jobstatus.TableSink{Append: lakehouse.AppendFunc(status)}}
		}

		job := jobstatus.NewJob(cfg.Job.Name)
		jl := logger.WithJob(l, job.ID, job.Name)

		_, err = jobstatus.Run(ctx, job, sink, jl, func(ctx context.Context) (*jobstatus.Metrics, error) {
			t, err := export.ReadFile(lakeFlags.in, opts)
			if err != nil {
				return nil, err
			}
			if err := w.Write(ctx, t, mode); err != nil {
				return nil, err
			}
			m := &jobstatus.Metrics{Processed: t.Len(), Created: t.Len()}
			return m, nil
		})
		return err
	},
}

// lakeReadCmd exports an object store table to a file.
var lakeReadCmd = &cobra.Command{
	Use:   "read <table>",
	Short: "Read an object store table into a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		schemaPath := lakeFlags.schemaPath
		if schemaPath == "" {
			schemaPath = cfg.Sync.SchemaPath
		}
		sch, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}

		opts, err := fileOptions(cfg, "", lakeFlags.encoding)
		if err != nil {
			return err
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}

		t, err := lakehouse.NewObjectWriter(client, cfg.Storage.Bucket, tablePrefix(cfg, args[0]), sch, l).Read(cmd.Context())
		if err != nil {
			return err
		}

		if err := export.WriteFile(lakeFlags.out, t, export.Options{Encoding: opts.Encoding}); err != nil {
			return err
		}
		l.Info("Table read", zap.String("table", args[0]), zap.Int("rows", t.Len()), zap.String("out", lakeFlags.out))
		return nil
	},
}

// lakePartsCmd lists the part files of an object store table.
var lakePartsCmd = &cobra.Command{
	Use:   "parts <table>",
	Short: "List the part files of an object store table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}

		parts, err := lakehouse.NewObjectWriter(client, cfg.Storage.Bucket, tablePrefix(cfg, args[0]), nil, l).Parts(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range parts {
			fmt.Println(p)
		}
		l.Info("Parts listed", zap.String("table", args[0]), zap.Int("parts", len(parts)))
		return nil
	},
}

// lakeCheckCmd verifies that the object store holds a folder for each table.
var lakeCheckCmd = &cobra.Command{
	Use:   "check <table...>",
	Short: "Check that table folders exist in the object store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}

		tables := storage.Key(cfg.Storage.Prefix, cfg.Lakehouse.TablesPrefix)
		missing, err := lakehouse.CheckTables(ctx, client, cfg.Storage.Bucket, tables, args)
		if err != nil {
			return err
		}

		if len(missing) == 0 {
			l.Info("All tables present", zap.Strings("tables", args))
			return nil
		}
		l.Warn("Missing table folders", zap.Strings("tables", missing))

		if !lakeFlags.fix {
			return fmt.Errorf("%d table folders missing", len(missing))
		}
		return lakehouse.FixTables(ctx, client, cfg.Storage.Bucket, tables, l, missing)
	},
}

func init() {
	wf := lakeWriteCmd.Flags()
	wf.StringVar(&lakeFlags.in, "in", "", "Input file (csv, xlsx, xls or json)")
	wf.StringVar(&lakeFlags.mode, "mode", "append", "Write mode: append or overwrite")
	wf.BoolVar(&lakeFlags.bigquery, "bigquery", false, "Load into BigQuery instead of the object store")
	wf.StringVar(&lakeFlags.sheet, "sheet", "", "Worksheet to read from spreadsheet inputs")
	wf.BoolVar(&lakeFlags.track, "track", false, "Append the job status row to the status table")
	_ = lakeWriteCmd.MarkFlagRequired("in")

	lakeReadCmd.Flags().StringVar(&lakeFlags.out, "out", "", "Output file (csv, xlsx, xml or json)")
	_ = lakeReadCmd.MarkFlagRequired("out")

	lakeCheckCmd.Flags().BoolVar(&lakeFlags.fix, "fix", false, "Create the missing table folders")

	pf := lakeCmd.PersistentFlags()
	pf.StringVar(&lakeFlags.schemaPath, "schema", "", "Schema file (defaults to sync.schema_path)")
	pf.StringVar(&lakeFlags.encoding, "encoding", "", "Text encoding of CSV files")

	lakeCmd.AddCommand(lakeWriteCmd, lakeReadCmd, lakePartsCmd, lakeCheckCmd)
	RootCmd.AddCommand(lakeCmd)
}
