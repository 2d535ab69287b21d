package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lakehouse-utils/core/config"
	"lakehouse-utils/core/database"
	"lakehouse-utils/core/logger"
	"lakehouse-utils/core/reconcile"
	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/storage"
	"lakehouse-utils/core/table"
	"lakehouse-utils/feature/export"
	"lakehouse-utils/feature/jobstatus"
	"lakehouse-utils/feature/lakehouse"
	syncfeature "lakehouse-utils/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var reconcileFlags struct {
	newPath        string
	historicPath   string
	historicTable  string
	historicFilter string
	historicPrefix string
	key            []string
	changedColumns bool
	schemaPath     string
	sheet          string
	encoding       string
	out            string
	upload         bool
	applyTable     string
	dryRun         bool
	yes            bool
	publishPrefix  string
	publishBQ      string
	publishMode    string
	jobName        string
	track          bool
	conn           connectionFlags
}

// reconcileCmd partitions a new snapshot against its historic snapshot.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Partition a new snapshot against its historic snapshot",
	Long: `Compare a new snapshot with the historic one on a key and split the rows into
to_create, to_update, to_delete and to_keep.

The historic snapshot comes from a file (--historic), a database table
(--historic-table) or the CSV parts of a table folder in the object store
(--historic-prefix).
Every run is tracked as a job; --track also appends the status row to the
configured job status table.

Examples:
  # Report only
  reconcile --new people.csv --historic people_old.csv --key id

  # Write the partitions to a workbook with changed columns
  reconcile --new people.xlsx --historic people_old.xlsx --key id --changed-columns --out report.xlsx

  # Apply the changes to a database table (interactive confirmation)
  reconcile --new people.csv --historic-table people --key id --apply-table people

  # Publish the new snapshot as the next historic snapshot
  reconcile --new people.csv --historic-prefix people --key id --publish-prefix people`,
	RunE: runReconcile,
}

func init() {
	f := reconcileCmd.Flags()
	f.StringVar(&reconcileFlags.newPath, "new", "", "New snapshot file (csv, xlsx, xls or json)")
	f.StringVar(&reconcileFlags.historicPath, "historic", "", "Historic snapshot file")
	f.StringVar(&reconcileFlags.historicTable, "historic-table", "", "Read the historic snapshot from this database table")
	f.StringVar(&reconcileFlags.historicFilter, "historic-filter", "", "SQL condition applied when reading --historic-table")
	f.StringVar(&reconcileFlags.historicPrefix, "historic-prefix", "", "Read the historic snapshot from this object store table folder")
	f.StringSliceVar(&reconcileFlags.key, "key", nil, "Key column(s), comma separated")
	f.BoolVar(&reconcileFlags.changedColumns, "changed-columns", false, "Add old_* values and changed_columns to to_update")
	f.StringVar(&reconcileFlags.schemaPath, "schema", "", "Schema file applied to both snapshots (defaults to sync.schema_path)")
	f.StringVar(&reconcileFlags.sheet, "sheet", "", "Worksheet to read from spreadsheet inputs")
	f.StringVar(&reconcileFlags.encoding, "encoding", "", "Text encoding of CSV inputs and outputs")
	f.StringVar(&reconcileFlags.out, "out", "", "Output: an .xlsx workbook with one sheet per partition, or a directory of CSV files")
	f.BoolVar(&reconcileFlags.upload, "upload", false, "Upload the outputs to the object store")
	f.StringVar(&reconcileFlags.applyTable, "apply-table", "", "Apply the changes to this database table")
	f.BoolVar(&reconcileFlags.dryRun, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	f.BoolVar(&reconcileFlags.yes, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	f.StringVar(&reconcileFlags.publishPrefix, "publish-prefix", "", "Write the new snapshot to this object store table folder")
	f.StringVar(&reconcileFlags.publishBQ, "publish-bigquery", "", "Load the new snapshot into this BigQuery table")
	f.StringVar(&reconcileFlags.publishMode, "publish-mode", "overwrite", "Publish mode: append or overwrite")
	f.StringVar(&reconcileFlags.jobName, "job-name", "", "Job name recorded in the status row (defaults to job.name)")
	f.BoolVar(&reconcileFlags.track, "track", false, "Append the job status row to the database")
	f.StringVar(&reconcileFlags.conn.file, "connections", "", "Connections file to pick the database from")
	f.StringVar(&reconcileFlags.conn.environment, "env", "prod", "Environment in the connections file")
	f.StringVar(&reconcileFlags.conn.name, "connection", "", "Connection name in the connections file")

	_ = reconcileCmd.MarkFlagRequired("new")
	_ = reconcileCmd.MarkFlagRequired("key")
	reconcileCmd.MarkFlagsMutuallyExclusive("historic", "historic-table", "historic-prefix")
	reconcileCmd.MarkFlagsOneRequired("historic", "historic-table", "historic-prefix")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := reconcileFlags

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	schemaPath := flags.schemaPath
	if schemaPath == "" {
		schemaPath = cfg.Sync.SchemaPath
	}
	sch, err := loadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	opts, err := fileOptions(cfg, flags.sheet, flags.encoding)
	if err != nil {
		return err
	}

	publishMode, err := lakehouse.ParseMode(flags.publishMode)
	if err != nil {
		return err
	}

	var db *gorm.DB
	if flags.historicTable != "" || flags.applyTable != "" || flags.track {
		if db, err = flags.conn.connect(cfg); err != nil {
			return err
		}
		defer database.Close(db)
	}

	var client storage.Client
	if flags.historicPrefix != "" || flags.publishPrefix != "" || flags.upload {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	var newSnapshot *table.Table
	newSrc := func(ctx context.Context) (*table.Table, error) {
		t, err := syncfeature.FileSource(flags.newPath, opts)(ctx)
		newSnapshot = t
		return t, err
	}

	var historicSrc syncfeature.Source
	switch {
	case flags.historicTable != "":
		reader := database.NewReader(db)
		historicSrc = func(ctx context.Context) (*table.Table, error) {
			return reader.ReadTable(ctx, flags.historicTable, flags.historicFilter)
		}
	case flags.historicPrefix != "":
		historicSrc = lakehouse.NewObjectWriter(client, cfg.Storage.Bucket, tablePrefix(cfg, flags.historicPrefix), sch, l).Read
	default:
		historicSrc = syncfeature.FileSource(flags.historicPath, opts)
	}

	sinks := jobstatus.MultiSink{jobstatus.LogSink{Logger: l}}
	if flags.track {
		gs, err := jobstatus.NewGormSink(db, cfg.Job.StatusTable, cfg.Job.AutoMigrate)
		if err != nil {
			return err
		}
		sinks = append(sinks, gs)
	}

	jobName := flags.jobName
	if jobName == "" {
		jobName = cfg.Job.Name
	}
	job := jobstatus.NewJob(jobName)
	jl := logger.WithJob(l, job.ID, job.Name)
	svc := syncfeature.NewService(jl)

	_, err = jobstatus.Run(ctx, job, sinks, jl, func(ctx context.Context) (*jobstatus.Metrics, error) {
		res, err := svc.ReconcileSources(ctx, newSrc, historicSrc, syncfeature.Request{
			Key:     flags.key,
			Options: reconcile.Options{IncludeChangedColumns: flags.changedColumns},
			Schema:  sch,
		})
		if err != nil {
			return nil, err
		}

		plan := reconcile.BuildPlan(res)
		printReconcileReport(jl, plan)

		if err := writePartitions(ctx, cfg, jl, client, job, res, flags.out, opts, flags.upload); err != nil {
			return nil, err
		}

		if flags.applyTable != "" {
			if err := applyToTable(ctx, jl, db, flags.applyTable, plan, flags.dryRun, flags.yes); err != nil {
				return nil, err
			}
		}

		if err := publishSnapshot(ctx, cfg, jl, client, newSnapshot, sch, publishMode, flags.publishPrefix, flags.publishBQ); err != nil {
			return nil, err
		}

		return jobstatus.MetricsFromSummary(plan.Summary), nil
	})
	return err
}

// printReconcileReport logs the summary and a sample of the planned actions.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("records_processed", s.Processed),
		zap.Int("records_created", s.Created),
		zap.Int("records_updated", s.Updated),
		zap.Int("records_deleted", s.Deleted),
		zap.Int("records_kept", s.Kept),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.Any("key", action.Key),
			zap.Strings("changed", action.Changed),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// writePartitions writes the partitions to out and optionally uploads the files.
func writePartitions(ctx context.Context, cfg *config.Config, l *zap.Logger, client storage.Client, job jobstatus.Job, res *reconcile.Result, out string, opts export.Options, upload bool) error {
	if out == "" {
		if upload {
			return errors.New("--upload needs --out")
		}
		return nil
	}

	parts := res.Partitions()
	var files []string

	if export.Format(out) == "xlsx" {
		tables := make([]*table.Table, len(reconcile.PartitionNames))
		for i, name := range reconcile.PartitionNames {
			tables[i] = parts[name]
		}
		if err := export.WriteSheets(out, tables, reconcile.PartitionNames, false); err != nil {
			return err
		}
		files = append(files, out)
	} else {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return err
		}
		for _, name := range reconcile.PartitionNames {
			path := filepath.Join(out, name+".csv")
			if err := export.WriteFile(path, parts[name], export.Options{Encoding: opts.Encoding}); err != nil {
				return err
			}
			files = append(files, path)
		}
	}
	l.Info("Partitions written", zap.Strings("files", files))

	if !upload {
		return nil
	}

	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		key := storage.Key(cfg.Storage.Prefix, "reconcile", job.Name, job.ID, filepath.Base(path))
		if err := storage.Upload(ctx, client, cfg.Storage.Bucket, key, data, contentType(path)); err != nil {
			return err
		}
		l.Info("Uploaded", zap.String("bucket", cfg.Storage.Bucket), zap.String("key", key))
	}
	return nil
}

// applyToTable executes the plan against a database table after confirmation.
func applyToTable(ctx context.Context, l *zap.Logger, db *gorm.DB, tableName string, plan *reconcile.Plan, dryRun, yes bool) error {
	if len(plan.Actions) == 0 {
		l.Info("No actions required.")
		return nil
	}

	counts := plan.Counts()
	l.Info("Planned actions",
		zap.String("table", tableName),
		zap.Int("delete_actions", counts[reconcile.ActionDelete]),
		zap.Int("update_actions", counts[reconcile.ActionUpdate]),
		zap.Int("insert_actions", counts[reconcile.ActionInsert]),
	)

	if dryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if !confirmDestructiveAction(yes) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	executed, err := reconcile.ApplyPlan(ctx, plan, database.NewTableMutator(db, tableName), reconcile.ApplyOptions{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to apply plan after %d actions: %w", executed, err)
	}

	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// publishSnapshot writes the new snapshot to the configured lakehouse destinations.
func publishSnapshot(ctx context.Context, cfg *config.Config, l *zap.Logger, client storage.Client, t *table.Table, sch schema.Schema, mode lakehouse.Mode, prefix, bqTable string) error {
	var writers []lakehouse.Writer

	if prefix != "" {
		writers = append(writers, lakehouse.NewObjectWriter(client, cfg.Storage.Bucket, tablePrefix(cfg, prefix), sch, l))
	}

	if bqTable != "" {
		bq, err := lakehouse.NewBigQueryWriter(ctx, cfg.Lakehouse, bqTable, sch, l)
		if err != nil {
			return err
		}
		defer bq.Close()
		writers = append(writers, bq)
	}

	for _, w := range writers {
		if err := w.Write(ctx, t, mode); err != nil {
			return err
		}
	}
	return nil
}

// tablePrefix returns the object store folder of a lakehouse table.
func tablePrefix(cfg *config.Config, name string) string {
	return storage.Key(cfg.Storage.Prefix, cfg.Lakehouse.TablesPrefix, name)
}
