package jobstatus

// Config holds configuration for job status tracking.
type Config struct {
	// Name is the default job name used by commands.
	Name string `mapstructure:"name" default:"lakehouse_sync"`
	// StatusTable is the SQL table receiving one row per job run.
	StatusTable string `mapstructure:"status_table" default:"etl_job_status"`
	// AutoMigrate creates the status table when missing.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"false"`
}
