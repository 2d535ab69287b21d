// Package config loads the application settings.
//
// Values come from struct tag defaults, an optional config.yaml, the .env file and
// environment variables, the later sources overriding the earlier ones. Environment
// variables map onto nested keys with underscores (DATABASE_HOST -> database.host).
//
// # Configuration Structure
//
//   - Server: HTTP function host (port, API key, body limit, read timeout)
//   - Database: SQL connection (mysql, postgres or sqlite)
//   - Storage: S3/MinIO credentials, bucket and key prefix
//   - Log: logging level and format
//   - Lakehouse: BigQuery project/dataset and object store table prefix
//   - Job: job status table and default job name
//   - Deploy: workspace API settings for publishing user data functions
//   - Sync: schema file and CSV encoding used by reconcile runs
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
