package lakehouse

// Config holds the destination settings for lakehouse tables.
type Config struct {
	// Project is the Google Cloud project hosting the BigQuery dataset.
	Project string `mapstructure:"project" default:""`
	// Dataset is the BigQuery dataset receiving loaded tables.
	Dataset string `mapstructure:"dataset" default:"lakehouse"`
	// TablesPrefix is the object store prefix under which table folders live.
	TablesPrefix string `mapstructure:"tables_prefix" default:"tables"`
}
