// Package database handles database connections and moves tables in and out of SQL.
//
// It wraps GORM to configure MySQL, PostgreSQL (through pgx) and SQLite connections
// from the application's configuration, and uses goqu to build statements in the
// connection's dialect.
//
// # Reading
//
// Reader.ReadTable runs SELECT * against a table with an optional raw condition and
// returns a table.Table. Reader.Query runs arbitrary SQL.
//
// # Writing
//
// TableMutator implements reconcile.Mutator so a reconciliation plan can be applied
// directly to a SQL table.
//
// # Usage
//
//	cfg, err := database.LoadConnection("connections.yaml", "prod", "hr")
//	db, err := database.Connect(cfg)
//	people, err := database.NewReader(db).ReadTable(ctx, "people", "active = 1")
package database
