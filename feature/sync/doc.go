// Package sync exposes snapshot reconciliation and schema enforcement.
//
// # Components
//
//   - Service: loads snapshots (concurrently, from files or any Source), applies an
//     optional schema to both and runs the reconciler. The commands use it directly.
//   - Handler: HTTP endpoints over the service.
//   - Loader: registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /sync/reconcile : {"new", "historic", "key", "include_changed_columns",
//     "schema", "plan"} -> summary plus to_create, to_update, to_delete and to_keep.
//   - POST /sync/enforce : {"table", "schema"} -> {"table"}.
//
// Malformed bodies answer 400. Schema mismatches, ambiguous keys, missing schema
// columns and unknown types answer 422.
package sync
