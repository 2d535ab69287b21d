// Package reconcile compares two snapshots of the same logical table and
// classifies every record as created, updated, deleted or unchanged.
//
// A reconciliation is a pure function of its inputs. Rows are matched on a
// caller-supplied key; matched rows are compared column by column with
// exact, type-sensitive equality (see table.Equal), so 1 and 1.0 differ and
// two nulls are equal.
//
// # Output
//
// Reconcile returns four disjoint partitions that together cover the union of
// keys of both snapshots:
//
//	to_create  keys only in the new snapshot      type_of_change = "Create"
//	to_update  matched keys with a difference     type_of_change = "Update"
//	to_delete  keys only in the historic snapshot type_of_change = "Delete"
//	to_keep    matched keys without differences   type_of_change = "No change"
//
// With Options.IncludeChangedColumns, update rows also carry old_<col> for every
// compared column and the ordered changed_columns list.
//
// # Applying results
//
// BuildPlan converts a Result into insert/update/delete actions and ApplyPlan
// executes them through a Mutator. Mutators may implement BatchInserter or
// BatchDeleter for bulk execution.
//
//	res, err := reconcile.Reconcile(fresh, current, []string{"id"}, reconcile.Options{})
//	plan := reconcile.BuildPlan(res)
//	n, err := reconcile.ApplyPlan(ctx, plan, mutator, reconcile.ApplyOptions{Confirmed: true})
package reconcile
