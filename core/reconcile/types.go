package reconcile

import (
	"errors"

	"lakehouse-utils/core/table"
)

var (
	// ErrSchemaMismatch is returned when the key or the compared columns are not
	// present in both snapshots.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrAmbiguousKey is returned when a key value occurs more than once within a snapshot.
	ErrAmbiguousKey = errors.New("ambiguous key")
)

// ChangeType classifies a row of the reconciliation output.
type ChangeType string

const (
	// ChangeCreate marks a row present only in the new snapshot.
	ChangeCreate ChangeType = "Create"
	// ChangeUpdate marks a matched row with at least one differing column.
	ChangeUpdate ChangeType = "Update"
	// ChangeDelete marks a row present only in the historic snapshot.
	ChangeDelete ChangeType = "Delete"
	// ChangeNone marks a matched row without differences.
	ChangeNone ChangeType = "No change"
)

const (
	// ColumnTypeOfChange holds the ChangeType of every output row.
	ColumnTypeOfChange = "type_of_change"

	// ColumnChangedColumns holds the ordered list of differing columns of an update,
	// null everywhere else.
	ColumnChangedColumns = "changed_columns"

	// OldPrefix prefixes the historic value of a compared column.
	OldPrefix = "old_"
)

// Partition labels, in the order callers usually persist them.
const (
	PartitionCreate = "to_create"
	PartitionUpdate = "to_update"
	PartitionDelete = "to_delete"
	PartitionKeep   = "to_keep"
)

// PartitionNames lists the partition labels in a stable order.
var PartitionNames = []string{PartitionCreate, PartitionUpdate, PartitionDelete, PartitionKeep}

// Options controls the shape of the reconciliation output.
type Options struct {
	// IncludeChangedColumns adds the historic value of every compared column
	// (old_<col>) and the changed_columns list to update rows.
	IncludeChangedColumns bool
}

// Result holds the four disjoint partitions of a reconciliation.
type Result struct {
	// ToCreate contains rows whose key only exists in the new snapshot.
	ToCreate *table.Table `json:"to_create"`

	// ToUpdate contains matched rows with at least one differing column, carrying the
	// new values.
	ToUpdate *table.Table `json:"to_update"`

	// ToDelete contains rows whose key only exists in the historic snapshot.
	ToDelete *table.Table `json:"to_delete"`

	// ToKeep contains matched rows without differences.
	ToKeep *table.Table `json:"to_keep"`

	// Key is the key column set used for matching.
	Key []string `json:"key"`

	// Compared lists the non-key columns, in new-snapshot order.
	Compared []string `json:"compared"`
}

// Partitions returns the four partitions keyed by their label.
func (r *Result) Partitions() map[string]*table.Table {
	return map[string]*table.Table{
		PartitionCreate: r.ToCreate,
		PartitionUpdate: r.ToUpdate,
		PartitionDelete: r.ToDelete,
		PartitionKeep:   r.ToKeep,
	}
}

// Summary returns aggregate counts for the result.
func (r *Result) Summary() Summary {
	s := Summary{
		Created: r.ToCreate.Len(),
		Updated: r.ToUpdate.Len(),
		Deleted: r.ToDelete.Len(),
		Kept:    r.ToKeep.Len(),
	}
	s.Processed = s.Created + s.Updated + s.Deleted + s.Kept
	return s
}

// Summary provides aggregate statistics for a reconciliation.
type Summary struct {
	// Processed is the number of distinct keys across both snapshots.
	Processed int `json:"records_processed"`

	// Created counts rows in to_create.
	Created int `json:"records_created"`

	// Updated counts rows in to_update.
	Updated int `json:"records_updated"`

	// Deleted counts rows in to_delete.
	Deleted int `json:"records_deleted"`

	// Kept counts rows in to_keep.
	Kept int `json:"records_kept"`
}
