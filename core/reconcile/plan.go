package reconcile

import (
	"context"
	"fmt"
	"slices"

	"lakehouse-utils/core/table"
)

// ActionType identifies a planned mutation against a target table.
type ActionType string

const (
	// ActionInsert inserts a row from to_create.
	ActionInsert ActionType = "insert"
	// ActionUpdate overwrites the changed columns of a row from to_update.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a row listed in to_delete.
	ActionDelete ActionType = "delete"
)

// Action is a single mutation derived from a reconciliation result.
type Action struct {
	// Type is the mutation to perform.
	Type ActionType `json:"type"`

	// Key holds the key column values identifying the target row.
	Key table.Row `json:"key"`

	// Values holds the column values to write. Empty for deletes.
	Values table.Row `json:"values,omitempty"`

	// Changed lists the columns an update touches. When empty every compared
	// column is written.
	Changed []string `json:"changed,omitempty"`
}

// Plan is the ordered list of actions that brings a target table in line with the new
// snapshot. It is computed without side effects; use ApplyPlan to execute it.
type Plan struct {
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// ApplyOptions gates plan execution.
type ApplyOptions struct {
	// DryRun reports what would be done without executing any mutation.
	DryRun bool

	// Confirmed must be set to execute mutations.
	Confirmed bool
}

// Mutator applies single-row mutations to a target table.
type Mutator interface {
	Insert(ctx context.Context, values table.Row) error
	Update(ctx context.Context, key, values table.Row) error
	Delete(ctx context.Context, key table.Row) error
}

// BatchInserter is an optional Mutator extension for bulk inserts.
type BatchInserter interface {
	InsertBatch(ctx context.Context, rows []table.Row) error
}

// BatchDeleter is an optional Mutator extension for bulk deletes.
type BatchDeleter interface {
	DeleteBatch(ctx context.Context, keys []table.Row) error
}

// BuildPlan turns a reconciliation result into actions: deletes first, then updates,
// then inserts. Unchanged rows produce no action.
func BuildPlan(res *Result) *Plan {
	plan := &Plan{Summary: res.Summary()}

	for _, row := range res.ToDelete.Rows {
		plan.Actions = append(plan.Actions, Action{
			Type: ActionDelete,
			Key:  pick(row, res.Key),
		})
	}

	for _, row := range res.ToUpdate.Rows {
		changed, _ := row[ColumnChangedColumns].([]string)
		cols := res.Compared
		if len(changed) > 0 {
			cols = changed
		}
		plan.Actions = append(plan.Actions, Action{
			Type:    ActionUpdate,
			Key:     pick(row, res.Key),
			Values:  pick(row, cols),
			Changed: changed,
		})
	}

	for _, row := range res.ToCreate.Rows {
		plan.Actions = append(plan.Actions, Action{
			Type:   ActionInsert,
			Key:    pick(row, res.Key),
			Values: pick(row, concat(res.Key, res.Compared)),
		})
	}

	return plan
}

// Counts returns the number of planned actions per type.
func (p *Plan) Counts() map[ActionType]int {
	counts := make(map[ActionType]int, 3)
	for _, a := range p.Actions {
		counts[a.Type]++
	}
	return counts
}

// ApplyPlan executes the actions in a plan.
// Returns the number of actions executed and any error encountered.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, plan *Plan, m Mutator, opts ApplyOptions) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}
	if m == nil {
		return 0, fmt.Errorf("no mutator configured")
	}

	var (
		deletes []table.Row
		updates []Action
		inserts []table.Row
	)
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDelete:
			deletes = append(deletes, action.Key)
		case ActionUpdate:
			updates = append(updates, action)
		case ActionInsert:
			inserts = append(inserts, action.Values)
		}
	}

	if len(deletes) > 0 {
		if batch, ok := m.(BatchDeleter); ok {
			if err := batch.DeleteBatch(ctx, deletes); err != nil {
				return executed, fmt.Errorf("failed to batch delete %d rows: %w", len(deletes), err)
			}
			executed += len(deletes)
		} else {
			for _, key := range deletes {
				if err := m.Delete(ctx, key); err != nil {
					return executed, fmt.Errorf("failed to delete row (%s): %w", table.FormatKey(key, sortedKeys(key)), err)
				}
				executed++
			}
		}
	}

	for _, action := range updates {
		if err := ctx.Err(); err != nil {
			return executed, err
		}
		if err := m.Update(ctx, action.Key, action.Values); err != nil {
			return executed, fmt.Errorf("failed to update row (%s): %w", table.FormatKey(action.Key, sortedKeys(action.Key)), err)
		}
		executed++
	}

	if len(inserts) > 0 {
		if batch, ok := m.(BatchInserter); ok {
			if err := batch.InsertBatch(ctx, inserts); err != nil {
				return executed, fmt.Errorf("failed to batch insert %d rows: %w", len(inserts), err)
			}
			executed += len(inserts)
		} else {
			for _, values := range inserts {
				if err := m.Insert(ctx, values); err != nil {
					return executed, fmt.Errorf("failed to insert row: %w", err)
				}
				executed++
			}
		}
	}

	return executed, nil
}

// pick copies the named columns of a row.
func pick(row table.Row, columns []string) table.Row {
	out := make(table.Row, len(columns))
	for _, c := range columns {
		out[c] = row[c]
	}
	return out.Clone()
}

func sortedKeys(row table.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
