package sync

import (
	"context"
	"fmt"

	"lakehouse-utils/core/reconcile"
	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/table"
	"lakehouse-utils/feature/export"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source loads one snapshot.
type Source func(ctx context.Context) (*table.Table, error)

// FileSource reads a snapshot from a csv, xlsx, xls or json file.
func FileSource(path string, opts export.Options) Source {
	return func(context.Context) (*table.Table, error) {
		t, err := export.ReadFile(path, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return t, nil
	}
}

// TableSource returns an already loaded snapshot.
func TableSource(t *table.Table) Source {
	return func(context.Context) (*table.Table, error) {
		return t, nil
	}
}

// Request describes one reconciliation.
type Request struct {
	Key     []string
	Options reconcile.Options
	// Schema, when set, is applied to both snapshots before they are compared.
	Schema schema.Schema
}

// Service runs reconciliations and schema enforcement.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new sync service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Reconcile enforces the optional schema on both snapshots and partitions them.
func (s *Service) Reconcile(newSnapshot, historic *table.Table, req Request) (*reconcile.Result, error) {
	if req.Schema != nil {
		var err error
		if newSnapshot, err = schema.Enforce(newSnapshot, req.Schema); err != nil {
			return nil, fmt.Errorf("new snapshot: %w", err)
		}
		if historic, err = schema.Enforce(historic, req.Schema); err != nil {
			return nil, fmt.Errorf("historic snapshot: %w", err)
		}
	}

	res, err := reconcile.Reconcile(newSnapshot, historic, req.Key, req.Options)
	if err != nil {
		return nil, err
	}

	summary := res.Summary()
	s.logger.Info("Snapshots reconciled",
		zap.Strings("key", req.Key),
		zap.Int("processed", summary.Processed),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("deleted", summary.Deleted),
		zap.Int("kept", summary.Kept),
	)
	return res, nil
}

// ReconcileSources loads both snapshots concurrently, then reconciles them.
func (s *Service) ReconcileSources(ctx context.Context, newSrc, historicSrc Source, req Request) (*reconcile.Result, error) {
	var newSnapshot, historic *table.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := newSrc(gctx)
		newSnapshot = t
		return err
	})
	g.Go(func() error {
		t, err := historicSrc(gctx)
		historic = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("Snapshots loaded",
		zap.Int("new_rows", newSnapshot.Len()),
		zap.Int("historic_rows", historic.Len()),
	)
	return s.Reconcile(newSnapshot, historic, req)
}

// ReconcileFiles reads two snapshot files and reconciles them.
func (s *Service) ReconcileFiles(ctx context.Context, newPath, historicPath string, opts export.Options, req Request) (*reconcile.Result, error) {
	return s.ReconcileSources(ctx, FileSource(newPath, opts), FileSource(historicPath, opts), req)
}

// Enforce applies a schema to a table.
func (s *Service) Enforce(t *table.Table, sch schema.Schema) (*table.Table, error) {
	out, err := schema.Enforce(t, sch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Schema enforced", zap.Int("rows", out.Len()), zap.Int("columns", len(sch)))
	return out, nil
}
