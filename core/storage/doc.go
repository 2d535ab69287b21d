// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so object-store writes
// can be mocked in unit tests (see core/storage/mocks). The same client works
// against AWS S3 and self-hosted MinIO.
//
// # Helpers
//
//   - EnsureBucket: creates the target bucket on first use.
//   - Upload / Download: whole-object transfers for exports and snapshot files.
//   - ListKeys / RemoveKeys: prefix listing and batch deletion, used when a
//     table is overwritten.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.Upload(ctx, client, cfg.Storage.Bucket, "exports/people.xlsx", data, "")
package storage
