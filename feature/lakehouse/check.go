package lakehouse

import (
	"bytes"
	"context"
	"fmt"

	"lakehouse-utils/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// CheckTables returns the tables that have no folder under tablesPrefix.
func CheckTables(ctx context.Context, client storage.Client, bucket, tablesPrefix string, names []string) ([]string, error) {
	var missing []string

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	for _, name := range names {
		opts := minio.ListObjectsOptions{
			Prefix:    storage.Key(tablesPrefix, name) + "/",
			Recursive: false,
			MaxKeys:   1,
		}

		found := false
		for obj := range client.ListObjects(ctx, bucket, opts) {
			if obj.Err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", name, obj.Err)
			}
			found = true
			break
		}

		if !found {
			missing = append(missing, name)
		}
	}

	return missing, nil
}

// FixTables creates an empty folder marker for each missing table.
func FixTables(ctx context.Context, client storage.Client, bucket, tablesPrefix string, logger *zap.Logger, missing []string) error {
	for _, name := range missing {
		folder := storage.Key(tablesPrefix, name) + "/"

		_, err := client.PutObject(ctx, bucket, folder, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create table folder", zap.String("table", name), zap.Error(err))
			return err
		}
		logger.Info("Created missing table folder", zap.String("table", name), zap.String("folder", folder))
	}
	return nil
}
