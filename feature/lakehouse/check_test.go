package lakehouse

import (
	"context"
	"errors"
	"testing"

	"lakehouse-utils/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckTables(t *testing.T) {
	ctx := context.Background()

	t.Run("BucketMissing", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "lake").Return(false, nil)

		_, err := CheckTables(ctx, m, "lake", "tables", []string{"people"})
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("SomeMissing", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "lake").Return(true, nil)
		m.On("ListObjects", ctx, "lake", minio.ListObjectsOptions{Prefix: "tables/people/", MaxKeys: 1}).
			Return(mocks.Objects("tables/people/part-a.csv"))
		m.On("ListObjects", ctx, "lake", minio.ListObjectsOptions{Prefix: "tables/positions/", MaxKeys: 1}).
			Return(mocks.Objects())

		missing, err := CheckTables(ctx, m, "lake", "tables", []string{"people", "positions"})
		require.NoError(t, err)
		assert.Equal(t, []string{"positions"}, missing)
	})

	t.Run("ListError", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "lake").Return(true, nil)
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Err: errors.New("denied")}
		close(ch)
		m.On("ListObjects", ctx, "lake", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		_, err := CheckTables(ctx, m, "lake", "tables", []string{"people"})
		assert.ErrorContains(t, err, "denied")
	})
}

func TestFixTables(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)
	m.On("PutObject", ctx, "lake", "tables/positions/", mock.Anything, int64(0), minio.PutObjectOptions{}).
		Return(minio.UploadInfo{}, nil).Once()

	require.NoError(t, FixTables(ctx, m, "lake", "tables", zap.NewNop(), []string{"positions"}))
	m.AssertExpectations(t)

	failing := new(mocks.Client)
	failing.On("PutObject", ctx, "lake", mock.Anything, mock.Anything, int64(0), minio.PutObjectOptions{}).
		Return(minio.UploadInfo{}, errors.New("read only"))
	assert.Error(t, FixTables(ctx, failing, "lake", "tables", zap.NewNop(), []string{"positions"}))
}
