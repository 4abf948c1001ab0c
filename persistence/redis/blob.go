package redis

import (
	"context"

	"github.com/google/uuid"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/persistence"
	"go.uber.org/zap"
)

const PDF_KEY string = "PDF"

type redisBlobStore struct {
	*baseDao
}

var _ persistence.BlobStore = new(redisBlobStore)

func NewRedisBlobStore(conf Config) *redisBlobStore {
	return &redisBlobStore{baseDao: newBaseDao(conf)}
}

func (b *redisBlobStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	id := uuid.NewString()
	key := b.getNamespaceKey(PDF_KEY, id)
	if err := b.redisClient.HSet(ctx, key, "contentType", contentType, "data", data).Err(); err != nil {
		logger.Error("error storing blob", zap.String("key", key), zap.Error(err))
		return "", persistence.StorageLayerError{Message: err.Error()}
	}
	return id, nil
}

func (b *redisBlobStore) Get(ctx context.Context, id string) ([]byte, string, error) {
	key := b.getNamespaceKey(PDF_KEY, id)
	fields, err := b.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, "", persistence.StorageLayerError{Message: err.Error()}
	}
	data, ok := fields["data"]
	if !ok {
		return nil, "", persistence.NotFoundError{Kind: "blob", Id: id}
	}
	return []byte(data), fields["contentType"], nil
}
