package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/persistence"
	"go.uber.org/zap"
)

const QUEUE_KEY string = "QUEUE"

type redisQueue struct {
	*baseDao
	queueName string
}

var _ persistence.Queue = new(redisQueue)

func NewRedisQueue(conf Config, queueName string) *redisQueue {
	return &redisQueue{
		baseDao:   newBaseDao(conf),
		queueName: queueName,
	}
}

func (rq *redisQueue) Push(ctx context.Context, message []byte) error {
	queueName := rq.getNamespaceKey(QUEUE_KEY, rq.queueName)
	if err := rq.redisClient.RPush(ctx, queueName, message).Err(); err != nil {
		logger.Error("error while push to redis list", zap.String("queue", queueName), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// Pop removes up to batchSize messages in push order.
func (rq *redisQueue) Pop(ctx context.Context, batchSize int) ([]string, error) {
	queueName := rq.getNamespaceKey(QUEUE_KEY, rq.queueName)
	res, err := rq.redisClient.LPopCount(ctx, queueName, batchSize).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return []string{}, nil
		}
		logger.Error("error while pop from redis list", zap.String("queue", queueName), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return res, nil
}
