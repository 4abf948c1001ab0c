package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/checkin/persistence"
)

const SCHEDULE_MARK_KEY string = "SCHEDULE_MARK"

type redisScheduleMarks struct {
	*baseDao
}

var _ persistence.ScheduleMarks = new(redisScheduleMarks)

func NewRedisScheduleMarks(conf Config) *redisScheduleMarks {
	return &redisScheduleMarks{baseDao: newBaseDao(conf)}
}

func (m *redisScheduleMarks) LastRun(ctx context.Context, scheduleId string) (time.Time, bool, error) {
	key := m.getNamespaceKey(SCHEDULE_MARK_KEY)
	val, err := m.redisClient.HGet(ctx, key, scheduleId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, persistence.StorageLayerError{Message: err.Error()}
	}
	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (m *redisScheduleMarks) MarkRun(ctx context.Context, scheduleId string, at time.Time) error {
	key := m.getNamespaceKey(SCHEDULE_MARK_KEY)
	if err := m.redisClient.HSet(ctx, key, scheduleId, at.UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
