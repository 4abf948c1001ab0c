package redis

import (
	"context"
	"errors"
	"sort"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/util"
	"go.uber.org/zap"
)

const DEPARTMENT_KEY string = "DEPARTMENT"
const SCHEDULE_KEY string = "SCHEDULE"

type redisDepartmentStore struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.FinalDepartmentObject]
}

var _ persistence.DepartmentStore = new(redisDepartmentStore)

func NewRedisDepartmentStore(conf Config, encoderDecoder util.EncoderDecoder[model.FinalDepartmentObject]) *redisDepartmentStore {
	return &redisDepartmentStore{
		baseDao:        newBaseDao(conf),
		encoderDecoder: encoderDecoder,
	}
}

// Save writes the department and its schedule index in one transaction.
func (s *redisDepartmentStore) Save(ctx context.Context, final model.FinalDepartmentObject) error {
	data, err := s.encoderDecoder.Encode(final)
	if err != nil {
		return err
	}
	key := s.getNamespaceKey(DEPARTMENT_KEY)
	scheduleKey := s.getNamespaceKey(SCHEDULE_KEY)
	_, err = s.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.HSet(ctx, key, final.Department.Id, string(data))
		if final.Schedule.Id != "" {
			pipe.HSet(ctx, scheduleKey, final.Schedule.Id, final.Department.Id)
		}
		return nil
	})
	if err != nil {
		logger.Error("error saving department", zap.String("department", final.Department.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (s *redisDepartmentStore) Get(ctx context.Context, id string) (*model.FinalDepartmentObject, error) {
	key := s.getNamespaceKey(DEPARTMENT_KEY)
	val, err := s.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "department", Id: id}
		}
		logger.Error("error getting department", zap.String("department", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return s.encoderDecoder.Decode([]byte(val))
}

// List returns every department, newest first.
func (s *redisDepartmentStore) List(ctx context.Context) ([]model.FinalDepartmentObject, error) {
	key := s.getNamespaceKey(DEPARTMENT_KEY)
	values, err := s.redisClient.HVals(ctx, key).Result()
	if err != nil && !errors.Is(err, rd.Nil) {
		logger.Error("error listing departments", zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	res := make([]model.FinalDepartmentObject, 0, len(values))
	for _, v := range values {
		final, err := s.encoderDecoder.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		res = append(res, *final)
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i].Department, res[j].Department
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Id < b.Id
	})
	return res, nil
}

// Deactivate marks the department and its schedule inactive. Departments are never deleted.
func (s *redisDepartmentStore) Deactivate(ctx context.Context, id string, at time.Time) error {
	final, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	final.Department.IsActive = false
	final.Department.UpdatedAt = at
	final.Schedule.Enabled = false
	return s.Save(ctx, *final)
}

// DepartmentForSchedule resolves a schedule id to the id of the department that owns it.
func (s *redisDepartmentStore) DepartmentForSchedule(ctx context.Context, scheduleId string) (string, error) {
	key := s.getNamespaceKey(SCHEDULE_KEY)
	id, err := s.redisClient.HGet(ctx, key, scheduleId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return "", persistence.NotFoundError{Kind: "schedule", Id: scheduleId}
		}
		return "", persistence.StorageLayerError{Message: err.Error()}
	}
	return id, nil
}
