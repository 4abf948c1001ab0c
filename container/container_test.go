package container

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mohitkumar/checkin/config"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	mr := miniredis.RunT(t)
	conf := config.Config{
		RedisConfig:       config.RedisStorageConfig{Addrs: []string{mr.Addr()}, Namespace: "test"},
		StorageType:       config.STORAGE_TYPE_REDIS,
		RecordStorageType: config.RECORD_STORAGE_TYPE_MEMORY,
	}
	d := NewDiContainer()
	require.Panics(t, func() { d.GetDepartmentService() })

	require.NoError(t, d.Init(conf))
	defer d.Close()

	require.NotNil(t, d.GetDepartmentService())
	require.NotNil(t, d.GetRecordService())
	require.NotNil(t, d.GetSessionCache())
	require.NotNil(t, d.GetScheduleMarks())

	list, err := d.GetDepartmentStore().List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, d.GetDispatchQueue().Push(context.Background(), []byte(`{}`)))
	require.True(t, mr.Exists("test:QUEUE:"+DISPATCH_QUEUE))
}

func TestInitRejectsUnknownStorage(t *testing.T) {
	d := NewDiContainer()
	require.Error(t, d.Init(config.Config{StorageType: "cassandra"}))
	require.Error(t, d.Init(config.Config{StorageType: config.STORAGE_TYPE_REDIS, RedisConfig: config.RedisStorageConfig{Addrs: []string{"localhost:0"}}, RecordStorageType: "mongo"}))
	d.Close()
}
