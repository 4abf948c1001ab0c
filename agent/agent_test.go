package agent

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mohitkumar/checkin/config"
	"github.com/stretchr/testify/require"
)

func TestAgentLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := New(config.Config{
		RedisConfig:       config.RedisStorageConfig{Addrs: []string{mr.Addr()}, Namespace: "test"},
		HttpPort:          0,
		StorageType:       config.STORAGE_TYPE_REDIS,
		RecordStorageType: config.RECORD_STORAGE_TYPE_MEMORY,
		SchedulerConfig:   config.SchedulerConfig{Enabled: true, TickInterval: 10 * time.Millisecond},
	})
	require.NoError(t, err)
	require.NoError(t, a.Start())

	// a few ticks against an empty department store
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())
	select {
	case <-a.Done():
	default:
		t.Fatal("shutdown channel still open")
	}
}

func TestAgentFailsOnUnknownStorage(t *testing.T) {
	_, err := New(config.Config{StorageType: "cassandra"})
	require.Error(t, err)
}
