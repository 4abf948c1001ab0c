package config

import (
	"time"

	"github.com/mohitkumar/checkin/analytics"
)

type StorageType string

type RecordStorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"

const RECORD_STORAGE_TYPE_POSTGRES RecordStorageType = "postgres"
const RECORD_STORAGE_TYPE_MEMORY RecordStorageType = "memory"

type EncoderDecoderType string

const JSON_ENCODER_DECODER EncoderDecoderType = "JSON"

type Config struct {
	RedisConfig        RedisStorageConfig
	PostgresConfig     PostgresConfig
	HttpPort           int
	StorageType        StorageType
	RecordStorageType  RecordStorageType
	EncoderDecoderType EncoderDecoderType
	SchedulerConfig    SchedulerConfig
	SessionTTL         time.Duration
	ClientOrigin       string
	AssistantWebhook   string
	LogLevel           string
	LogFormat          string
	AnalyticsConfig    analytics.DataCollectorConfig
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
	Password  string
	PoolSize  int
}

type PostgresConfig struct {
	DSN      string
	MaxConns int
	MaxIdle  int
	Migrate  bool
}

type SchedulerConfig struct {
	Enabled      bool
	TickInterval time.Duration
	QueueName    string
	PushRetries  uint64
	RetryDelay   time.Duration
}
