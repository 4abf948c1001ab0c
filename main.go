package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mohitkumar/checkin/agent"
	"github.com/mohitkumar/checkin/analytics"
	"github.com/mohitkumar/checkin/cache"
	"github.com/mohitkumar/checkin/config"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/scheduler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("redis-password", "", "redis password")
	cmd.Flags().Int("redis-pool-size", 0, "redis connection pool size, 0 for the client default")
	cmd.Flags().String("namespace", "checkin", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "redis", "implementation of department storage")
	cmd.Flags().String("record-storage-impl", "memory", "implementation of call record storage: postgres or memory")
	cmd.Flags().String("postgres-dsn", "postgres://localhost:5432/checkin?sslmode=disable", "postgres connection string")
	cmd.Flags().Int("postgres-max-conns", 10, "max open postgres connections")
	cmd.Flags().Int("postgres-max-idle", 5, "max idle postgres connections")
	cmd.Flags().Bool("postgres-migrate", true, "create call record tables on start")
	cmd.Flags().String("encoder-decoder", "JSON", "encoder decoder used to serialize data")
	cmd.Flags().Bool("scheduler-enabled", true, "dispatch scheduled workflows")
	cmd.Flags().Duration("scheduler-tick", scheduler.DEFAULT_TICK_INTERVAL, "interval between schedule evaluations")
	cmd.Flags().String("dispatch-queue", "dispatch", "queue the call executor polls")
	cmd.Flags().Uint64("dispatch-retries", 3, "retries when pushing a dispatch fails")
	cmd.Flags().Duration("dispatch-retry-delay", time.Second, "delay between dispatch push retries")
	cmd.Flags().Duration("session-ttl", cache.DEFAULT_SESSION_TTL, "idle expiry of wizard sessions")
	cmd.Flags().String("client-origin", "", "origin allowed to upload report pdfs from the browser")
	cmd.Flags().String("assistant-webhook", "", "endpoint receiving submitted assistant configurations")
	cmd.Flags().String("log-level", "info", "debug, info, warn or error")
	cmd.Flags().String("log-format", "json", "json or console")
	cmd.Flags().String("analytics-file", "", "write business events to this file")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Password = viper.GetString("redis-password")
	c.cfg.RedisConfig.PoolSize = viper.GetInt("redis-pool-size")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RecordStorageType = config.RecordStorageType(viper.GetString("record-storage-impl"))
	c.cfg.PostgresConfig.DSN = viper.GetString("postgres-dsn")
	c.cfg.PostgresConfig.MaxConns = viper.GetInt("postgres-max-conns")
	c.cfg.PostgresConfig.MaxIdle = viper.GetInt("postgres-max-idle")
	c.cfg.PostgresConfig.Migrate = viper.GetBool("postgres-migrate")
	c.cfg.EncoderDecoderType = config.EncoderDecoderType(viper.GetString("encoder-decoder"))
	c.cfg.SchedulerConfig.Enabled = viper.GetBool("scheduler-enabled")
	c.cfg.SchedulerConfig.TickInterval = viper.GetDuration("scheduler-tick")
	c.cfg.SchedulerConfig.QueueName = viper.GetString("dispatch-queue")
	c.cfg.SchedulerConfig.PushRetries = viper.GetUint64("dispatch-retries")
	c.cfg.SchedulerConfig.RetryDelay = viper.GetDuration("dispatch-retry-delay")
	c.cfg.SessionTTL = viper.GetDuration("session-ttl")
	c.cfg.ClientOrigin = viper.GetString("client-origin")
	c.cfg.AssistantWebhook = viper.GetString("assistant-webhook")
	c.cfg.LogLevel = viper.GetString("log-level")
	c.cfg.LogFormat = viper.GetString("log-format")
	if file := viper.GetString("analytics-file"); file != "" {
		c.cfg.AnalyticsConfig = analytics.DataCollectorConfig{FileName: file, CollectorType: analytics.LOG_FILE_DATA_COLLECTOR}
	}
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	if err := logger.Init(c.cfg.LogLevel, c.cfg.LogFormat, "checkin"); err != nil {
		return err
	}
	defer logger.Sync()

	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		return err
	}
	if err = agent.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-agent.Done():
	}
	return agent.Shutdown()
}

func newRootCommand() *cobra.Command {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:          "checkin",
		Short:        "Department check-in call workflow service",
		PreRunE:      cli.setupConfig,
		RunE:         cli.run,
		SilenceUsage: true,
	}
	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}
	cmd.AddCommand(
		newGenerateCommand(),
		newInspectCommand(),
		newPushReportCommand(),
		newUploadPDFCommand(),
		newCreateDepartmentCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
