package container

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/mohitkumar/checkin/cache"
	"github.com/mohitkumar/checkin/client"
	"github.com/mohitkumar/checkin/config"
	"github.com/mohitkumar/checkin/generator"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/persistence/memory"
	"github.com/mohitkumar/checkin/persistence/postgres"
	rd "github.com/mohitkumar/checkin/persistence/redis"
	"github.com/mohitkumar/checkin/service"
	"github.com/mohitkumar/checkin/util"
	"go.uber.org/zap"
)

const DISPATCH_QUEUE = "dispatch"

type DIContiner struct {
	initialized       bool
	DepartmentEncDec  util.EncoderDecoder[model.FinalDepartmentObject]
	departmentStore   persistence.DepartmentStore
	recordStore       persistence.RecordStore
	blobStore         persistence.BlobStore
	dispatchQueue     persistence.Queue
	scheduleMarks     persistence.ScheduleMarks
	generator         *generator.Generator
	departmentService *service.DepartmentService
	recordService     *service.RecordService
	assistantService  *service.AssistantService
	sessions          *cache.SessionCache
	db                *sql.DB
	closers           []io.Closer
}

func (p *DIContiner) setInitialized() {
	p.initialized = true
}

func NewDiContainer() *DIContiner {
	return &DIContiner{
		initialized: false,
	}
}

func (d *DIContiner) Init(conf config.Config) error {
	switch conf.EncoderDecoderType {
	default:
		d.DepartmentEncDec = util.NewJsonEncoderDecoder[model.FinalDepartmentObject]()
	}

	switch conf.StorageType {
	case config.STORAGE_TYPE_REDIS, "":
		rdConf := rd.Config{
			Addrs:     conf.RedisConfig.Addrs,
			Namespace: conf.RedisConfig.Namespace,
			Password:  conf.RedisConfig.Password,
			PoolSize:  conf.RedisConfig.PoolSize,
		}
		departments := rd.NewRedisDepartmentStore(rdConf, d.DepartmentEncDec)
		blobs := rd.NewRedisBlobStore(rdConf)
		queueName := conf.SchedulerConfig.QueueName
		if queueName == "" {
			queueName = DISPATCH_QUEUE
		}
		queue := rd.NewRedisQueue(rdConf, queueName)
		marks := rd.NewRedisScheduleMarks(rdConf)
		d.departmentStore, d.blobStore, d.dispatchQueue, d.scheduleMarks = departments, blobs, queue, marks
		d.closers = append(d.closers, departments, blobs, queue, marks)
	default:
		return fmt.Errorf("unknown storage type %q", conf.StorageType)
	}

	switch conf.RecordStorageType {
	case config.RECORD_STORAGE_TYPE_POSTGRES:
		db, err := postgres.Open(postgres.Config{
			DSN:      conf.PostgresConfig.DSN,
			MaxConns: conf.PostgresConfig.MaxConns,
			MaxIdle:  conf.PostgresConfig.MaxIdle,
		})
		if err != nil {
			return err
		}
		if conf.PostgresConfig.Migrate {
			if err := postgres.Migrate(context.Background(), db); err != nil {
				db.Close()
				return err
			}
			logger.Info("record tables migrated")
		}
		d.db = db
		d.recordStore = postgres.NewPostgresRecordStore(db)
		d.closers = append(d.closers, db)
	case config.RECORD_STORAGE_TYPE_MEMORY, "":
		logger.Warn("call records are kept in memory and lost on restart")
		d.recordStore = memory.NewMemoryRecordStore()
	default:
		return fmt.Errorf("unknown record storage type %q", conf.RecordStorageType)
	}

	d.generator = generator.New()
	d.departmentService = service.NewDepartmentService(d.departmentStore, d.generator)
	d.recordService = service.NewRecordService(d.recordStore, d.blobStore)
	if conf.AssistantWebhook != "" {
		d.assistantService = service.NewAssistantService(client.NewWebhook(conf.AssistantWebhook))
	} else {
		logger.Warn("no assistant webhook configured, assistant configurations are validated only")
		d.assistantService = service.NewAssistantService(nil)
	}
	d.sessions = cache.NewSessionCache(conf.SessionTTL)
	d.setInitialized()
	return nil
}

func (d *DIContiner) check() {
	if !d.initialized {
		panic("persistence not initalized")
	}
}

func (d *DIContiner) GetDepartmentStore() persistence.DepartmentStore {
	d.check()
	return d.departmentStore
}

func (d *DIContiner) GetRecordStore() persistence.RecordStore {
	d.check()
	return d.recordStore
}

func (d *DIContiner) GetDispatchQueue() persistence.Queue {
	d.check()
	return d.dispatchQueue
}

func (d *DIContiner) GetScheduleMarks() persistence.ScheduleMarks {
	d.check()
	return d.scheduleMarks
}

func (d *DIContiner) GetGenerator() *generator.Generator {
	d.check()
	return d.generator
}

func (d *DIContiner) GetDepartmentService() *service.DepartmentService {
	d.check()
	return d.departmentService
}

func (d *DIContiner) GetRecordService() *service.RecordService {
	d.check()
	return d.recordService
}

func (d *DIContiner) GetAssistantService() *service.AssistantService {
	d.check()
	return d.assistantService
}

func (d *DIContiner) GetSessionCache() *cache.SessionCache {
	d.check()
	return d.sessions
}

// Close releases storage connections in the reverse order they were opened.
func (d *DIContiner) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			logger.Error("error closing storage", zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	d.closers = nil
	return first
}
