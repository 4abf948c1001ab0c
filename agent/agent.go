package agent

import (
	"sync"

	"github.com/mohitkumar/checkin/analytics"
	"github.com/mohitkumar/checkin/config"
	"github.com/mohitkumar/checkin/container"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/rest"
	"github.com/mohitkumar/checkin/scheduler"
	"go.uber.org/zap"
)

type Agent struct {
	Config       config.Config
	diContainer  *container.DIContiner
	httpServer   *rest.Server
	scheduler    *scheduler.Scheduler
	shutdown     bool
	shutdowns    chan struct{}
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config:    config,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupAnalytics,
		a.setupContainer,
		a.setupScheduler,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupAnalytics() error {
	return analytics.InitDataCollector(a.Config.AnalyticsConfig)
}

func (a *Agent) setupContainer() error {
	a.diContainer = container.NewDiContainer()
	return a.diContainer.Init(a.Config)
}

func (a *Agent) setupScheduler() error {
	if !a.Config.SchedulerConfig.Enabled {
		logger.Info("scheduler disabled, workflows only run on demand")
		return nil
	}
	a.scheduler = scheduler.NewScheduler(
		a.diContainer.GetDepartmentStore(),
		a.diContainer.GetScheduleMarks(),
		a.diContainer.GetDispatchQueue(),
		a.Config.SchedulerConfig,
		&a.wg,
	)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(rest.ServerConfig{
		HttpPort:          a.Config.HttpPort,
		ClientOrigin:      a.Config.ClientOrigin,
		DepartmentService: a.diContainer.GetDepartmentService(),
		RecordService:     a.diContainer.GetRecordService(),
		AssistantService:  a.diContainer.GetAssistantService(),
		Sessions:          a.diContainer.GetSessionCache(),
		DispatchQueue:     a.diContainer.GetDispatchQueue(),
	})
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server failed", zap.Error(err))
			_ = a.Shutdown()
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		a.httpServer.Stop,
	}
	if a.scheduler != nil {
		shutdown = append(shutdown, a.scheduler.Stop)
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	if err := a.diContainer.Close(); err != nil {
		return err
	}
	return analytics.Close()
}

// Done is closed once shutdown has begun.
func (a *Agent) Done() <-chan struct{} {
	return a.shutdowns
}
