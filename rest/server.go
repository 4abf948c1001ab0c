package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	api_v1 "github.com/mohitkumar/checkin/api/v1"
	"github.com/mohitkumar/checkin/cache"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/service"
	"go.uber.org/zap"
)

const maxPDFSize = 32 << 20

type Server struct {
	http.Server
	Port              int
	clientOrigin      string
	departmentService *service.DepartmentService
	recordService     *service.RecordService
	assistantService  *service.AssistantService
	sessions          *cache.SessionCache
	dispatchQueue     persistence.Queue
}

type ServerConfig struct {
	HttpPort          int
	ClientOrigin      string
	DepartmentService *service.DepartmentService
	RecordService     *service.RecordService
	AssistantService  *service.AssistantService
	Sessions          *cache.SessionCache
	DispatchQueue     persistence.Queue
}

func NewServer(conf ServerConfig) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", conf.HttpPort),
			IdleTimeout: 2 * time.Second,
		},
		Port:              conf.HttpPort,
		clientOrigin:      conf.ClientOrigin,
		departmentService: conf.DepartmentService,
		recordService:     conf.RecordService,
		assistantService:  conf.AssistantService,
		sessions:          conf.Sessions,
		dispatchQueue:     conf.DispatchQueue,
	}
	s.Handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)

	router.HandleFunc("/departments", s.HandleCreateDepartment).Methods(http.MethodPost)
	router.HandleFunc("/departments", s.HandleListDepartments).Methods(http.MethodGet)
	router.HandleFunc("/departments/preview", s.HandlePreviewDepartment).Methods(http.MethodPost)
	router.HandleFunc("/departments/{id}", s.HandleGetDepartment).Methods(http.MethodGet)
	router.HandleFunc("/departments/{id}", s.HandleUpdateDepartment).Methods(http.MethodPut)
	router.HandleFunc("/departments/{id}/deactivate", s.HandleDeactivateDepartment).Methods(http.MethodPost)
	router.HandleFunc("/departments/{id}/workflow", s.HandleGetWorkflow).Methods(http.MethodGet)
	router.HandleFunc("/departments/{id}/function-call", s.HandleGetFunctionCall).Methods(http.MethodGet)
	router.HandleFunc("/departments/{id}/simulate", s.HandleSimulate).Methods(http.MethodPost)
	router.HandleFunc("/departments/{id}/inspect", s.HandleInspect).Methods(http.MethodGet)

	router.HandleFunc("/wizard", s.HandleStartWizard).Methods(http.MethodPost)
	router.HandleFunc("/wizard/forms/{step}", s.HandleGetForm).Methods(http.MethodGet)
	router.HandleFunc("/wizard/{id}", s.HandleGetWizard).Methods(http.MethodGet)
	router.HandleFunc("/wizard/{id}", s.HandleDiscardWizard).Methods(http.MethodDelete)
	router.HandleFunc("/wizard/{id}/next", s.HandleWizardNext).Methods(http.MethodPost)
	router.HandleFunc("/wizard/{id}/back", s.HandleWizardBack).Methods(http.MethodPost)
	router.HandleFunc("/wizard/{id}/edit/{step}", s.HandleWizardEdit).Methods(http.MethodPost)
	router.HandleFunc("/wizard/{id}/template/{baseType}", s.HandleWizardTemplate).Methods(http.MethodPost)
	router.HandleFunc("/wizard/{id}/preview", s.HandleWizardPreview).Methods(http.MethodGet)
	router.HandleFunc("/wizard/{id}/save", s.HandleWizardSave).Methods(http.MethodPost)
	router.HandleFunc("/wizard/{id}/{step}", s.HandleWizardUpdate).Methods(http.MethodPut)

	router.HandleFunc("/reports", s.HandleIngestReport).Methods(http.MethodPost)
	router.HandleFunc("/reports", s.HandleListReports).Methods(http.MethodGet)
	router.HandleFunc("/reports/pdf", s.HandleUploadPDF).Methods(http.MethodPost)
	router.HandleFunc("/reports/pdf", s.HandlePDFPreflight).Methods(http.MethodOptions)
	router.HandleFunc("/reports/{id}", s.HandleGetReport).Methods(http.MethodGet)
	router.HandleFunc("/reports/{id}/pdf", s.HandleGetReportPDF).Methods(http.MethodGet)
	router.HandleFunc("/calls", s.HandleListCalls).Methods(http.MethodGet)
	router.HandleFunc("/calls/{id}", s.HandleGetCall).Methods(http.MethodGet)
	router.HandleFunc("/summaries", s.HandleListSummaries).Methods(http.MethodGet)
	router.HandleFunc("/summaries/{id}", s.HandleGetSummary).Methods(http.MethodGet)
	router.HandleFunc("/transcriptions", s.HandleListTranscriptions).Methods(http.MethodGet)
	router.HandleFunc("/transcriptions/{id}", s.HandleGetTranscription).Methods(http.MethodGet)
	router.HandleFunc("/usage", s.HandleListUsage).Methods(http.MethodGet)
	router.HandleFunc("/usage/{month}", s.HandleGetUsage).Methods(http.MethodGet)
	router.HandleFunc("/usage/{month}/export", s.HandleExportUsage).Methods(http.MethodGet)

	router.HandleFunc("/dispatch/poll", s.HandlePollDispatch).Methods(http.MethodPost)
	router.HandleFunc("/schedules/{id}/run", s.HandleTriggerSchedule).Methods(http.MethodPost)

	router.HandleFunc("/assistant/form", s.HandleGetAssistantForm).Methods(http.MethodGet)
	router.HandleFunc("/assistant/config", s.HandleSubmitAssistantConfig).Methods(http.MethodPost)

	router.Use(loggingMiddleware)
	return router
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}
	return nil
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]any{"status": "ok"})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI, zap.String("method", r.Method))
		next.ServeHTTP(w, r)
	})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.InvalidRequestError{Details: []string{err.Error()}}
	}
	return nil
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	res, _ := json.Marshal(message)
	w.Write(res)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, api_v1.ErrorResponse{Message: message})
}

// respondWithServiceError logs err and writes the status it maps to.
func respondWithServiceError(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	code, body := api_v1.Status(err)
	fields = append(fields, zap.Int("status", code), zap.Error(err))
	if code >= http.StatusInternalServerError {
		logger.Error(msg, fields...)
	} else {
		logger.Info(msg, fields...)
	}
	respondWithJSON(w, code, body)
}
