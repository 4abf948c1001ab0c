package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/checkin/export"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/service"
	"github.com/mohitkumar/checkin/table"
	"go.uber.org/zap"
)

const XLSX_CONTENT_TYPE = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var billingMonth = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])$`)

func listTable[T any](w http.ResponseWriter, r *http.Request, kind string, def table.Definition[T], list func(context.Context) ([]T, error)) {
	q, err := table.ParseQuery(r.URL.Query(), def.Filters)
	if err != nil {
		respondWithServiceError(w, "invalid table query", err, zap.String("kind", kind))
		return
	}
	items, err := list(r.Context())
	if err != nil {
		respondWithServiceError(w, "error listing "+kind, err)
		return
	}
	respondWithJSON(w, http.StatusOK, table.Apply(items, def, q))
}

func getOne[T any](w http.ResponseWriter, r *http.Request, kind string, get func(context.Context, string) (T, error)) {
	id := mux.Vars(r)["id"]
	item, err := get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "error getting "+kind, err, zap.String("id", id))
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

// HandleIngestReport stores a report pushed by the call executor together with its calls.
func (s *Server) HandleIngestReport(w http.ResponseWriter, r *http.Request) {
	var req model.IngestRequest
	if err := decode(r, &req); err != nil {
		respondWithServiceError(w, "invalid report payload", err)
		return
	}
	id, err := s.recordService.Ingest(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, "error ingesting report", err, zap.String("manager", req.Report.Manager))
		return
	}
	respondOK(w, map[string]any{"success": true, "reportId": id})
}

func (s *Server) cors(w http.ResponseWriter) {
	if s.clientOrigin == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", s.clientOrigin)
	w.Header().Set("Vary", "origin")
}

func (s *Server) HandlePDFPreflight(w http.ResponseWriter, r *http.Request) {
	s.cors(w)
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadPDF takes the raw document body for the report named by ?id=.
func (s *Server) HandleUploadPDF(w http.ResponseWriter, r *http.Request) {
	s.cors(w)
	reportId := r.URL.Query().Get("id")
	if reportId == "" {
		respondWithServiceError(w, "pdf upload without report id", service.InvalidRequestError{Details: []string{"id is required"}})
		return
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxPDFSize+1))
	if err != nil {
		respondWithServiceError(w, "error reading pdf body", service.InvalidRequestError{Details: []string{err.Error()}})
		return
	}
	if len(data) == 0 {
		respondWithServiceError(w, "empty pdf upload", service.InvalidRequestError{Details: []string{"body is empty"}}, zap.String("report", reportId))
		return
	}
	if len(data) > maxPDFSize {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("pdf larger than %d bytes", maxPDFSize))
		return
	}
	blobId, err := s.recordService.UploadPDF(r.Context(), reportId, data)
	if err != nil {
		respondWithServiceError(w, "error storing pdf", err, zap.String("report", reportId))
		return
	}
	respondOK(w, map[string]any{"success": true, "reportId": reportId, "pdfLink": blobId})
}

func (s *Server) HandleGetReportPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, contentType, err := s.recordService.ReportPDF(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "error getting report pdf", err, zap.String("report", id))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) HandleListReports(w http.ResponseWriter, r *http.Request) {
	listTable(w, r, "reports", table.Reports, s.recordService.Store().ListReports)
}

func (s *Server) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "report", s.recordService.Store().GetReport)
}

func (s *Server) HandleListCalls(w http.ResponseWriter, r *http.Request) {
	listTable(w, r, "calls", table.Calls, s.recordService.Store().ListCalls)
}

func (s *Server) HandleGetCall(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "call", s.recordService.Store().GetCall)
}

func (s *Server) HandleListSummaries(w http.ResponseWriter, r *http.Request) {
	listTable(w, r, "summaries", table.Summaries, s.recordService.Store().ListSummaries)
}

func (s *Server) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "summary", s.recordService.Store().GetSummary)
}

func (s *Server) HandleListTranscriptions(w http.ResponseWriter, r *http.Request) {
	listTable(w, r, "transcriptions", table.Transcriptions, s.recordService.Store().ListTranscriptions)
}

func (s *Server) HandleGetTranscription(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "transcription", s.recordService.Store().GetTranscription)
}

func (s *Server) HandleListUsage(w http.ResponseWriter, r *http.Request) {
	listTable(w, r, "usage", table.Usage, s.recordService.Store().ListUsage)
}

func month(w http.ResponseWriter, r *http.Request) (string, bool) {
	m := mux.Vars(r)["month"]
	if !billingMonth.MatchString(m) {
		respondWithServiceError(w, "invalid billing month", service.InvalidRequestError{Details: []string{"month must be YYYY-MM"}}, zap.String("month", m))
		return "", false
	}
	return m, true
}

type monthUsage struct {
	Figures  export.UsageFigures   `json:"figures"`
	ByReport []model.UsageByReport `json:"byReport"`
	ByCall   []model.UsageByCall   `json:"byCall"`
}

func (s *Server) HandleGetUsage(w http.ResponseWriter, r *http.Request) {
	m, ok := month(w, r)
	if !ok {
		return
	}
	usage, byReport, byCall, err := s.recordService.MonthUsage(r.Context(), m)
	if err != nil {
		respondWithServiceError(w, "error getting usage", err, zap.String("month", m))
		return
	}
	respondWithJSON(w, http.StatusOK, monthUsage{Figures: export.Figures(usage, byReport), ByReport: byReport, ByCall: byCall})
}

func (s *Server) HandleExportUsage(w http.ResponseWriter, r *http.Request) {
	m, ok := month(w, r)
	if !ok {
		return
	}
	data, err := s.recordService.ExportUsage(r.Context(), m)
	if err != nil {
		respondWithServiceError(w, "error exporting usage", err, zap.String("month", m))
		return
	}
	w.Header().Set("Content-Type", XLSX_CONTENT_TYPE)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "usage-"+m+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
