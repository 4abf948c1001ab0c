package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mohitkumar/checkin/scheduler"
	"github.com/mohitkumar/checkin/service"
	"go.uber.org/zap"
)

const (
	defaultPollBatch = 10
	maxPollBatch     = 100
)

// HandlePollDispatch hands pending workflow dispatches to the call executor. An empty
// queue answers with an empty list.
func (s *Server) HandlePollDispatch(w http.ResponseWriter, r *http.Request) {
	batchSize := defaultPollBatch
	if raw := r.URL.Query().Get("batchSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPollBatch {
			respondWithServiceError(w, "invalid poll batch size", service.InvalidRequestError{Details: []string{"batchSize must be between 1 and 100"}}, zap.String("batchSize", raw))
			return
		}
		batchSize = n
	}
	reqs, err := scheduler.Poll(r.Context(), s.dispatchQueue, batchSize)
	if err != nil {
		respondWithServiceError(w, "error polling dispatch queue", err)
		return
	}
	respondWithJSON(w, http.StatusOK, reqs)
}

// HandleTriggerSchedule queues an immediate run of a schedule's workflow.
func (s *Server) HandleTriggerSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	req, err := scheduler.Trigger(r.Context(), s.departmentService.Store(), s.dispatchQueue, id, time.Now().UTC())
	if errors.Is(err, scheduler.ErrDepartmentInactive) {
		err = service.InvalidRequestError{Details: []string{err.Error()}}
	}
	if err != nil {
		respondWithServiceError(w, "error triggering schedule", err, zap.String("schedule", id))
		return
	}
	respondWithJSON(w, http.StatusAccepted, req)
}
