package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/service"
	"github.com/mohitkumar/checkin/simulate"
	"github.com/mohitkumar/checkin/table"
	"go.uber.org/zap"
)

func (s *Server) HandleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req model.DepartmentRequest
	if err := decode(r, &req); err != nil {
		respondWithServiceError(w, "invalid department request", err)
		return
	}
	res, err := s.departmentService.Create(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, "error creating department", err, zap.String("name", req.Department.Name))
		return
	}
	respondWithJSON(w, http.StatusCreated, res)
}

// HandlePreviewDepartment generates without validating or saving.
func (s *Server) HandlePreviewDepartment(w http.ResponseWriter, r *http.Request) {
	var req model.DepartmentRequest
	if err := decode(r, &req); err != nil {
		respondWithServiceError(w, "invalid department request", err)
		return
	}
	respondWithJSON(w, http.StatusOK, s.departmentService.Preview(req))
}

func (s *Server) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	q, err := table.ParseQuery(r.URL.Query(), table.Departments.Filters)
	if err != nil {
		respondWithServiceError(w, "invalid table query", err)
		return
	}
	finals, err := s.departmentService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, "error listing departments", err)
		return
	}
	departments := make([]model.Department, 0, len(finals))
	for _, f := range finals {
		departments = append(departments, f.Department)
	}
	respondWithJSON(w, http.StatusOK, table.Apply(departments, table.Departments, q))
}

func (s *Server) HandleGetDepartment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	final, err := s.departmentService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "error getting department", err, zap.String("id", id))
		return
	}
	respondWithJSON(w, http.StatusOK, final)
}

func (s *Server) HandleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.DepartmentRequest
	if err := decode(r, &req); err != nil {
		respondWithServiceError(w, "invalid department request", err)
		return
	}
	res, err := s.departmentService.Update(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, "error updating department", err, zap.String("id", id))
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) HandleDeactivateDepartment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.departmentService.Deactivate(r.Context(), id); err != nil {
		respondWithServiceError(w, "error deactivating department", err, zap.String("id", id))
		return
	}
	respondOK(w, map[string]any{"deactivated": true})
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	wf, err := s.departmentService.Workflow(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "error getting workflow", err, zap.String("id", id))
		return
	}
	respondWithJSON(w, http.StatusOK, wf)
}

func (s *Server) HandleGetFunctionCall(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	code, err := s.departmentService.FunctionCall(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "error generating function call", err, zap.String("id", id))
		return
	}
	respondOK(w, map[string]any{"code": code})
}

func (s *Server) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	answers := simulate.Answers{}
	if err := decode(r, &answers); err != nil {
		respondWithServiceError(w, "invalid simulation answers", err)
		return
	}
	res, err := s.departmentService.Simulate(r.Context(), id, answers)
	if err != nil {
		respondWithServiceError(w, "error simulating workflow", err, zap.String("id", id))
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) HandleInspect(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	path := r.URL.Query().Get("path")
	if path == "" {
		respondWithServiceError(w, "missing inspect path", service.InvalidRequestError{Details: []string{"path is required"}})
		return
	}
	res, err := s.departmentService.Inspect(r.Context(), id, path)
	if err != nil {
		respondWithServiceError(w, "error inspecting workflow", err, zap.String("id", id), zap.String("path", path))
		return
	}
	logger.Debug("inspected workflow", zap.String("id", id), zap.String("path", path))
	respondWithJSON(w, http.StatusOK, map[string]any{"path": path, "result": res})
}
