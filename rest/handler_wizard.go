package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/service"
	"github.com/mohitkumar/checkin/wizard"
	"go.uber.org/zap"
)

type startWizardRequest struct {
	DepartmentId string `json:"departmentId"`
}

// scheduleUpdate accepts either the form values or a raw cron expression.
type scheduleUpdate struct {
	wizard.ScheduleValues
	Cron string `json:"cron"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	id := mux.Vars(r)["id"]
	wz, ok := s.sessions.GetSession(id)
	if !ok {
		respondWithServiceError(w, "unknown wizard session", persistence.NotFoundError{Kind: "wizard session", Id: id})
		return nil, false
	}
	return wz, true
}

// HandleStartWizard opens a session, seeded from a saved department when departmentId is given.
func (s *Server) HandleStartWizard(w http.ResponseWriter, r *http.Request) {
	var req startWizardRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithServiceError(w, "invalid wizard request", service.InvalidRequestError{Details: []string{err.Error()}})
		return
	}
	gen := s.departmentService.Generator()
	var wz *wizard.Wizard
	if req.DepartmentId != "" {
		existing, err := s.departmentService.Get(r.Context(), req.DepartmentId)
		if err != nil {
			respondWithServiceError(w, "error loading department for editing", err, zap.String("id", req.DepartmentId))
			return
		}
		wz = wizard.NewForExisting(gen, *existing)
	} else {
		wz = wizard.New(gen)
	}
	s.sessions.SaveSession(wz)
	logger.Info("wizard session started", zap.String("session", wz.Id()), zap.String("editing", req.DepartmentId))
	respondWithJSON(w, http.StatusCreated, wz.State())
}

// HandleGetForm returns a step's form. With ?session= the escalation contacts come from
// that session's roster.
func (s *Server) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	step, err := wizard.ParseStep(mux.Vars(r)["step"])
	if err != nil {
		respondWithServiceError(w, "unknown wizard step", service.InvalidRequestError{Details: []string{err.Error()}})
		return
	}
	var roster []model.Staff
	if id := r.URL.Query().Get("session"); id != "" {
		if wz, ok := s.sessions.GetSession(id); ok {
			roster = wz.State().Draft.Staff
		}
	}
	form, err := wizard.Form(step, roster)
	if err != nil {
		respondWithServiceError(w, "error building form", service.InvalidRequestError{Details: []string{err.Error()}})
		return
	}
	respondWithJSON(w, http.StatusOK, form)
}

func (s *Server) HandleGetWizard(w http.ResponseWriter, r *http.Request) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, wz.State())
}

func (s *Server) HandleDiscardWizard(w http.ResponseWriter, r *http.Request) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sessions.DeleteSession(wz.Id())
	respondOK(w, map[string]any{"discarded": true})
}

// HandleWizardUpdate replaces the section owned by {step}. The session must be on that step.
func (s *Server) HandleWizardUpdate(w http.ResponseWriter, r *http.Request) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	step, err := wizard.ParseStep(mux.Vars(r)["step"])
	if err != nil {
		respondWithServiceError(w, "unknown wizard step", service.InvalidRequestError{Details: []string{err.Error()}})
		return
	}
	switch step {
	case wizard.STEP_DEPARTMENT:
		var d model.DepartmentDraft
		if err = decode(r, &d); err == nil {
			err = wz.SetDepartment(d)
		}
	case wizard.STEP_STAFF:
		var staff []model.Staff
		if err = decode(r, &staff); err == nil {
			err = wz.SetStaff(staff)
		}
	case wizard.STEP_WORKFLOW:
		var d model.WorkflowDraft
		if err = decode(r, &d); err == nil {
			err = wz.SetWorkflow(d)
		}
	case wizard.STEP_ESCALATION:
		var e wizard.EscalationSettings
		if err = decode(r, &e); err == nil {
			err = wz.SetEscalation(e)
		}
	case wizard.STEP_SCHEDULE:
		var u scheduleUpdate
		if err = decode(r, &u); err == nil {
			err = s.setSchedule(wz, u)
		}
	default:
		err = service.InvalidRequestError{Details: []string{step.String() + " has no editable section"}}
	}
	if err != nil {
		respondWithServiceError(w, "error updating wizard", err, zap.String("session", wz.Id()), zap.Stringer("step", step))
		return
	}
	respondWithJSON(w, http.StatusOK, wz.State())
}

func (s *Server) setSchedule(wz *wizard.Wizard, u scheduleUpdate) error {
	if u.Cron != "" {
		return wz.SetSchedule(model.ScheduleDraft{Cron: u.Cron, TimeZone: u.TimeZone, Enabled: u.Enabled})
	}
	draft, err := u.ScheduleValues.ToDraft()
	if err != nil {
		return err
	}
	return wz.SetSchedule(draft)
}

func (s *Server) HandleWizardNext(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, func(wz *wizard.Wizard) (wizard.Step, error) { return wz.Next() })
}

func (s *Server) HandleWizardBack(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, func(wz *wizard.Wizard) (wizard.Step, error) { return wz.Back() })
}

func (s *Server) HandleWizardEdit(w http.ResponseWriter, r *http.Request) {
	step, err := wizard.ParseStep(mux.Vars(r)["step"])
	if err != nil {
		respondWithServiceError(w, "unknown wizard step", service.InvalidRequestError{Details: []string{err.Error()}})
		return
	}
	s.move(w, r, func(wz *wizard.Wizard) (wizard.Step, error) { return wz.Edit(step) })
}

func (s *Server) move(w http.ResponseWriter, r *http.Request, fn func(*wizard.Wizard) (wizard.Step, error)) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := fn(wz); err != nil {
		respondWithServiceError(w, "wizard step change rejected", err, zap.String("session", wz.Id()))
		return
	}
	respondWithJSON(w, http.StatusOK, wz.State())
}

func (s *Server) HandleWizardTemplate(w http.ResponseWriter, r *http.Request) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	baseType := model.WorkflowType(mux.Vars(r)["baseType"])
	if err := wz.ApplyTemplate(baseType); err != nil {
		respondWithServiceError(w, "error applying template", err, zap.String("session", wz.Id()), zap.String("baseType", string(baseType)))
		return
	}
	respondWithJSON(w, http.StatusOK, wz.State())
}

func (s *Server) HandleWizardPreview(w http.ResponseWriter, r *http.Request) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, service.NewGenerated(wz.Preview()))
}

// HandleWizardSave persists the department and closes the session.
func (s *Server) HandleWizardSave(w http.ResponseWriter, r *http.Request) {
	wz, ok := s.session(w, r)
	if !ok {
		return
	}
	final, err := wz.Save()
	if err != nil {
		respondWithServiceError(w, "wizard save rejected", err, zap.String("session", wz.Id()))
		return
	}
	res, err := s.departmentService.Save(r.Context(), final)
	if err != nil {
		respondWithServiceError(w, "error saving department", err, zap.String("session", wz.Id()))
		return
	}
	s.sessions.DeleteSession(wz.Id())
	respondWithJSON(w, http.StatusCreated, res)
}
