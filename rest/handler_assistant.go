package rest

import (
	"net/http"

	"github.com/mohitkumar/checkin/model"
	"go.uber.org/zap"
)

func (s *Server) HandleGetAssistantForm(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.assistantService.Form())
}

// HandleSubmitAssistantConfig validates the configuration and forwards it to the
// assistant webhook.
func (s *Server) HandleSubmitAssistantConfig(w http.ResponseWriter, r *http.Request) {
	var conf model.AssistantConfig
	if err := decode(r, &conf); err != nil {
		respondWithServiceError(w, "invalid assistant configuration", err)
		return
	}
	if err := s.assistantService.Submit(r.Context(), conf); err != nil {
		respondWithServiceError(w, "error submitting assistant configuration", err, zap.String("company", conf.CompanyName))
		return
	}
	respondOK(w, map[string]any{"success": true})
}
