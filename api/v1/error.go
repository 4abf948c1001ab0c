package api_v1

import (
	"errors"
	"net/http"

	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/service"
	"github.com/mohitkumar/checkin/table"
	"github.com/mohitkumar/checkin/wizard"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Status maps an error from the service layer to a status code and response body.
// Storage failures never leak their message to the caller.
func Status(err error) (int, ErrorResponse) {
	var (
		validation wizard.ValidationError
		invalid    service.InvalidRequestError
		notFound   persistence.NotFoundError
		wrongStep  wizard.WrongStepError
		storage    persistence.StorageLayerError
		query      table.QueryError
		webhook    service.WebhookError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{Message: err.Error(), Details: validation.Details()}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, ErrorResponse{Message: "invalid request", Details: invalid.Details}
	case errors.As(err, &query):
		return http.StatusBadRequest, ErrorResponse{Message: err.Error()}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorResponse{Message: err.Error()}
	case errors.As(err, &wrongStep), errors.Is(err, wizard.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{Message: err.Error()}
	case errors.Is(err, service.ErrWebhookNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{Message: err.Error()}
	case errors.As(err, &webhook):
		return http.StatusBadGateway, ErrorResponse{Message: err.Error()}
	case errors.As(err, &storage):
		return http.StatusInternalServerError, ErrorResponse{Message: "storage error"}
	}
	return http.StatusInternalServerError, ErrorResponse{Message: "internal error"}
}
