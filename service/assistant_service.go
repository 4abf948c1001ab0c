package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/wizard"
	"go.uber.org/zap"
)

var ErrWebhookNotConfigured = errors.New("assistant webhook is not configured")

// WebhookError is a rejected or failed delivery to the assistant webhook.
type WebhookError struct {
	Cause error
}

func (e WebhookError) Error() string {
	return fmt.Sprintf("assistant webhook failed: %v", e.Cause)
}

func (e WebhookError) Unwrap() error {
	return e.Cause
}

type AssistantWebhook interface {
	Submit(ctx context.Context, submission model.AssistantSubmission) error
}

type AssistantService struct {
	webhook AssistantWebhook
}

// NewAssistantService accepts a nil webhook; submissions then fail with
// ErrWebhookNotConfigured after validation.
func NewAssistantService(webhook AssistantWebhook) *AssistantService {
	return &AssistantService{webhook: webhook}
}

func (s *AssistantService) Form() []wizard.FormSection {
	return wizard.AssistantForm
}

func (s *AssistantService) Submit(ctx context.Context, conf model.AssistantConfig) error {
	if errs := wizard.ValidateAssistant(conf); len(errs) > 0 {
		details := make([]string, 0, len(errs))
		for _, fe := range errs {
			details = append(details, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return InvalidRequestError{Details: details}
	}
	if s.webhook == nil {
		return ErrWebhookNotConfigured
	}
	err := s.webhook.Submit(ctx, model.AssistantSubmission{Source: model.ASSISTANT_CONFIG_SOURCE, Payload: conf})
	if err != nil {
		logger.Error("assistant configuration rejected", zap.String("company", conf.CompanyName), zap.Error(err))
		return WebhookError{Cause: err}
	}
	logger.Info("assistant configuration submitted", zap.String("company", conf.CompanyName))
	return nil
}
