package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mohitkumar/checkin/model"
)

// Webhook posts assistant configurations to an external automation endpoint.
type Webhook struct {
	url        string
	httpClient *resty.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		httpClient: resty.New().
			SetTimeout(15*time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

// Submit returns the response text as the error when the endpoint rejects the payload.
func (w *Webhook) Submit(ctx context.Context, submission model.AssistantSubmission) error {
	resp, err := w.httpClient.R().
		SetContext(ctx).
		SetBody(submission).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		if text := strings.TrimSpace(resp.String()); text != "" {
			return errors.New(text)
		}
		return fmt.Errorf("request failed with %d", resp.StatusCode())
	}
	return nil
}
