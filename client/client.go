package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	api_v1 "github.com/mohitkumar/checkin/api/v1"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/service"
)

// APIError is a non 2xx response from the server.
type APIError struct {
	StatusCode int
	api_v1.ErrorResponse
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("server returned %d: %s %v", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	httpClient *resty.Client
}

func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		SetError(&api_v1.ErrorResponse{})
	return &Client{httpClient: c}
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if e, ok := resp.Error().(*api_v1.ErrorResponse); ok && e != nil {
			apiErr.ErrorResponse = *e
		}
		if apiErr.Message == "" {
			apiErr.Message = resp.Status()
		}
		return apiErr
	}
	return nil
}

type ingestResponse struct {
	Success  bool   `json:"success"`
	ReportId string `json:"reportId"`
}

// PushReport sends a call executor payload and returns the stored report id.
func (c *Client) PushReport(ctx context.Context, req model.IngestRequest) (string, error) {
	var res ingestResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&res).
		Post("/reports")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return res.ReportId, nil
}

// UploadPDF attaches a PDF document to a report.
func (c *Client) UploadPDF(ctx context.Context, reportId string, pdf []byte) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", service.PDF_CONTENT_TYPE).
		SetQueryParam("id", reportId).
		SetBody(pdf).
		Post("/reports/pdf")
	return check(resp, err)
}

func (c *Client) CreateDepartment(ctx context.Context, req model.DepartmentRequest) (*service.Generated, error) {
	var res service.Generated
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&res).
		Post("/departments")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetReport(ctx context.Context, id string) (*model.ReportDetail, error) {
	var res model.ReportDetail
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&res).
		Get("/reports/{id}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &res, nil
}

// PollDispatch takes up to batchSize pending workflow dispatches.
func (c *Client) PollDispatch(ctx context.Context, batchSize int) ([]model.DispatchRequest, error) {
	var res []model.DispatchRequest
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("batchSize", fmt.Sprint(batchSize)).
		SetResult(&res).
		Post("/dispatch/poll")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return res, nil
}
