package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohitkumar/checkin/model"
	"github.com/stretchr/testify/require"
)

func TestPushReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports", r.URL.Path)
		var req model.IngestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req.Report.Manager == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid request","details":["report.manager is required"]}`))
			return
		}
		w.Write([]byte(`{"success":true,"reportId":"report_1"}`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	id, err := c.PushReport(context.Background(), model.IngestRequest{Report: model.IngestReport{Manager: "Thandi"}})
	require.NoError(t, err)
	require.Equal(t, "report_1", id)

	_, err = c.PushReport(context.Background(), model.IngestRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "invalid request", apiErr.Message)
	require.Equal(t, []string{"report.manager is required"}, apiErr.Details)
}

func TestUploadPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "report_1", r.URL.Query().Get("id"))
		require.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "%PDF-1.4", string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).UploadPDF(context.Background(), "report_1", []byte("%PDF-1.4")))
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"report report_x not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetReport(context.Background(), "report_x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestWebhookSubmit(t *testing.T) {
	var got model.AssistantSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Payload.CompanyName == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte("company missing"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	hook := NewWebhook(srv.URL + "/hook")

	err := hook.Submit(context.Background(), model.AssistantSubmission{Source: model.ASSISTANT_CONFIG_SOURCE, Payload: model.AssistantConfig{CompanyName: "Acme"}})
	require.NoError(t, err)
	require.Equal(t, model.ASSISTANT_CONFIG_SOURCE, got.Source)
	require.Equal(t, "Acme", got.Payload.CompanyName)

	err = hook.Submit(context.Background(), model.AssistantSubmission{Source: model.ASSISTANT_CONFIG_SOURCE})
	require.EqualError(t, err, "company missing")
}
