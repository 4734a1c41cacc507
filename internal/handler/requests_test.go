package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kycivic/parcelpost/internal/domain"
	"github.com/kycivic/parcelpost/internal/service"
)

// testRequestService implements service.RequestService with a function field.
type testRequestService struct {
	sendRequestsFn func(ctx context.Context, params service.SendRequestsParams) (*service.SendRequestsResult, error)
}

func (s *testRequestService) SendRequests(ctx context.Context, params service.SendRequestsParams) (*service.SendRequestsResult, error) {
	return s.sendRequestsFn(ctx, params)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequestsServer(svc service.RequestService) *httptest.Server {
	mux := http.NewServeMux()
	NewRequestsHandler(svc, discardLogger()).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSendRequests_Success(t *testing.T) {
	var captured service.SendRequestsParams
	svc := &testRequestService{
		sendRequestsFn: func(_ context.Context, params service.SendRequestsParams) (*service.SendRequestsResult, error) {
			captured = params
			return &service.SendRequestsResult{
				Success: true,
				City:    "Springfield",
				EmailsUsed: service.EmailsUsed{
					PVA:    domain.NewRecipient("pva@springfield.gov"),
					Zoning: domain.NewRecipient("zoning@springfield.gov"),
				},
				Results: map[string]*service.RecipientResult{
					"pva":    {StatusCode: 250, Body: "OK"},
					"zoning": {StatusCode: 250, Body: "OK"},
				},
			}, nil
		},
	}
	server := newRequestsServer(svc)
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/send-requests",
		`{"address": "123 Main St, Springfield, KY", "property_id": "ABC-123"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Springfield", body["city"])
	assert.Equal(t, "123 Main St, Springfield, KY", body["address"])

	emails := body["emails_used"].(map[string]any)
	assert.Equal(t, "pva@springfield.gov", emails["pva"])
	assert.Equal(t, "zoning@springfield.gov", emails["zoning"])

	// Send flags default to true and the extra field rides in the payload.
	assert.True(t, captured.SendToPVA)
	assert.True(t, captured.SendToZoning)
	assert.Equal(t, "ABC-123", captured.Payload["property_id"])
}

func TestSendRequests_FlagsForwarded(t *testing.T) {
	var captured service.SendRequestsParams
	svc := &testRequestService{
		sendRequestsFn: func(_ context.Context, params service.SendRequestsParams) (*service.SendRequestsResult, error) {
			captured = params
			return &service.SendRequestsResult{
				Success: true,
				Results: map[string]*service.RecipientResult{"pva": {StatusCode: 250}},
			}, nil
		},
	}
	server := newRequestsServer(svc)
	defer server.Close()

	resp, _ := postJSON(t, server.URL+"/api/send-requests",
		`{"address": "123 Main St", "city": "Metropolis", "send_to_zoning": false}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Metropolis", captured.City)
	assert.True(t, captured.SendToPVA)
	assert.False(t, captured.SendToZoning)
}

func TestSendRequests_InvalidJSON(t *testing.T) {
	svc := &testRequestService{
		sendRequestsFn: func(_ context.Context, _ service.SendRequestsParams) (*service.SendRequestsResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	server := newRequestsServer(svc)
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/send-requests", `{not json`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid JSON", body["error"])
}

func TestSendRequests_MissingAddress(t *testing.T) {
	svc := &testRequestService{
		sendRequestsFn: func(_ context.Context, _ service.SendRequestsParams) (*service.SendRequestsResult, error) {
			return nil, domain.Invalid("RequestService.SendRequests", "Missing required field: address")
		},
	}
	server := newRequestsServer(svc)
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/send-requests", `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required field: address", body["error"])
}

func TestSendRequests_PartialFailureIs500(t *testing.T) {
	svc := &testRequestService{
		sendRequestsFn: func(_ context.Context, _ service.SendRequestsParams) (*service.SendRequestsResult, error) {
			return &service.SendRequestsResult{
				Success: false,
				City:    "Faketown",
				EmailsUsed: service.EmailsUsed{
					PVA: domain.NewRecipient("pva@example.com"),
				},
				Results: map[string]*service.RecipientResult{
					"pva":    {StatusCode: 250, Body: "OK"},
					"zoning": {Error: "No Zoning recipient configured"},
				},
			}, nil
		},
	}
	server := newRequestsServer(svc)
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/send-requests", `{"address": "1 Nowhere Ln, Faketown, KY"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	emails := body["emails_used"].(map[string]any)
	assert.Nil(t, emails["zoning"])

	results := body["results"].(map[string]any)
	zoning := results["zoning"].(map[string]any)
	assert.Equal(t, "No Zoning recipient configured", zoning["error"])
}

func TestSendRequests_InternalError(t *testing.T) {
	svc := &testRequestService{
		sendRequestsFn: func(_ context.Context, _ service.SendRequestsParams) (*service.SendRequestsResult, error) {
			return nil, domain.Errorf(domain.ETEMPLATE, "TemplateRenderer.Render", "failed to render template pva_request.txt")
		},
	}
	server := newRequestsServer(svc)
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/send-requests", `{"address": "123 Main St"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "failed to render template pva_request.txt", body["error"])
}
