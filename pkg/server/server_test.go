package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/core"
	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/prd"
	"github.com/projectforge/aipg/pkg/session"
	"github.com/projectforge/aipg/pkg/utils"
)

// scriptedLLM answers the analyst with a blueprint and every other agent
// with a structured file map.
type scriptedLLM struct{}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, _ ...core.GenerateOption) (*core.LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bytes.Contains([]byte(prompt), []byte("PRD Content:")) {
		return &core.LLMResponse{Content: `{
			"project_info": {"name": "Analyzed App", "version": "1.0.0", "package_name": "com.generated.analyzedapp"},
			"technology_stack": {
				"backend": {"framework": "Spring Boot", "version": "3.2.0"},
				"frontend": {"framework": "Angular", "version": "17.0"},
				"database": {"type": "PostgreSQL", "version": "15.0"},
				"build_tool": "Maven"
			},
			"features": [{"name": "Core", "priority": "HIGH"}]
		}`}, nil
	}
	return &core.LLMResponse{Content: `{"files": {"generated.txt": "content"}}`}, nil
}

func (s *scriptedLLM) GenerateWithJSON(ctx context.Context, prompt string, opts ...core.GenerateOption) (map[string]interface{}, error) {
	resp, err := s.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	return utils.ParseJSONResponse(resp.Content)
}

func (s *scriptedLLM) ProviderName() string            { return "scripted" }
func (s *scriptedLLM) ModelID() string                 { return "scripted-test" }
func (s *scriptedLLM) Capabilities() []core.Capability { return nil }

func newTestServer(t *testing.T) (*Server, *Service) {
	t.Helper()

	store := session.NewStore(time.Hour, time.Hour)
	t.Cleanup(store.Close)
	artifacts := session.NewMemoryArtifactStore()

	llm := &scriptedLLM{}
	svc := NewService(
		store,
		artifacts,
		prd.NewProcessor(agents.NewAnalystAgent(llm), 0),
		agents.NewOrchestrator(agents.DefaultAgents(llm)),
	)
	t.Cleanup(svc.Close)

	return New(svc, Config{Port: 8080}), svc
}

func doRequest(t *testing.T, srv *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartPRD(t *testing.T, filename, content, projectName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if projectName != "" {
		require.NoError(t, mw.WriteField("projectName", projectName))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func waitForStatus(t *testing.T, svc *Service, sessionID string, want session.Status) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := svc.Status(sessionID)
		require.NoError(t, err)
		if snap.Status == want {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	snap, _ := svc.Status(sessionID)
	t.Fatalf("session %s never reached %s, last status %s", sessionID, want, snap.Status)
	return session.Snapshot{}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "UP", body["status"])
	assert.Equal(t, "AI Project Generator", body["service"])
}

func TestAgentsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/agents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Agents []agents.Info `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Agents, 8)
	assert.Equal(t, "PRD-Analyst", body.Agents[0].Name)
}

func TestUploadPRDFlow(t *testing.T) {
	srv, svc := newTestServer(t)

	buf, contentType := multipartPRD(t, "prd.txt", "Project Name: Analyzed App\nA search feature", "Draft")
	rec := doRequest(t, srv, http.MethodPost, "/api/projects/upload-prd", buf, contentType)
	require.Equal(t, http.StatusAccepted, rec.Code)

	body := decodeBody(t, rec)
	sessionID := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "PROCESSING", body["status"])

	// Processing finishes in the background and attaches a blueprint.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := svc.BlueprintJSON(context.Background(), sessionID); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/projects/blueprint/"+sessionID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	blueprintBody := decodeBody(t, rec)
	info := blueprintBody["project_info"].(map[string]interface{})
	assert.Equal(t, "Analyzed App", info["name"])

	// Generation from the processed blueprint.
	rec = doRequest(t, srv, http.MethodPost, "/api/projects/generate/"+sessionID, nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	waitForStatus(t, svc, sessionID, session.StatusCompleted)

	rec = doRequest(t, srv, http.MethodGet, "/api/projects/status/"+sessionID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	statusBody := decodeBody(t, rec)
	assert.Equal(t, "COMPLETED", statusBody["status"])
	assert.EqualValues(t, 8, statusBody["agentResults"])
	assert.EqualValues(t, 8, statusBody["successfulAgents"])

	// All three downloads serve ZIP bytes.
	for _, path := range []string{
		"/api/projects/download/backend/" + sessionID,
		"/api/projects/download/frontend/" + sessionID,
		"/api/projects/download/" + sessionID,
	} {
		rec = doRequest(t, srv, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
		assert.NotZero(t, rec.Body.Len())
		assert.Equal(t, "PK", rec.Body.String()[:2], "response is a ZIP archive")
	}
}

func TestUploadPRDRejectsEmptyFile(t *testing.T) {
	srv, _ := newTestServer(t)

	buf, contentType := multipartPRD(t, "prd.txt", "", "")
	rec := doRequest(t, srv, http.MethodPost, "/api/projects/upload-prd", buf, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestUploadPRDRejectsMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("projectName", "X"))
	require.NoError(t, mw.Close())

	rec := doRequest(t, srv, http.MethodPost, "/api/projects/upload-prd", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateDirect(t *testing.T) {
	srv, svc := newTestServer(t)

	payload := bytes.NewBufferString(`{"projectName": "Direct App", "projectType": "microservice"}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/projects/generate", payload, "application/json")
	require.Equal(t, http.StatusAccepted, rec.Code)

	body := decodeBody(t, rec)
	sessionID := body["sessionId"].(string)
	assert.Equal(t, "GENERATING", body["status"])
	assert.Equal(t, "/api/projects/download/backend/"+sessionID, body["backendUrl"])

	waitForStatus(t, svc, sessionID, session.StatusCompleted)
}

func TestGenerateUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/projects/generate/not-a-session", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, errors.SessionNotFound.String(), body["code"])
}

func TestGenerateWhileRunningConflicts(t *testing.T) {
	srv, svc := newTestServer(t)

	sess := svc.store.Create("Running", session.StatusGenerating)

	rec := doRequest(t, srv, http.MethodPost, "/api/projects/generate/"+sess.ID, nil, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "GENERATION_IN_PROGRESS", body["code"])
}

func TestStatusUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/status/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "NOT_FOUND", body["status"])
}

func TestDownloadUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/download/backend/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadWhileRunningConflicts(t *testing.T) {
	srv, svc := newTestServer(t)

	// A session parked in PROCESSING has nothing downloadable yet.
	sess := svc.store.Create("Pending", session.StatusProcessing)

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/download/backend/"+sess.ID, nil, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "GENERATION_IN_PROGRESS", body["code"])
}

func TestCancelEndpoint(t *testing.T) {
	srv, svc := newTestServer(t)

	sess := svc.store.Create("Running", session.StatusGenerating)

	rec := doRequest(t, srv, http.MethodPost, "/api/projects/cancel/"+sess.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "CANCELLED", body["status"])

	// Cancelling twice conflicts.
	rec = doRequest(t, srv, http.MethodPost, "/api/projects/cancel/"+sess.ID, nil, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	// Unknown session is a 404, not a conflict.
	rec = doRequest(t, srv, http.MethodPost, "/api/projects/cancel/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlueprintUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/projects/blueprint/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
