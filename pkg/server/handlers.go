package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/logging"
	"github.com/projectforge/aipg/pkg/session"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.Code(err)
	writeJSON(w, httpStatus(code), errorBody{Error: err.Error(), Code: code.String()})
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidInput, errors.ValidationFailed, errors.BlueprintInvalid:
		return http.StatusBadRequest
	case errors.SessionNotFound, errors.ResourceNotFound:
		return http.StatusNotFound
	case errors.SessionNotCancellable, errors.GenerationInProgress:
		return http.StatusConflict
	case errors.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleUploadPRD(maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, errors.Wrap(err, errors.InvalidInput, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, errors.Wrap(err, errors.InvalidInput, "missing file field"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, errors.Wrap(err, errors.InvalidInput, "failed to read upload"))
			return
		}
		if len(data) == 0 {
			writeError(w, errors.New(errors.InvalidInput, "file is empty"))
			return
		}

		projectName := r.FormValue("projectName")
		logging.GetLogger().Info(r.Context(), "received PRD upload: %s", header.Filename)

		sessionID, err := s.service.UploadPRD(header.Filename, data, projectName)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"sessionId": sessionID,
			"message":   "PRD upload successful. Processing started.",
			"status":    session.StatusProcessing,
		})
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	if err := s.service.StartGeneration(sessionID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"sessionId": sessionID,
		"message":   "Project generation started",
		"status":    session.StatusGenerating,
	})
}

func (s *Server) handleGenerateDirect(w http.ResponseWriter, r *http.Request) {
	var req DirectRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, errors.Wrap(err, errors.InvalidInput, "invalid request body"))
			return
		}
	}

	sessionID, err := s.service.GenerateDirect(req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"sessionId":   sessionID,
		"message":     "Project generation started",
		"status":      session.StatusGenerating,
		"backendUrl":  "/api/projects/download/backend/" + sessionID,
		"frontendUrl": "/api/projects/download/frontend/" + sessionID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	snap, err := s.service.Status(sessionID)
	if err != nil {
		if errors.Code(err) == errors.SessionNotFound {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"sessionId": sessionID,
				"status":    session.StatusNotFound,
				"error":     "Session not found",
			})
			return
		}
		writeError(w, err)
		return
	}

	body := map[string]interface{}{
		"sessionId": snap.ID,
		"status":    snap.Status,
		"startTime": snap.StartTime.UnixMilli(),
	}
	if !snap.EndTime.IsZero() {
		body["endTime"] = snap.EndTime.UnixMilli()
		body["duration"] = snap.EndTime.Sub(snap.StartTime).Milliseconds()
	}
	if snap.Error != "" {
		body["error"] = snap.Error
	}
	if snap.Results != nil {
		successful := 0
		for _, res := range snap.Results {
			if res.Success {
				successful++
			}
		}
		body["agentResults"] = len(snap.Results)
		body["successfulAgents"] = successful
	}
	if snap.UsedFallback {
		body["usedFallback"] = true
		body["fallbackReason"] = snap.FallbackReason
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDownload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("sessionId")

		// A running session has no stable archives yet.
		if snap, err := s.service.Status(sessionID); err == nil && !snap.Status.Terminal() {
			writeError(w, errors.New(errors.GenerationInProgress, "generation still in progress"))
			return
		}

		data, err := s.service.Archive(r.Context(), sessionID, kind)
		if err != nil {
			writeError(w, err)
			return
		}

		filename := fmt.Sprintf("%s-%s.zip", sessionID, kind)
		if kind == "combined" {
			filename = sessionID + ".zip"
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (s *Server) handleBlueprint(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	data, err := s.service.BlueprintJSON(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	if err := s.service.Cancel(sessionID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"message":   "Project generation cancelled",
		"status":    session.StatusCancelled,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agents": s.service.AgentInfo(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"service":   "AI Project Generator",
		"timestamp": time.Now().UnixMilli(),
	})
}
