package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/swaggo/http-swagger"

	"walkforward/src/datamodels"
	"walkforward/src/runs"
	"walkforward/src/utils/errors"
)

// @title Walkforward API
// @version 1.0
// @description API server for the walk-forward momentum backtester
// @host localhost:8080
// @BasePath /

// CreateRunRequest is the body of POST /runs.
// @Description Request body for creating a new backtest run
type CreateRunRequest struct {
	// Human-readable label for the run
	// Required: false
	Name string `json:"name" example:"etf-rotation-2024"`
	// Backtest parameters; omitted fields fall back to defaults
	// Required: false
	Params *datamodels.BacktestParams `json:"params"`
}

// ArtifactsResponse lists a run's artifact files.
// @Description Relative artifact paths for a run
type ArtifactsResponse struct {
	RunID string   `json:"run_id"`
	Files []string `json:"files"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterHealthCheck registers the health check endpoint
// @Summary Health check endpoint
// @Description Returns health status of the walkforward service
// @Tags health
// @Produce plain
// @Success 200 {string} string "Walkforward is healthy"
// @Router /health [get]
func (s *Server) RegisterHealthCheck() {
	s.httpMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Walkforward is healthy"))
	})
}

// RegisterRunHandlers registers the run lifecycle endpoints.
func (s *Server) RegisterRunHandlers() {
	s.httpMux.HandleFunc("POST /runs", s.handleCreateRun)
	s.httpMux.HandleFunc("GET /runs", s.handleListRuns)
	s.httpMux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	s.httpMux.HandleFunc("POST /runs/{id}/start", s.handleStartRun)
	s.httpMux.HandleFunc("GET /runs/{id}/artifacts", s.handleListArtifacts)
	s.httpMux.Handle("GET /runs-static/", http.StripPrefix("/runs-static/",
		http.FileServer(http.Dir(s.store.BaseDir()))))
}

// RegisterWebSocketHandler registers the WebSocket endpoint
// @Summary WebSocket connection endpoint
// @Description Streams run status transition events to connected clients
// @Tags websocket
// @Accept json
// @Produce json
// @Success 101 {string} string "Switching protocols to websocket"
// @Router /ws [get]
func (s *Server) RegisterWebSocketHandler() {
	s.httpMux.HandleFunc("/ws", s.handleWebSocket)
}

// RegisterSwagger registers the Swagger documentation endpoint
// @Summary Swagger documentation endpoint
// @Description Serves Swagger API documentation UI and JSON spec
// @Tags docs
// @Accept json
// @Produce json,html
// @Success 200 {string} string "Swagger documentation UI"
// @Router /swagger [get]
func (s *Server) RegisterSwagger() {
	s.httpMux.HandleFunc("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// handleCreateRun creates a new queued run
// @Summary Create a backtest run
// @Description Creates a run in the queued state; start it with POST /runs/{id}/start
// @Tags runs
// @Accept json
// @Produce json
// @Param request body CreateRunRequest true "Run name and parameters"
// @Success 201 {object} datamodels.RunManifest
// @Failure 400 {object} errorResponse
// @Router /runs [post]
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Params != nil {
		resolved := req.Params.WithDefaults()
		if err := resolved.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.Params = &resolved
	}

	manifest, err := s.store.Create(r.Context(), req.Name, req.Params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, manifest)
}

// handleListRuns lists all runs
// @Summary List runs
// @Description Returns every run manifest, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} datamodels.RunManifest
// @Router /runs [get]
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	manifests, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, manifests)
}

// handleGetRun fetches one run manifest
// @Summary Get a run
// @Description Returns the manifest for one run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} datamodels.RunManifest
// @Failure 404 {object} errorResponse
// @Router /runs/{id} [get]
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, runs.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// handleStartRun launches a queued run
// @Summary Start a run
// @Description Starts executing the run in the background; progress streams over /ws
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 202 {object} datamodels.RunManifest
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /runs/{id}/start [post]
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	manifest, err := s.store.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, runs.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if manifest.Status == datamodels.RunStatusRunning {
		writeError(w, http.StatusConflict, errors.Newf("run %s is already running", runID))
		return
	}

	// Start claims the run atomically, so two racing requests cannot both
	// launch it.
	if err := s.runner.Start(runID); err != nil {
		if errors.Is(err, runs.ErrRunActive) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusAccepted, manifest)
}

// handleListArtifacts lists a run's artifact files
// @Summary List run artifacts
// @Description Returns relative artifact paths; fetch files under /runs-static/{id}/
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} ArtifactsResponse
// @Failure 404 {object} errorResponse
// @Router /runs/{id}/artifacts [get]
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	files, err := s.store.Artifacts(r.Context(), runID)
	if err != nil {
		if errors.Is(err, runs.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ArtifactsResponse{RunID: runID, Files: files})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
