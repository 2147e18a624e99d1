package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"walkforward/src/runs"
	"walkforward/src/utils/errors"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	httpMux  *http.ServeMux
	store    *runs.FileRunStore
	runner   *runs.Runner
	hub      *StatusHub
}

func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all connections (for development purposes)
			},
		},
		httpMux: http.NewServeMux(),
		hub:     NewStatusHub(),
	}
}

func (s *Server) WithRunStore(store *runs.FileRunStore) *Server {
	s.store = store
	return s
}

func (s *Server) WithRunner(runner *runs.Runner) *Server {
	s.runner = runner
	return s
}

// Hub exposes the status hub so the runner can be wired to broadcast
// status transitions to websocket clients.
func (s *Server) Hub() *StatusHub {
	return s.hub
}

func (s *Server) Start(ctx context.Context) error {
	if s.store == nil {
		return errors.New("run store is nil")
	}
	if s.runner == nil {
		return errors.New("runner is nil")
	}
	s.RegisterHealthCheck()
	s.RegisterRunHandlers()
	s.RegisterWebSocketHandler()
	s.RegisterSwagger()
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.httpMux,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server")
		if err := s.hub.Close(); err != nil {
			slog.Error("Failed to close status hub", "error", err)
		}
		if err := server.Close(); err != nil {
			slog.Error("Failed to close server", "error", err)
		}
	}()

	slog.Info(fmt.Sprintf("Starting server on %s", s.addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	s.hub.AddClient(conn)
	defer s.hub.RemoveClient(conn)

	slog.Info("Client connected")

	// Drain the connection until the client hangs up. Run status events
	// flow the other way, through the hub.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
