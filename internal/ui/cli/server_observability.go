package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthStatus struct {
	Status     string `json:"status"`
	Built      bool   `json:"built"`
	WorkingDir string `json:"working_dir,omitempty"`
	Pending    bool   `json:"pending"`
}

type indexStatus interface {
	IsBuilt() bool
	WorkingDirectory() string
	HasPendingFiles() bool
}

// ObservabilityServer serves /metrics and a /health probe reporting whether
// the index is built.
type ObservabilityServer struct {
	addr   string
	index  indexStatus
	server *http.Server
}

func NewObservabilityServer(addr string, index indexStatus) *ObservabilityServer {
	return &ObservabilityServer{
		addr:  addr,
		index: index,
	}
}

func (s *ObservabilityServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "up"}
		if s.index != nil {
			status.Built = s.index.IsBuilt()
			status.WorkingDir = s.index.WorkingDirectory()
			status.Pending = s.index.HasPendingFiles()
		}
		if !status.Built {
			status.Status = "starting"
		}
		w.Header().Set("Content-Type", "application/json")
		if !status.Built {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	return mux
}

func (s *ObservabilityServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.handler(),
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *ObservabilityServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
