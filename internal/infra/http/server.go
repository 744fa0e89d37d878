package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const LivenessBody = "🎨 Paint Stock Bot is running!"

type Server struct {
	srv *http.Server
}

// New создает listener для проверок хостинга. Любой GET отвечает 200 со статичным телом.
// При exposeMetrics дополнительно отдаёт /metrics.
func New(addr string, exposeMetrics bool) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Handler(exposeMetrics),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func Handler(exposeMetrics bool) http.Handler {
	mux := http.NewServeMux()

	if exposeMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	mux.HandleFunc("GET /", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(LivenessBody))
	})

	return mux
}

// Start блокирует до Shutdown; штатная остановка не считается ошибкой.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
