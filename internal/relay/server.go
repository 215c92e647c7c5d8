package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"

	"sealchat/internal/metrics"
	"sealchat/internal/transport"
)

const (
	writeWait         = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config contains the relay server parameters.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Rate and Burst bound events per second per identity.
	Rate  float64
	Burst int

	Log *slog.Logger

	// Registry receives the relay collectors and backs /metrics. Nil
	// creates a private registry.
	Registry *prometheus.Registry
}

// Server serves the relay over HTTP.
type Server struct {
	cfg      Config
	log      *slog.Logger
	hub      *Hub
	upgrader websocket.Upgrader
	registry *prometheus.Registry
	isReady  atomic.Bool
}

// NewServer builds a relay server and its hub.
func NewServer(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	log := cfg.Log.With("component", "relay")
	return &Server{
		cfg: cfg,
		log: log,
		hub: NewHub(HubOptions{
			Rate:    cfg.Rate,
			Burst:   cfg.Burst,
			Logger:  log,
			Metrics: metrics.NewRelay(cfg.Registry),
		}),
		upgrader: websocket.Upgrader{
			// Clients are native programs, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		registry: cfg.Registry,
	}
}

// Hub exposes the routing state, mainly for tests.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the relay's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.serveWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.isReady.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe runs the relay until ctx is cancelled, then drains
// connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("relay listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()
	s.SetReady(true)

	select {
	case err := <-errc:
		s.SetReady(false)
		return err
	case <-ctx.Done():
	}

	s.SetReady(false)
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("relay stopped")
	return nil
}

// SetReady flips the /readyz answer.
func (s *Server) SetReady(ready bool) { s.isReady.Store(ready) }

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "err", err)
		return
	}
	ws.SetReadLimit(transport.MaxFrameBytes)

	sess := s.hub.attach()
	s.log.Debug("connection opened", "conn", sess.id, "remote", r.RemoteAddr)
	go s.writePump(ws, sess)

	defer func() {
		s.hub.detach(sess)
		_ = ws.Close()
		s.log.Debug("connection closed", "conn", sess.id)
	}()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		s.hub.handle(sess, data)
	}
}

func (s *Server) writePump(ws *websocket.Conn, sess *session) {
	for {
		select {
		case data := <-sess.out:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				sess.close()
				_ = ws.Close()
				return
			}
		case <-sess.closed:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = ws.Close()
			return
		}
	}
}
