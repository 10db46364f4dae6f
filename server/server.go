// Package server exposes the responder over HTTP: POST /chat for the widget
// and the terminal client, GET / for the embedded browser widget.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/worraphat/jarvis/agent/contract"
)

//go:embed web/index.html
var indexHTML []byte

const maxRequestBytes = 1 << 20

type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

type Server struct {
	responder contract.Responder
	http      *http.Server
	shutdown  time.Duration
	log       zerolog.Logger
}

func New(responder contract.Responder, cfg Config) (*Server, error) {
	if responder == nil {
		return nil, errors.New("responder is required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = ":8000"
	}

	s := &Server{
		responder: responder,
		shutdown:  cfg.ShutdownTimeout,
		log:       log.With().Str("component", "server").Logger(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is canceled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	reqLog := s.log.With().Str("request_id", uuid.NewString()).Logger()

	var req contract.ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		reqLog.Warn().Err(err).Msg("bad chat request body")
		writeJSON(w, http.StatusBadRequest, contract.Reply{Text: "Error: invalid request body."})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusOK, contract.Reply{Text: "Please type a message."})
		return
	}

	reply, err := s.responder.Respond(r.Context(), text, req.History)
	if err != nil {
		reqLog.Error().Err(err).Msg("responder failed")
		writeJSON(w, http.StatusInternalServerError, contract.Reply{Text: fmt.Sprintf("Error: %v", err)})
		return
	}

	reqLog.Info().
		Int("history_turns", len(req.History)).
		Int("suggestions", len(reply.Suggestions)).
		Dur("elapsed", time.Since(started)).
		Msg("chat exchange served")
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
