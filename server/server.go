// Package server exposes the bat scene to remote renderers over websockets.
// Each connection gets its own room: a match with private settings, driven
// by a server-side tick. Clients send taps and receive snapshots.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
)

// Options configures a Server.
type Options struct {
	AllowedOrigins []string // empty or "*" allows any origin
	Seed           int64    // 0 = seed rooms from the wall clock
}

// Server tracks open rooms and serves the HTTP API.
type Server struct {
	cfg      *config.Config
	origins  []string
	upgrader websocket.Upgrader

	mu       sync.Mutex
	rooms    map[string]*Room
	nextSeed int64
	wg       sync.WaitGroup
}

// New creates a server for cfg.
func New(cfg *config.Config, opts Options) *Server {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Server{
		cfg:      cfg,
		origins:  opts.AllowedOrigins,
		rooms:    make(map[string]*Room),
		nextSeed: seed,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/v1", func(sub chi.Router) {
		sub.Get("/health", s.handleHealth)
		sub.Get("/difficulties", s.handleDifficulties)
	})
	r.HandleFunc("/ws", s.HandleConnections)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.Rooms(),
	})
}

func (s *Server) handleDifficulties(w http.ResponseWriter, _ *http.Request) {
	levels := make([]DifficultyInfo, 0, policy.DifficultyCount)
	for _, d := range policy.AllDifficulties() {
		levels = append(levels, difficultyInfo(s.cfg.Derived.Policy.SettingsFor(d)))
	}
	writeJSON(w, http.StatusOK, levels)
}

// HandleConnections upgrades the request and starts a room for it.
func (s *Server) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	seed := s.nextSeed
	s.nextSeed++
	room := NewRoom(s.cfg, seed)
	s.rooms[room.ID()] = room
	s.wg.Add(1)
	s.mu.Unlock()

	room.log.Info("room_opened", "remote", r.RemoteAddr, "seed", seed)
	room.welcome(s.cfg)

	go func() {
		defer s.wg.Done()
		room.run()
		s.mu.Lock()
		delete(s.rooms, room.ID())
		s.mu.Unlock()
	}()
	go room.writePump(conn)
	go room.readPump(conn)
}

// Rooms returns the number of open rooms.
func (s *Server) Rooms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Shutdown closes every room and waits for them to stop or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, room := range s.rooms {
		room.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) corsOrigins() []string {
	if len(s.origins) == 0 {
		return []string{"*"}
	}
	return s.origins
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.corsOrigins() {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
