// Package api serves world state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (game-master control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/alignment"
	"github.com/GameMasterRPG/GalacticConsequence/internal/engine"
	"github.com/GameMasterRPG/GalacticConsequence/internal/faction"
	"github.com/GameMasterRPG/GalacticConsequence/internal/npc"
	"github.com/GameMasterRPG/GalacticConsequence/internal/quest"
	"github.com/GameMasterRPG/GalacticConsequence/internal/threat"
)

// Server serves the consequence engine over HTTP.
type Server struct {
	World    *engine.World
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	actionLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/alignment/", s.handleAlignment)
	mux.HandleFunc("/api/v1/threat/", s.handleThreat)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/faction/", s.handleFactionDetail)
	mux.HandleFunc("/api/v1/regions", s.handleRegions)
	mux.HandleFunc("/api/v1/npc/", s.handleRelationship)
	mux.HandleFunc("/api/v1/quests/", s.handleQuests)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Control-plane endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/action", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handleAction)))
	mux.HandleFunc("/api/v1/tick", s.adminOnly(s.handleTick))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "control endpoints disabled (no WORLDD_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, engine.ErrBusy):
		w.Header().Set("Retry-After", "1")
		status = http.StatusServiceUnavailable
	case errors.Is(err, quest.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, quest.ErrUnknownQuest),
		errors.Is(err, faction.ErrUnknownFaction),
		errors.Is(err, npc.ErrUnknownNPC):
		status = http.StatusNotFound
	case errors.Is(err, alignment.ErrInvalidActionType),
		errors.Is(err, threat.ErrInvalidDelta),
		errors.Is(err, faction.ErrInvalidDelta):
		status = http.StatusBadRequest
	case errors.Is(err, quest.ErrNoEligibleQuest):
		// A correct template set always has an eligible quest; this is a
		// configuration fault, not a caller mistake.
		status = http.StatusInternalServerError
	default:
		slog.Error("operation failed", "error", err)
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}

// pathPart returns segment i of the URL path, or "".
func pathPart(r *http.Request, i int) string {
	parts := strings.Split(r.URL.Path, "/")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
