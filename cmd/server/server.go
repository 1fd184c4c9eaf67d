// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codr1/Clubhouse/internal/api"
	complianceapi "github.com/codr1/Clubhouse/internal/api/compliance"
	matchesapi "github.com/codr1/Clubhouse/internal/api/matches"
	"github.com/codr1/Clubhouse/internal/api/members"
	tournamentsapi "github.com/codr1/Clubhouse/internal/api/tournaments"
	"github.com/codr1/Clubhouse/internal/config"
)

func newServer(cfg *config.Config, deps *dependencies) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithClubContext,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithClientIP(cfg.App.TrustProxy),
		api.WithContentType,
	)

	members.InitHandlers(deps.data)
	complianceapi.InitHandlers(deps.compliance)
	tournamentsapi.InitHandlers(deps.tournaments)
	matchesapi.InitHandlers(deps.matches)

	registerRoutes(router, cfg)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Features.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Member registry
	mux.HandleFunc("GET /api/v1/members", members.HandleMembersList)
	mux.HandleFunc("POST /api/v1/members", members.HandleMemberCreate)
	mux.HandleFunc("PUT /api/v1/members/{id}", members.HandleMemberUpdate)
	mux.HandleFunc("DELETE /api/v1/members/{id}", members.HandleMemberDelete)

	// Compliance
	mux.HandleFunc("GET /api/v1/compliance", complianceapi.HandleComplianceReport)
	mux.HandleFunc("GET /api/v1/compliance/export", complianceapi.HandleComplianceDownload)
	mux.HandleFunc("POST /api/v1/compliance/export", complianceapi.HandleComplianceExport)
	mux.HandleFunc("POST /api/v1/compliance/reminders", complianceapi.HandleComplianceReminders)

	// Tournaments
	mux.HandleFunc("POST /api/v1/tournaments", tournamentsapi.HandleTournamentCreate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}", tournamentsapi.HandleTournamentDetail)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/standings", tournamentsapi.HandleTournamentStandings)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}/fixtures/{fixture_id}/teams", tournamentsapi.HandleFixtureTeams)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}/fixtures/{fixture_id}/score", tournamentsapi.HandleFixtureScore)

	// Live matches
	mux.HandleFunc("POST /api/v1/matches", matchesapi.HandleMatchCreate)
	mux.HandleFunc("GET /api/v1/matches/{id}/timeline", matchesapi.HandleMatchTimeline)
	mux.HandleFunc("POST /api/v1/matches/{id}/events", matchesapi.HandleMatchEvent)
	mux.HandleFunc("PUT /api/v1/matches/{id}/status", matchesapi.HandleMatchStatus)
	mux.HandleFunc("POST /api/v1/matches/{id}/report", matchesapi.HandleMatchReport)
}
