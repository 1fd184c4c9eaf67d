// internal/api/matches/handlers.go
package matches

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/api/apiutil"
	"github.com/codr1/Clubhouse/internal/livematch"
	"github.com/codr1/Clubhouse/internal/llm"
	"github.com/codr1/Clubhouse/internal/models"
)

const (
	matchQueryTimeout = 5 * time.Second
	reportTimeout     = 60 * time.Second
	matchIDPathKey    = "id"
)

var service *livematch.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *livematch.Service) {
	service = svc
}

type statusRequest struct {
	Status string `json:"status"`
}

// POST /api/v1/matches
func HandleMatchCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !serviceReady(w, r) {
		return
	}

	var input livematch.CreateInput
	if err := apiutil.DecodeJSON(r, &input); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}
	clubID, err := apiutil.RequireString(input.ClubID, "club_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}
	input.ClubID = clubID
	if !apiutil.RequireWriteAccess(w, r, clubID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := service.Create(ctx, input)
	if err != nil {
		writeMatchError(w, r, err, "Failed to create match")
		return
	}

	logger.Info().Str("club_id", clubID).Str("match_id", match.ID).Msg("Live match created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, match); err != nil {
		logger.Error().Err(err).Str("match_id", match.ID).Msg("Failed to write match response")
	}
}

// GET /api/v1/matches/{id}/timeline
// Polled by scoreboards; the rendered body may come from the live cache.
func HandleMatchTimeline(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !serviceReady(w, r) {
		return
	}
	matchID, err := apiutil.PathID(r, matchIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	body, err := service.Timeline(ctx, matchID)
	if err != nil {
		writeMatchError(w, r, err, "Failed to load timeline")
		return
	}
	var owner struct {
		ClubID string `json:"club_id"`
	}
	if err := json.Unmarshal(body, &owner); err != nil {
		apiutil.WriteError(w, r, err, "Failed to load timeline")
		return
	}
	if !apiutil.RequireClubAccess(w, r, owner.ClubID) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to write timeline response")
	}
}

// POST /api/v1/matches/{id}/events
func HandleMatchEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	match, ok := loadMatchForWrite(w, r)
	if !ok {
		return
	}

	var event models.MatchEvent
	if err := apiutil.DecodeJSON(r, &event); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	updated, err := service.AddEvent(ctx, match.ID, event)
	if err != nil {
		writeMatchError(w, r, err, "Failed to record event")
		return
	}

	logger.Info().Str("match_id", updated.ID).Str("kind", event.Kind).Str("side", event.Side).Msg("Match event recorded")
	if err := apiutil.WriteJSON(w, http.StatusCreated, livematch.BuildTimeline(updated)); err != nil {
		logger.Error().Err(err).Str("match_id", updated.ID).Msg("Failed to write match response")
	}
}

// PUT /api/v1/matches/{id}/status
func HandleMatchStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	match, ok := loadMatchForWrite(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err}, "Invalid request")
		return
	}
	status, err := apiutil.RequireString(req.Status, "status")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	updated, err := service.SetStatus(ctx, match.ID, status)
	if err != nil {
		writeMatchError(w, r, err, "Failed to change match status")
		return
	}

	logger.Info().Str("match_id", updated.ID).Str("from", match.Status).Str("to", updated.Status).Msg("Match status changed")
	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Str("match_id", updated.ID).Msg("Failed to write match response")
	}
}

// POST /api/v1/matches/{id}/report
func HandleMatchReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	match, ok := loadMatchForWrite(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	article, err := service.WriteReport(ctx, match.ID)
	if err != nil {
		writeMatchError(w, r, err, "Failed to write match report")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, article); err != nil {
		logger.Error().Err(err).Str("article_id", article.ID).Msg("Failed to write article response")
	}
}

func serviceReady(w http.ResponseWriter, r *http.Request) bool {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Live match service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}

func loadMatchForWrite(w http.ResponseWriter, r *http.Request) (models.Match, bool) {
	if !serviceReady(w, r) {
		return models.Match{}, false
	}
	matchID, err := apiutil.PathID(r, matchIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return models.Match{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := service.Get(ctx, matchID)
	if err != nil {
		writeMatchError(w, r, err, "Failed to load match")
		return models.Match{}, false
	}
	return match, apiutil.RequireWriteAccess(w, r, match.ClubID)
}

func writeMatchError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, livematch.ErrMatchNotFound):
		err = apiutil.HandlerError{Status: http.StatusNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, livematch.ErrMatchFinished), errors.Is(err, livematch.ErrInvalidTransition):
		err = apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
	case errors.Is(err, llm.ErrDisabled):
		err = apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Match reports are not configured", Err: err}
	case errors.Is(err, llm.ErrEmptyResponse):
		err = apiutil.HandlerError{Status: http.StatusBadGateway, Message: "Report generator returned no content", Err: err}
	}
	apiutil.WriteError(w, r, err, fallback)
}
