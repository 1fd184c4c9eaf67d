// internal/api/compliance/handlers.go
package compliance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/api/apiutil"
	"github.com/codr1/Clubhouse/internal/compliance"
	"github.com/codr1/Clubhouse/internal/exports"
)

const (
	complianceQueryTimeout = 10 * time.Second
	reminderTimeout        = 30 * time.Second
)

var service *compliance.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *compliance.Service) {
	service = svc
}

// GET /api/v1/compliance?club_id=
func HandleComplianceReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	clubID, ok := clubFromQuery(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), complianceQueryTimeout)
	defer cancel()

	_, report, err := service.Report(ctx, clubID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to build compliance report")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, report); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write compliance report")
	}
}

// GET /api/v1/compliance/export?club_id=
func HandleComplianceDownload(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	clubID, ok := clubFromQuery(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), complianceQueryTimeout)
	defer cancel()

	club, report, err := service.Report(ctx, clubID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to build compliance export")
		return
	}

	var buf bytes.Buffer
	if err := compliance.WriteCSV(&buf, report); err != nil {
		apiutil.WriteError(w, r, err, "Failed to render compliance export")
		return
	}

	filename := path.Base(exports.ComplianceKey(club.Name, club.ID, report.GeneratedAt))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write compliance export")
	}
}

// POST /api/v1/compliance/export?club_id=
// Stores the export in the configured sink instead of returning it.
func HandleComplianceExport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	clubID, ok := clubFromQuery(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), complianceQueryTimeout)
	defer cancel()

	result, err := service.Export(ctx, clubID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to store compliance export")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"key":               result.Key,
		"location":          result.Location,
		"data_health_score": result.Report.DataHealthScore,
	}); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write export response")
	}
}

// POST /api/v1/compliance/reminders?club_id=
func HandleComplianceReminders(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	clubID, ok := clubFromQuery(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reminderTimeout)
	defer cancel()

	summary, err := service.SendReminders(ctx, clubID)
	if err != nil {
		if errors.Is(err, compliance.ErrRateLimited) {
			err = apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: err.Error(), Err: err}
		}
		apiutil.WriteError(w, r, err, "Failed to send reminders")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusAccepted, summary); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write reminders response")
	}
}

func clubFromQuery(w http.ResponseWriter, r *http.Request, write bool) (string, bool) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Compliance service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return "", false
	}
	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid request")
		return "", false
	}
	if write {
		return clubID, apiutil.RequireWriteAccess(w, r, clubID)
	}
	return clubID, apiutil.RequireClubAccess(w, r, clubID)
}
