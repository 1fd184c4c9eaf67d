package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Clubhouse/internal/api/authz"
	"github.com/codr1/Clubhouse/internal/dataclient"
	"github.com/codr1/Clubhouse/internal/models"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Error  string           `json:"error"`
	Fields []fieldErrorBody `json:"fields,omitempty"`
}

type fieldErrorBody struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError maps err to a JSON error response. Unrecognised errors are
// logged and reported as 500 with fallback as the message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := log.Ctx(r.Context())

	var (
		handlerErr HandlerError
		fieldErr   FieldError
		validErr   *models.ValidationError
	)
	status := http.StatusInternalServerError
	body := errorBody{Error: fallback}

	switch {
	case errors.As(err, &handlerErr):
		status = handlerErr.Status
		body.Error = handlerErr.Message
	case errors.As(err, &validErr):
		status = http.StatusUnprocessableEntity
		body.Error = "validation failed"
		for _, p := range validErr.Problems {
			body.Fields = append(body.Fields, fieldErrorBody{Field: p.Field, Reason: p.Rule})
		}
	case errors.As(err, &fieldErr):
		status = http.StatusBadRequest
		body.Error = fieldErr.Error()
		body.Fields = []fieldErrorBody{{Field: fieldErr.Field, Reason: fieldErr.Reason}}
	case errors.Is(err, models.ErrInvalidPhone):
		status = http.StatusUnprocessableEntity
		body.Error = "validation failed"
		body.Fields = []fieldErrorBody{{Field: "phone", Reason: "e164"}}
	case errors.Is(err, dataclient.ErrNotFound):
		status = http.StatusNotFound
		body.Error = "Not found"
	case errors.Is(err, authz.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body.Error = "Unauthorized"
	case errors.Is(err, authz.ErrForbidden):
		status = http.StatusForbidden
		body.Error = "Forbidden"
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(fallback)
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	if writeErr := WriteJSON(w, status, body); writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// RequireClubAccess writes a 401/403 and returns false when the caller may not read clubID.
func RequireClubAccess(w http.ResponseWriter, r *http.Request, clubID string) bool {
	return requireAccess(w, r, clubID, authz.RequireClubAccess(r.Context(), clubID), "Club access denied")
}

// RequireWriteAccess is RequireClubAccess for mutating requests.
func RequireWriteAccess(w http.ResponseWriter, r *http.Request, clubID string) bool {
	return requireAccess(w, r, clubID, authz.RequireWriteAccess(r.Context(), clubID), "Club write denied")
}

func requireAccess(w http.ResponseWriter, r *http.Request, clubID string, err error, msg string) bool {
	if err == nil {
		return true
	}
	logEvent := log.Ctx(r.Context()).Warn().Str("requested_club_id", clubID)
	if club := authz.ClubFromContext(r.Context()); club != nil {
		logEvent = logEvent.Str("role", club.Role)
	}
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		logEvent.Msg(msg + ": unauthenticated")
	case errors.Is(err, authz.ErrForbidden):
		logEvent.Msg(msg + ": forbidden")
	}
	WriteError(w, r, err, "Failed to authorize request")
	return false
}
