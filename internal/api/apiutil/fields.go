package apiutil

import (
	"fmt"
	"net/http"
	"strings"
)

const clubIDQueryKey = "club_id"

// ClubIDFromQuery reads the required club_id query parameter.
func ClubIDFromQuery(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(clubIDQueryKey))
	if raw == "" {
		return "", FieldError{Field: clubIDQueryKey, Reason: "is required"}
	}
	return raw, nil
}

// PathID reads a required path value such as {id}.
func PathID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	if raw == "" {
		return "", FieldError{Field: name, Reason: "is required"}
	}
	return raw, nil
}

// RequireString rejects blank values.
func RequireString(raw, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	return raw, nil
}

// PositiveInt rejects nil or non-positive values.
func PositiveInt(value *int, field string) (int, error) {
	if value == nil {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	if *value <= 0 {
		return 0, FieldError{Field: field, Reason: fmt.Sprintf("must be greater than 0 (got %d)", *value)}
	}
	return *value, nil
}
