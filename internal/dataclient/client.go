// Package dataclient provides filtered access to named record collections.
//
// Records are JSON documents grouped by entity name ("Member", "Tournament",
// ...). Callers decode them into typed structs with Decode or FilterAs so that
// optional-field handling lives at this boundary rather than in business logic.
package dataclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidEntity = errors.New("invalid entity name")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrInvalidRecord = errors.New("payload must be a JSON object")
)

var (
	entityPattern = regexp.MustCompile(`^[A-Z][A-Za-z]{0,63}$`)
	fieldPattern  = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)*$`)
)

// Record is a stored document with its bookkeeping columns.
type Record struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Query matches records whose top-level (or dotted) JSON fields equal the given values.
// The key "id" matches the record ID.
type Query map[string]any

// Client is the data-access contract used by services and handlers.
type Client interface {
	Filter(ctx context.Context, entity string, query Query) ([]Record, error)
	Create(ctx context.Context, entity string, payload any) (Record, error)
	Update(ctx context.Context, entity, id string, patch any) (Record, error)
	Delete(ctx context.Context, entity, id string) error
	// Mutate hands the current record to fn and applies the patch it returns,
	// all in one transaction. A nil patch leaves the record unchanged. fn must
	// not call back into the client.
	Mutate(ctx context.Context, entity, id string, fn func(Record) (any, error)) (Record, error)
}

// Decode unmarshals a record's document into T.
func Decode[T any](rec Record) (T, error) {
	var out T
	if err := json.Unmarshal(rec.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", rec.Entity, rec.ID, err)
	}
	return out, nil
}

// FilterAs runs Filter and decodes every record into T.
func FilterAs[T any](ctx context.Context, c Client, entity string, query Query) ([]T, error) {
	records, err := c.Filter(ctx, entity, query)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		item, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Get returns the single record with the given ID, following the
// single-element filter convention.
func Get[T any](ctx context.Context, c Client, entity, id string) (T, error) {
	var zero T
	items, err := FilterAs[T](ctx, c, entity, Query{"id": id})
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, ErrNotFound
	}
	return items[0], nil
}

// MutateAs runs Mutate with the record decoded into T.
func MutateAs[T any](ctx context.Context, c Client, entity, id string, fn func(T) (any, error)) (Record, error) {
	return c.Mutate(ctx, entity, id, func(rec Record) (any, error) {
		item, err := Decode[T](rec)
		if err != nil {
			return nil, err
		}
		return fn(item)
	})
}

func validateEntity(entity string) error {
	if !entityPattern.MatchString(entity) {
		return fmt.Errorf("%w: %q", ErrInvalidEntity, entity)
	}
	return nil
}

func validateQuery(query Query) error {
	for key, value := range query {
		if !fieldPattern.MatchString(key) {
			return fmt.Errorf("%w: field %q", ErrInvalidQuery, key)
		}
		switch value.(type) {
		case string, bool, int, int64, float64:
		default:
			return fmt.Errorf("%w: unsupported value type %T for %q", ErrInvalidQuery, value, key)
		}
	}
	return nil
}

// toObject marshals payload and confirms it is a JSON object.
func toObject(payload any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, ErrInvalidRecord
	}
	return obj, nil
}
