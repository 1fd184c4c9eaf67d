package dataclient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codr1/Clubhouse/internal/db"
	"github.com/codr1/Clubhouse/internal/metrics"
)

type recordRow struct {
	ID        string    `db:"id"`
	Entity    string    `db:"entity"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r recordRow) toRecord() Record {
	return Record{
		ID:        r.ID,
		Entity:    r.Entity,
		Data:      json.RawMessage(r.Data),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Store implements Client on the records table.
type Store struct {
	db  *db.DB
	now func() time.Time
}

func NewStore(database *db.DB) (*Store, error) {
	if database == nil {
		return nil, errors.New("data client requires a database")
	}
	return &Store{db: database, now: time.Now}, nil
}

func (s *Store) Filter(ctx context.Context, entity string, query Query) ([]Record, error) {
	defer observe("filter", time.Now())

	if err := validateEntity(entity); err != nil {
		return nil, err
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(`SELECT id, entity, data, created_at, updated_at FROM records WHERE entity = ?`)
	args := []any{entity}
	for _, key := range keys {
		if key == "id" {
			sb.WriteString(` AND id = ?`)
			args = append(args, query[key])
			continue
		}
		sb.WriteString(` AND json_extract(data, ?) = ?`)
		args = append(args, "$."+key, queryValue(query[key]))
	}
	sb.WriteString(` ORDER BY rowid`)

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("filter %s: %w", entity, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (s *Store) Create(ctx context.Context, entity string, payload any) (Record, error) {
	defer observe("create", time.Now())

	if err := validateEntity(entity); err != nil {
		return Record{}, err
	}
	obj, err := toObject(payload)
	if err != nil {
		return Record{}, err
	}

	id := uuid.New().String()
	idJSON, _ := json.Marshal(id)
	obj["id"] = idJSON
	data, err := json.Marshal(obj)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", entity, err)
	}

	now := s.now().UTC()
	row := recordRow{ID: id, Entity: entity, Data: string(data), CreatedAt: now, UpdatedAt: now}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO records (id, entity, data, created_at, updated_at)
		VALUES (:id, :entity, :data, :created_at, :updated_at)
	`, row)
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", entity, err)
	}
	return row.toRecord(), nil
}

// Update shallow-merges patch into the stored document. Keys present in the
// patch replace stored values wholesale; the record ID cannot be changed.
// There is no version check: concurrent updates are last-write-wins.
func (s *Store) Update(ctx context.Context, entity, id string, patch any) (Record, error) {
	defer observe("update", time.Now())

	if err := validateEntity(entity); err != nil {
		return Record{}, err
	}
	obj, err := toObject(patch)
	if err != nil {
		return Record{}, err
	}
	return s.mutate(ctx, entity, id, func(Record) (any, error) { return obj, nil })
}

func (s *Store) Mutate(ctx context.Context, entity, id string, fn func(Record) (any, error)) (Record, error) {
	defer observe("mutate", time.Now())

	if err := validateEntity(entity); err != nil {
		return Record{}, err
	}
	return s.mutate(ctx, entity, id, fn)
}

func (s *Store) mutate(ctx context.Context, entity, id string, fn func(Record) (any, error)) (Record, error) {
	var result recordRow
	err := s.db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		var current recordRow
		err := tx.GetContext(ctx, &current,
			`SELECT id, entity, data, created_at, updated_at FROM records WHERE id = ? AND entity = ?`,
			id, entity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("load %s %s: %w", entity, id, err)
		}

		patch, err := fn(current.toRecord())
		if err != nil {
			return err
		}
		if patch == nil {
			result = current
			return nil
		}
		obj, err := toObject(patch)
		if err != nil {
			return err
		}
		delete(obj, "id")

		var stored map[string]json.RawMessage
		if err := json.Unmarshal([]byte(current.Data), &stored); err != nil {
			return fmt.Errorf("decode stored %s %s: %w", entity, id, err)
		}
		for key, value := range obj {
			stored[key] = value
		}
		merged, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", entity, id, err)
		}

		current.Data = string(merged)
		current.UpdatedAt = s.now().UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET data = ?, updated_at = ? WHERE id = ? AND entity = ?`,
			current.Data, current.UpdatedAt, id, entity); err != nil {
			return fmt.Errorf("update %s %s: %w", entity, id, err)
		}
		result = current
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return result.toRecord(), nil
}

func (s *Store) Delete(ctx context.Context, entity, id string) error {
	defer observe("delete", time.Now())

	if err := validateEntity(entity); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ? AND entity = ?`, id, entity)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", entity, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", entity, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// queryValue maps Go values onto what json_extract returns for them.
func queryValue(value any) any {
	if b, ok := value.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return value
}

func observe(op string, start time.Time) {
	metrics.DataClientDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
