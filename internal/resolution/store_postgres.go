package resolution

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists resolution records. duplicate_ids is kept as JSONB
// so it scans without array helpers.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, duplicate_key, duplicate_ids, tracking_number, status, resolved_by, resolved_at
		   FROM resolutions ORDER BY resolved_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			ids []byte
		)
		if err := rows.Scan(&rec.ID, &rec.DuplicateKey, &ids, &rec.TrackingNumber,
			&rec.Status, &rec.ResolvedBy, &rec.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan resolution row: %w", err)
		}
		if err := json.Unmarshal(ids, &rec.DuplicateIDs); err != nil {
			return nil, fmt.Errorf("decode resolution %s ids: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) (Record, error) {
	rec.ID = uuid.NewString()
	ids, err := json.Marshal(rec.DuplicateIDs)
	if err != nil {
		return Record{}, fmt.Errorf("encode resolution ids: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO resolutions (id, duplicate_key, duplicate_ids, tracking_number, status, resolved_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING resolved_at`,
		rec.ID, rec.DuplicateKey, ids, rec.TrackingNumber, rec.Status, rec.ResolvedBy).Scan(&rec.ResolvedAt)
	if err != nil {
		return Record{}, fmt.Errorf("append resolution: %w", err)
	}
	return rec, nil
}
