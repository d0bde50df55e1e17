package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aconic-ni/customspayapp/pkg/platform/sentinel"
)

// PostgresStore persists request documents as JSONB with the query-bearing
// fields (request date, creator) mirrored into indexed columns.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Query(ctx context.Context, plan QueryPlan) ([]StoredRecord, error) {
	query := `SELECT id, doc FROM requests WHERE request_date >= $1 AND request_date <= $2`
	args := []any{plan.From, plan.To}
	if len(plan.OwnedBy) > 0 {
		query += ` AND saved_by = ANY($3)`
		args = append(args, plan.OwnedBy)
	}
	if plan.SortDescending {
		query += ` ORDER BY request_date DESC, id`
	} else {
		query += ` ORDER BY request_date ASC, id`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query requests", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		fields := make(map[string]any)
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode request %s: %w", id, err)
		}
		out = append(out, StoredRecord{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate requests", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (StoredRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM requests WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRecord{}, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return StoredRecord{}, classify("get request", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return StoredRecord{}, fmt.Errorf("decode request %s: %w", id, err)
	}
	return StoredRecord{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, id string, fields FieldUpdate, writer string) (time.Time, error) {
	// The stamp is taken once here rather than via now() in SQL so the same
	// value lands in every field pair and in the returned mirror.
	stamp := time.Now().UTC()
	merge := make(map[string]any, len(fields)*3)
	for k, v := range fields {
		merge[k] = v
		merge[k+"UpdatedAt"] = stamp.Format(time.RFC3339Nano)
		merge[k+"UpdatedBy"] = writer
	}
	patch, err := json.Marshal(merge)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode request patch: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE requests SET doc = doc || $2::jsonb WHERE id = $1`, id, patch)
	if err != nil {
		return time.Time{}, classify("update request", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return time.Time{}, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	return stamp, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return classify("delete request", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, recordID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, body, created_at
		   FROM request_comments WHERE request_id = $1 ORDER BY created_at, id`, recordID)
	if err != nil {
		return nil, classify("list comments", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c := Comment{RecordID: recordID}
		if err := rows.Scan(&c.ID, &c.AuthorEmail, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate comments", err)
	}
	return out, nil
}

func (s *PostgresStore) CountComments(ctx context.Context, recordID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM request_comments WHERE request_id = $1`, recordID).Scan(&n)
	if err != nil {
		return 0, classify("count comments", err)
	}
	return n, nil
}

func (s *PostgresStore) AppendComment(ctx context.Context, recordID, body, author string) (Comment, error) {
	c := Comment{ID: uuid.NewString(), RecordID: recordID, AuthorEmail: author, Body: body}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO request_comments (id, request_id, author, body)
		 VALUES ($1, $2, $3, $4) RETURNING created_at`,
		c.ID, recordID, author, body).Scan(&c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Comment{}, fmt.Errorf("request %s: %w", recordID, sentinel.ErrNotFound)
		}
		return Comment{}, classify("append comment", err)
	}
	return c, nil
}

// classify maps driver failures onto the shared sentinels so service code can
// branch without importing pgx.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501":
			return fmt.Errorf("%s: %w", op, sentinel.ErrPermissionDenied)
		case "42P01", "42703":
			// Undefined table or column: the schema precondition is missing.
			return fmt.Errorf("%s: %w", op, sentinel.ErrMissingIndex)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
