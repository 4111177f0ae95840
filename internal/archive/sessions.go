package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/sentinel/internal/model"
)

// SessionRecord is an archived assessment session.
type SessionRecord struct {
	ID        string
	CreatedAt time.Time
	Request   model.AssessmentRequest
}

// SessionSummary describes an archived session without loading its
// versions. It is used for listing sessions.
type SessionSummary struct {
	SessionRecord

	// Versions is the number of archived report versions.
	Versions int

	// LastReason is the reason of the newest version.
	LastReason string

	// UpdatedAt is the timestamp of the newest version.
	UpdatedAt time.Time
}

// CreateSession archives a new session for req and returns it.
// Attachment contents are not archived.
func (d *DB) CreateSession(ctx context.Context, req model.AssessmentRequest) (*SessionRecord, error) {
	standardsJSON, err := json.Marshal(req.Standards)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize standards: %w", err)
	}

	rec := &SessionRecord{
		ID:        uuid.NewString(),
		CreatedAt: d.now().UTC(),
		Request: model.AssessmentRequest{
			Material:  req.Material,
			Standards: req.Standards,
			Persona:   req.Persona,
		},
	}

	query := `
	INSERT INTO sessions (id, created_at, material, standards, persona)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, query,
		rec.ID,
		formatTimestamp(rec.CreatedAt),
		req.Material,
		string(standardsJSON),
		string(req.Persona),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return rec, nil
}

// GetSession retrieves a session by ID.
func (d *DB) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	query := `
	SELECT id, created_at, material, standards, persona
	FROM sessions
	WHERE id = ?
	`
	return d.scanSession(d.db.QueryRowContext(ctx, query, id))
}

// LatestSession retrieves the most recently created session.
func (d *DB) LatestSession(ctx context.Context) (*SessionRecord, error) {
	query := `
	SELECT id, created_at, material, standards, persona
	FROM sessions
	ORDER BY created_at DESC, rowid DESC
	LIMIT 1
	`
	return d.scanSession(d.db.QueryRowContext(ctx, query))
}

func (d *DB) scanSession(row *sql.Row) (*SessionRecord, error) {
	var (
		rec           SessionRecord
		createdAt     string
		standardsJSON string
		persona       string
	)
	err := row.Scan(&rec.ID, &createdAt, &rec.Request.Material, &standardsJSON, &persona)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rec.CreatedAt = parseTimestamp(createdAt)
	rec.Request.Persona = model.Persona(persona)
	if err := json.Unmarshal([]byte(standardsJSON), &rec.Request.Standards); err != nil {
		return nil, fmt.Errorf("failed to parse standards: %w", err)
	}
	return &rec, nil
}

// ListSessions returns every archived session, newest first.
func (d *DB) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	query := `
	SELECT s.id, s.created_at, s.material, s.standards, s.persona,
		COUNT(v.id),
		COALESCE((SELECT reason FROM versions WHERE session_id = s.id ORDER BY seq DESC LIMIT 1), ''),
		COALESCE(MAX(v.timestamp), s.created_at)
	FROM sessions s
	LEFT JOIN versions v ON v.session_id = s.id
	GROUP BY s.id
	ORDER BY s.created_at DESC, s.rowid DESC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	results := make([]SessionSummary, 0)
	for rows.Next() {
		var (
			sum           SessionSummary
			createdAt     string
			updatedAt     string
			standardsJSON string
			persona       string
		)
		if err := rows.Scan(
			&sum.ID,
			&createdAt,
			&sum.Request.Material,
			&standardsJSON,
			&persona,
			&sum.Versions,
			&sum.LastReason,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		sum.CreatedAt = parseTimestamp(createdAt)
		sum.UpdatedAt = parseTimestamp(updatedAt)
		sum.Request.Persona = model.Persona(persona)
		if err := json.Unmarshal([]byte(standardsJSON), &sum.Request.Standards); err != nil {
			return nil, fmt.Errorf("failed to parse standards: %w", err)
		}
		results = append(results, sum)
	}

	return results, rows.Err()
}

// DeleteSession removes a session with its versions and messages.
func (d *DB) DeleteSession(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}

	for _, table := range []string{"versions", "messages"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session deletion: %w", err)
	}
	return nil
}

// requireSession returns ErrSessionNotFound unless the session is archived.
func requireSession(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	return nil
}
