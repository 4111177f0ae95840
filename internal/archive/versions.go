package archive

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/nao1215/sentinel/internal/model"
)

// Digest returns the hex BLAKE2b-256 digest of a report version's content.
func Digest(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// AppendVersion archives entry as the newest version of a session.
func (d *DB) AppendVersion(ctx context.Context, sessionID string, entry model.VersionEntry) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireSession(ctx, tx, sessionID); err != nil {
		return err
	}
	seq, err := nextSeq(ctx, tx, "versions", sessionID)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO versions (id, session_id, seq, timestamp, reason, content, digest)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		entry.ID,
		sessionID,
		seq,
		formatTimestamp(entry.Timestamp),
		entry.Reason,
		entry.Content,
		Digest(entry.Content),
	)
	if err != nil {
		return fmt.Errorf("failed to append version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit version: %w", err)
	}
	return nil
}

// ListVersions returns a session's versions oldest first. It fails with
// ErrDigestMismatch if any content no longer matches its digest.
func (d *DB) ListVersions(ctx context.Context, sessionID string) ([]model.VersionEntry, error) {
	query := `
	SELECT id, timestamp, reason, content, digest
	FROM versions
	WHERE session_id = ?
	ORDER BY seq ASC
	`

	rows, err := d.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	entries := make([]model.VersionEntry, 0)
	for rows.Next() {
		var (
			entry     model.VersionEntry
			timestamp string
			digest    string
		)
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Reason, &entry.Content, &digest); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		if Digest(entry.Content) != digest {
			return nil, fmt.Errorf("version %s: %w", entry.ID, ErrDigestMismatch)
		}
		entry.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// AppendMessage archives a transcript message of a session.
func (d *DB) AppendMessage(ctx context.Context, sessionID string, msg model.ChatMessage) error {
	var attachments sql.NullString
	if len(msg.Attachments) > 0 {
		b, err := json.Marshal(msg.Attachments)
		if err != nil {
			return fmt.Errorf("failed to serialize attachments: %w", err)
		}
		attachments = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireSession(ctx, tx, sessionID); err != nil {
		return err
	}
	seq, err := nextSeq(ctx, tx, "messages", sessionID)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO messages (session_id, seq, role, text, attachments, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		sessionID,
		seq,
		string(msg.Role),
		msg.Text,
		attachments,
		formatTimestamp(msg.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

// ListMessages returns a session's transcript in order.
func (d *DB) ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	query := `
	SELECT role, text, attachments, timestamp
	FROM messages
	WHERE session_id = ?
	ORDER BY seq ASC
	`

	rows, err := d.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.ChatMessage, 0)
	for rows.Next() {
		var (
			msg         model.ChatMessage
			role        string
			attachments sql.NullString
			timestamp   string
		)
		if err := rows.Scan(&role, &msg.Text, &attachments, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = parseTimestamp(timestamp)
		if attachments.Valid && attachments.String != "" {
			if err := json.Unmarshal([]byte(attachments.String), &msg.Attachments); err != nil {
				return nil, fmt.Errorf("failed to parse attachments: %w", err)
			}
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// nextSeq returns the next sequence number of a session in table.
func nextSeq(ctx context.Context, tx *sql.Tx, table, sessionID string) (int64, error) {
	var seq int64
	query := "SELECT COALESCE(MAX(seq), 0) + 1 FROM " + table + " WHERE session_id = ?"
	if err := tx.QueryRowContext(ctx, query, sessionID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read %s sequence: %w", table, err)
	}
	return seq, nil
}
