package archive

import (
	"context"
	"sync"

	"github.com/nao1215/sentinel/internal/model"
)

// Recorder writes session activity to the archive. It follows one archived
// session at a time; BeginSession switches it to a new one.
type Recorder struct {
	db *DB

	mu        sync.Mutex
	sessionID string
}

// NewRecorder returns a recorder appending to sessionID. An empty
// sessionID is allowed; BeginSession must then be called before anything
// is recorded.
func NewRecorder(db *DB, sessionID string) *Recorder {
	return &Recorder{db: db, sessionID: sessionID}
}

// SessionID returns the archived session being recorded.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// BeginSession archives a new session and records into it from now on.
func (r *Recorder) BeginSession(ctx context.Context, req model.AssessmentRequest) error {
	rec, err := r.db.CreateSession(ctx, req)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.sessionID = rec.ID
	r.mu.Unlock()
	return nil
}

// RecordVersion archives a new report version.
func (r *Recorder) RecordVersion(ctx context.Context, entry model.VersionEntry) error {
	id := r.SessionID()
	if id == "" {
		return ErrSessionNotFound
	}
	return r.db.AppendVersion(ctx, id, entry)
}

// RecordMessage archives a transcript message.
func (r *Recorder) RecordMessage(ctx context.Context, msg model.ChatMessage) error {
	id := r.SessionID()
	if id == "" {
		return ErrSessionNotFound
	}
	return r.db.AppendMessage(ctx, id, msg)
}
