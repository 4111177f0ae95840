package history

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/sentinel/internal/model"
)

var (
	// ErrVersionNotFound is returned when no entry has the requested ID.
	ErrVersionNotFound = errors.New("version not found")

	// ErrEmptyLog is returned when a store is rebuilt from no entries.
	ErrEmptyLog = errors.New("version log is empty")
)

// restoreTimeLayout formats the timestamp quoted in restoration reasons.
const restoreTimeLayout = "2006-01-02 15:04:05"

// Store is an append-only, mutex-guarded version log.
// The zero value is not usable; create stores with NewStore or FromEntries.
type Store struct {
	mu      sync.Mutex
	entries []model.VersionEntry // oldest first
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the function used to timestamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the function used to create entry IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func newStore(opts []Option) *Store {
	s := &Store{
		entries: make([]model.VersionEntry, 0, 8),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStore creates a log seeded with one entry holding content.
// A store is never empty between creation and Clear.
func NewStore(content, reason string, opts ...Option) *Store {
	s := newStore(opts)
	s.appendLocked(content, reason)
	return s
}

// FromEntries rebuilds a store from an archived log given oldest first.
// Entries are copied as they are; new entries continue after the last one.
func FromEntries(entries []model.VersionEntry, opts ...Option) (*Store, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyLog
	}
	s := newStore(opts)
	s.entries = append(s.entries, entries...)
	return s, nil
}

// Append records content as the newest version and returns the new entry.
func (s *Store) Append(content, reason string) model.VersionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(content, reason)
}

func (s *Store) appendLocked(content, reason string) model.VersionEntry {
	entry := model.VersionEntry{
		ID:        s.newID(),
		Timestamp: s.now(),
		Content:   content,
		Reason:    reason,
	}
	s.entries = append(s.entries, entry)
	return entry
}

// List returns every entry, newest first. The slice is a copy.
func (s *Store) List() []model.VersionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.entries)
	slices.Reverse(out)
	return out
}

// Restore appends a new entry with the content of entry. The log is never
// rewound: the restored version becomes the newest entry and entry itself
// stays where it was.
func (s *Store) Restore(entry model.VersionEntry) model.VersionEntry {
	return s.Append(entry.Content, RestoreReason(entry))
}

// RestoreByID restores the entry with the given ID.
func (s *Store) RestoreByID(id string) (model.VersionEntry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return model.VersionEntry{}, err
	}
	return s.Restore(entry), nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (model.VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return model.VersionEntry{}, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
}

// Current returns the newest entry. ok is false only after Clear.
func (s *Store) Current() (entry model.VersionEntry, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return model.VersionEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear removes every entry at once.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]model.VersionEntry, 0, 8)
}

// RestoreReason returns the reason recorded when entry is restored.
func RestoreReason(entry model.VersionEntry) string {
	return "Restored to version from " + entry.Timestamp.Format(restoreTimeLayout)
}
