package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/sentinel/internal/backend"
	"github.com/nao1215/sentinel/internal/history"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/parser"
	"github.com/nao1215/sentinel/internal/pipeline"
)

var (
	// ErrNoReport is returned when an operation needs a report and the
	// session has none.
	ErrNoReport = errors.New("no report: run an assessment first")

	// ErrBusy is returned when a mutating call is made while another one
	// is still waiting for the backend.
	ErrBusy = errors.New("session is busy")

	// ErrNoProposal is returned by ApplyProposal when no reply is on offer.
	ErrNoProposal = errors.New("no proposal to apply")

	// ErrReportReplaced is returned when the report an edit loop works on
	// was reset or replaced by a new assessment before its result arrived.
	ErrReportReplaced = errors.New("report was replaced while waiting for the backend")

	// ErrEmptyMessage is returned by SendTurn for a turn with no text and
	// no attachments.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrInputIncomplete is returned by a strict assessment when the
	// pre-check reports missing context.
	ErrInputIncomplete = pipeline.ErrInputIncomplete
)

// Recorder persists session activity. Recorder failures are logged and
// never undo the in-memory change.
type Recorder interface {
	// BeginSession is called when an initial assessment succeeds.
	BeginSession(ctx context.Context, req model.AssessmentRequest) error

	// RecordVersion is called for every new history entry.
	RecordVersion(ctx context.Context, entry model.VersionEntry) error

	// RecordMessage is called for every transcript message.
	RecordMessage(ctx context.Context, msg model.ChatMessage) error
}

// Session owns one report and its history.
type Session struct {
	mu sync.Mutex

	gen      backend.Generator
	logger   *slog.Logger
	recorder Recorder

	precheck    bool
	strict      bool
	concurrency int
	storeOpts   []history.Option
	now         func() time.Time

	req   model.AssessmentRequest
	store *history.Store
	loop  *EditLoop
	busy  bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRecorder persists session activity through r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithPrecheck enables the input pre-check before generation. A strict
// pre-check rejects incomplete input with ErrInputIncomplete.
func WithPrecheck(enabled, strict bool) Option {
	return func(s *Session) {
		s.precheck = enabled
		s.strict = strict
	}
}

// WithSimulationConcurrency limits parallel attack simulations.
func WithSimulationConcurrency(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock sets the clock used for transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHistoryOptions passes options to every history store the session
// creates.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(s *Session) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// New creates an empty session using gen.
func New(gen backend.Generator, opts ...Option) *Session {
	s := &Session{
		gen:         gen,
		concurrency: 3,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RunInitialAssessment generates a report for req.
//
// On success the report replaces the current one, the history is reseeded
// with a single "Initial Generation" entry, and any open conversation is
// closed. On failure the session is left exactly as it was. Generation
// failures are returned as *backend.GenerationError.
func (s *Session) RunInitialAssessment(ctx context.Context, req model.AssessmentRequest) (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	assessment := model.NewAssessment(req)
	p := pipeline.NewAssessmentPipeline(s.gen, s.precheck, s.strict, s.logger)
	s.logger.Debug("running assessment", "steps", p.StepNames())
	if err := p.Execute(ctx, assessment); err != nil {
		var genErr *backend.GenerationError
		if !errors.Is(err, ErrInputIncomplete) && !errors.As(err, &genErr) {
			err = &backend.GenerationError{Err: err}
		}
		return "", err
	}

	store := history.NewStore(assessment.Report, model.ReasonInitialGeneration, s.storeOpts...)
	entry, _ := store.Current()

	s.mu.Lock()
	oldLoop := s.loop
	s.req = req
	s.store = store
	s.loop = nil
	s.mu.Unlock()

	s.closeLoop(oldLoop)

	if s.recorder != nil {
		if err := s.recorder.BeginSession(ctx, req); err != nil {
			s.logger.Warn("failed to record session", "error", err)
		}
	}
	s.recordVersion(ctx, entry)

	s.logger.Info("assessment complete",
		"steps", assessment.PerformedSteps,
		"bytes", len(assessment.Report),
	)
	return assessment.Report, nil
}

// Load replaces the session state with an archived report history given
// oldest first, and an optional transcript for the edit loop.
func (s *Session) Load(req model.AssessmentRequest, entries []model.VersionEntry, transcript []model.ChatMessage) error {
	store, err := history.FromEntries(entries, s.storeOpts...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	oldLoop := s.loop
	s.req = req
	s.store = store
	s.loop = nil
	if len(transcript) > 0 {
		s.loop = newEditLoop(s, nil, transcript)
	}
	s.mu.Unlock()

	s.closeLoop(oldLoop)
	return nil
}

// Precheck asks the backend whether material is detailed enough. It fails
// open: any backend error yields a complete result.
func (s *Session) Precheck(ctx context.Context, material string, standards []model.Standard) model.ValidationResult {
	result, err := s.gen.ValidateInput(ctx, material, standards)
	if err != nil {
		s.logger.Warn("input pre-check failed, continuing", "error", err)
		return model.BypassedValidation()
	}
	return result
}

// Reset discards the report, its history and the edit loop.
func (s *Session) Reset() {
	s.mu.Lock()
	oldLoop := s.loop
	if s.store != nil {
		s.store.Clear()
	}
	s.store = nil
	s.loop = nil
	s.req = model.AssessmentRequest{}
	s.mu.Unlock()

	s.closeLoop(oldLoop)
}

// Close releases the backend conversation, if one is open. The report and
// history are kept.
func (s *Session) Close() error {
	s.mu.Lock()
	loop := s.loop
	s.loop = nil
	s.mu.Unlock()

	if loop == nil {
		return nil
	}
	return loop.close()
}

// Active reports whether the session has a report.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store != nil
}

// Request returns the request of the current report.
func (s *Session) Request() model.AssessmentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// Report returns the current report text.
func (s *Session) Report() (string, error) {
	entry, err := s.current()
	if err != nil {
		return "", err
	}
	return entry.Content, nil
}

// View parses the current report.
func (s *Session) View() (model.ParsedView, error) {
	report, err := s.Report()
	if err != nil {
		return model.ParsedView{}, err
	}
	return parser.Parse(report), nil
}

// Document parses the current report and bundles it for the writers.
func (s *Session) Document() (*model.Document, error) {
	entry, err := s.current()
	if err != nil {
		return nil, err
	}
	doc := parser.Document(entry.Content, s.Request())
	doc.GeneratedAt = entry.Timestamp
	return doc, nil
}

// History returns the version history, newest first.
func (s *Session) History() []model.VersionEntry {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return []model.VersionEntry{}
	}
	return store.List()
}

// Restore appends a copy of the version with the given ID as the newest
// version and returns it.
func (s *Session) Restore(ctx context.Context, id string) (model.VersionEntry, error) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return model.VersionEntry{}, ErrNoReport
	}
	entry, err := store.RestoreByID(id)
	if err != nil {
		return model.VersionEntry{}, err
	}
	s.recordVersion(ctx, entry)
	return entry, nil
}

// EditLoop returns the session's edit loop, opening a backend
// conversation about the current report on first use. The session stays
// readable while the conversation is being created.
func (s *Session) EditLoop(ctx context.Context) (*EditLoop, error) {
	s.mu.Lock()
	if s.store == nil {
		s.mu.Unlock()
		return nil, ErrNoReport
	}
	if s.loop != nil && s.loop.connected() {
		loop := s.loop
		s.mu.Unlock()
		return loop, nil
	}
	store := s.store
	current, _ := store.Current()
	cc := model.ConversationContext{
		Report:    current.Content,
		Material:  s.req.Material,
		Standards: s.req.Standards,
		Persona:   s.req.Persona,
	}
	s.mu.Unlock()

	conv, err := s.gen.CreateConversation(ctx, cc)
	if err != nil {
		var chatErr *backend.ChatError
		if !errors.As(err, &chatErr) {
			err = &backend.ChatError{Op: "create", Err: err}
		}
		return nil, err
	}

	s.mu.Lock()
	switch {
	case s.store != store:
		s.mu.Unlock()
		s.closeConversation(conv)
		return nil, ErrReportReplaced
	case s.loop != nil && s.loop.connected():
		// A concurrent call opened one first.
		loop := s.loop
		s.mu.Unlock()
		s.closeConversation(conv)
		return loop, nil
	case s.loop != nil:
		s.loop.attach(conv)
	default:
		s.loop = newEditLoop(s, conv, nil)
	}
	loop := s.loop
	s.mu.Unlock()
	return loop, nil
}

// SimulateAttack narrates an attack exploiting f against the assessed
// material.
func (s *Session) SimulateAttack(ctx context.Context, f model.Finding) (string, error) {
	if !s.Active() {
		return "", ErrNoReport
	}
	req := s.Request()
	return s.gen.SimulateAttack(ctx, f.Summary(), req.Material, primaryStandard(req))
}

// SimulateFindings simulates attacks for several findings in parallel.
// Results are in input order and include failures.
func (s *Session) SimulateFindings(ctx context.Context, findings []model.Finding) ([]pipeline.SimulationResult, error) {
	if !s.Active() {
		return nil, ErrNoReport
	}
	req := s.Request()
	batch := pipeline.NewSimulationBatch(s.gen, req.Material, primaryStandard(req),
		pipeline.WithConcurrency(s.concurrency),
		pipeline.WithBatchLogger(s.logger),
	)
	return batch.Process(ctx, findings)
}

// commit appends content as a new version.
func (s *Session) commit(ctx context.Context, content, reason string) (model.VersionEntry, error) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return model.VersionEntry{}, ErrNoReport
	}
	entry := store.Append(content, reason)
	s.recordVersion(ctx, entry)
	return entry, nil
}

// applyTarget returns the history an apply started by l commits to.
func (s *Session) applyTarget(l *EditLoop) (*history.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNoReport
	}
	if s.loop != l {
		return nil, ErrReportReplaced
	}
	return s.store, nil
}

// commitApply appends content to store, provided l and store are still
// the session's edit loop and history.
func (s *Session) commitApply(ctx context.Context, l *EditLoop, store *history.Store, content, reason string) (model.VersionEntry, error) {
	s.mu.Lock()
	if s.loop != l || s.store != store {
		s.mu.Unlock()
		return model.VersionEntry{}, ErrReportReplaced
	}
	entry := store.Append(content, reason)
	s.mu.Unlock()

	s.recordVersion(ctx, entry)
	return entry, nil
}

func (s *Session) current() (model.VersionEntry, error) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return model.VersionEntry{}, ErrNoReport
	}
	entry, ok := store.Current()
	if !ok {
		return model.VersionEntry{}, ErrNoReport
	}
	return entry, nil
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) closeConversation(conv backend.Conversation) {
	if err := conv.Close(); err != nil {
		s.logger.Warn("failed to close conversation", "error", err)
	}
}

func (s *Session) closeLoop(loop *EditLoop) {
	if loop == nil {
		return
	}
	if err := loop.close(); err != nil {
		s.logger.Warn("failed to close conversation", "error", err)
	}
}

func (s *Session) recordVersion(ctx context.Context, entry model.VersionEntry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordVersion(ctx, entry); err != nil {
		s.logger.Warn("failed to record version", "id", entry.ID, "error", err)
	}
}

func (s *Session) recordMessage(ctx context.Context, msg model.ChatMessage) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordMessage(ctx, msg); err != nil {
		s.logger.Warn("failed to record message", "error", err)
	}
}

// primaryStandard is the standard attack simulations focus on.
func primaryStandard(req model.AssessmentRequest) string {
	if len(req.Standards) == 0 {
		return string(model.StandardCustom)
	}
	return string(req.Standards[0])
}
