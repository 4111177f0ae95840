package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/nao1215/sentinel/internal/backend"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/parser"
)

// MinProposalLength is the reply length, in characters, above which a
// reply is offered as an applicable proposal.
const MinProposalLength = 20

const (
	// ConnectionLostMessage is appended to the transcript when a turn fails.
	ConnectionLostMessage = "Chat connection lost."

	// ApplyFailedMessage is appended to the transcript when applying a
	// proposal fails.
	ApplyFailedMessage = "Failed to apply changes to the report."

	// AppliedMessage is appended to the transcript when a proposal has been
	// committed as a new version.
	AppliedMessage = "✅ Changes applied successfully. The report has been updated to a new version."

	// attachmentOnlyPrompt stands in for the user prompt of a turn that
	// carried only attachments.
	attachmentOnlyPrompt = "File analysis request"
)

// State is the edit loop state.
type State int

const (
	// StateIdle accepts a new turn.
	StateIdle State = iota
	// StateAwaitingResponse waits for the reply to a turn.
	StateAwaitingResponse
	// StateResponseReady holds a reply too short to be a proposal.
	StateResponseReady
	// StateAwaitingApplyDecision holds a proposal the user may apply.
	StateAwaitingApplyDecision
	// StateApplying waits for the replacement report.
	StateApplying
	// StateFailed follows a failed turn or apply.
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                  "idle",
	StateAwaitingResponse:      "awaiting-response",
	StateResponseReady:         "response-ready",
	StateAwaitingApplyDecision: "awaiting-apply-decision",
	StateApplying:              "applying",
	StateFailed:                "failed",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// accepting reports whether a new turn or apply may start.
func (s State) accepting() bool {
	return s != StateAwaitingResponse && s != StateApplying
}

// EditLoop is the remediation conversation about a session's report.
type EditLoop struct {
	mu sync.Mutex

	session    *Session
	conv       backend.Conversation
	state      State
	transcript []model.ChatMessage
	lastPrompt string
	proposal   bool
}

func newEditLoop(s *Session, conv backend.Conversation, transcript []model.ChatMessage) *EditLoop {
	return &EditLoop{
		session:    s,
		conv:       conv,
		state:      StateIdle,
		transcript: append([]model.ChatMessage(nil), transcript...),
	}
}

func (l *EditLoop) connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv != nil
}

// attach sets the conversation of a loop restored from a transcript.
func (l *EditLoop) attach(conv backend.Conversation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conv = conv
}

// SendTurn sends one user turn with optional attachments and returns the
// reply message. A reply longer than MinProposalLength is offered as a
// proposal. On failure the transcript gets ConnectionLostMessage and a
// *backend.ChatError is returned; the report is never changed by a turn.
func (l *EditLoop) SendTurn(ctx context.Context, text string, attachments []model.Attachment) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	l.mu.Lock()
	if !l.state.accepting() {
		l.mu.Unlock()
		return model.ChatMessage{}, ErrBusy
	}
	conv := l.conv
	if conv == nil {
		l.mu.Unlock()
		return model.ChatMessage{}, &backend.ChatError{Op: "send", Err: backend.ErrConversationClosed}
	}
	userMsg := l.appendLocked(model.RoleUser, text, model.AttachmentNames(attachments))
	l.lastPrompt = text
	if l.lastPrompt == "" {
		l.lastPrompt = attachmentOnlyPrompt
	}
	l.proposal = false
	l.state = StateAwaitingResponse
	l.mu.Unlock()

	l.session.recordMessage(ctx, userMsg)

	reply, err := conv.Send(ctx, text, attachments)
	if err == nil {
		reply = parser.Unwrap(reply)
		if reply == "" {
			err = backend.ErrEmptyResponse
		}
	}

	l.mu.Lock()
	if err != nil {
		msg := l.appendLocked(model.RoleModel, ConnectionLostMessage, nil)
		l.state = StateFailed
		l.mu.Unlock()

		l.session.recordMessage(ctx, msg)
		l.session.logger.Warn("chat turn failed", "error", err)
		return msg, asChatError("send", err)
	}

	msg := l.appendLocked(model.RoleModel, reply, nil)
	if utf8.RuneCountInString(reply) > MinProposalLength {
		l.proposal = true
		l.state = StateAwaitingApplyDecision
	} else {
		l.state = StateResponseReady
	}
	l.mu.Unlock()

	l.session.recordMessage(ctx, msg)
	return msg, nil
}

// ApplyProposal asks the backend for the complete updated report and
// commits it as a new version. It returns the new report.
//
// On failure the transcript gets ApplyFailedMessage, the report and its
// history are unchanged, the proposal stays on offer, and a
// *backend.ChatError is returned. A replacement that arrives after the
// session was reset or reassessed is discarded with ErrReportReplaced.
func (l *EditLoop) ApplyProposal(ctx context.Context) (string, error) {
	store, err := l.session.applyTarget(l)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	if !l.state.accepting() {
		l.mu.Unlock()
		return "", ErrBusy
	}
	if !l.proposal {
		l.mu.Unlock()
		return "", ErrNoProposal
	}
	conv := l.conv
	if conv == nil {
		l.mu.Unlock()
		return "", &backend.ChatError{Op: "apply", Err: backend.ErrConversationClosed}
	}
	reason := `Updated via chat: "` + l.lastPrompt + `"`
	l.state = StateApplying
	l.mu.Unlock()

	reply, err := conv.Send(ctx, backend.ApplyPrompt, nil)
	report := parser.Unwrap(reply)
	if err == nil && report == "" {
		err = backend.ErrEmptyResponse
	}
	if err == nil {
		_, err = l.session.commitApply(ctx, l, store, report, reason)
	}

	l.mu.Lock()
	if err != nil {
		msg := l.appendLocked(model.RoleModel, ApplyFailedMessage, nil)
		l.state = StateFailed
		l.mu.Unlock()

		// A replaced report belongs to another archived session now.
		if !errors.Is(err, ErrReportReplaced) {
			l.session.recordMessage(ctx, msg)
		}
		l.session.logger.Warn("applying chat changes failed", "error", err)
		return "", asChatError("apply", err)
	}

	msg := l.appendLocked(model.RoleModel, AppliedMessage, nil)
	l.proposal = false
	l.state = StateIdle
	l.mu.Unlock()

	l.session.recordMessage(ctx, msg)
	l.session.logger.Info("chat changes applied", "reason", reason)
	return report, nil
}

// Decline withdraws the current proposal.
func (l *EditLoop) Decline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateAwaitingApplyDecision {
		l.state = StateIdle
	}
	l.proposal = false
}

// ProposalOffered reports whether a reply is on offer for ApplyProposal.
func (l *EditLoop) ProposalOffered() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.proposal
}

// State returns the current state.
func (l *EditLoop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Transcript returns a copy of the messages exchanged so far.
func (l *EditLoop) Transcript() []model.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.ChatMessage, len(l.transcript))
	copy(out, l.transcript)
	return out
}

func (l *EditLoop) close() error {
	l.mu.Lock()
	conv := l.conv
	l.conv = nil
	l.mu.Unlock()

	if conv == nil {
		return nil
	}
	return conv.Close()
}

func (l *EditLoop) appendLocked(role model.Role, text string, attachments []string) model.ChatMessage {
	msg := model.ChatMessage{
		Role:        role,
		Text:        text,
		Attachments: attachments,
		Timestamp:   l.session.now(),
	}
	l.transcript = append(l.transcript, msg)
	return msg
}

func asChatError(op string, err error) error {
	var chatErr *backend.ChatError
	if errors.As(err, &chatErr) {
		return err
	}
	return &backend.ChatError{Op: op, Err: err}
}
