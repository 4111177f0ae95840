package log

import (
	"context"
	"log/slog"
)

// SecureHandler is an slog.Handler that masks credentials before records
// reach the wrapped handler. Attributes are masked by key name or value,
// and the message is scrubbed of embedded keys and tokens.
type SecureHandler struct {
	next   slog.Handler
	policy *policy
}

// NewSecureHandler wraps next. A nil next falls back to the handler of
// slog.Default().
func NewSecureHandler(next slog.Handler) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	return &SecureHandler{next: next, policy: defaultPolicy()}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.policy.scrub(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.policy.attr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler. The attributes are masked once, here.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.policy.attr(a)
	}
	return &SecureHandler{next: h.next.WithAttrs(masked), policy: h.policy}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{next: h.next.WithGroup(name), policy: h.policy}
}
