// Package session coordinates the life of one assessment report.
//
// A Session owns the current report and its version history. It runs the
// initial assessment, exposes the parsed view of the current report, and
// commits edits and restorations to the history. The view is parsed again
// on every read, so it always matches the newest version.
//
// An EditLoop is the remediation conversation attached to a session. Each
// turn goes to the backend conversation; a long enough reply is offered as
// a proposal, and applying it asks the backend for a complete replacement
// report which is committed as a new version. Failed turns and failed
// applies leave the report untouched and are reported in the transcript.
//
// A Session holds a live backend conversation once an EditLoop has been
// opened. Callers release it with Close:
//
//	s := session.New(gen, session.WithLogger(logger))
//	defer s.Close()
//	if _, err := s.RunInitialAssessment(ctx, req); err != nil {
//	    return err
//	}
//	loop, err := s.EditLoop(ctx)
package session
