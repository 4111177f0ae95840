// Package history records the edit history of a report.
//
// A Store is an append-only log of model.VersionEntry values. It is seeded
// with one entry when a report is first generated, and every committed edit
// or restoration appends a new entry. Entries are never changed or removed
// one by one: Clear drops the whole log when the session is reset.
//
// The current report is always the content of the newest entry.
//
//	store := history.NewStore(report, model.ReasonInitialGeneration)
//	store.Append(edited, `Updated via chat: "add MFA section"`)
//	store.Restore(store.List()[1]) // appends a copy of the first version
package history
