// Package archive provides SQLite-based storage for assessment sessions.
//
// The archive keeps, per assessment session:
//   - the request the report was generated from
//   - every report version, in commit order, with a content digest
//   - the edit-loop transcript
//
// Version rows are never updated. Each row carries a BLAKE2b-256 digest of
// its content, and ListVersions refuses to return a log whose content no
// longer matches its digests.
//
// The database is a single file, sentinel.db, in the data directory. It
// uses modernc.org/sqlite, so the binary stays CGO-free.
package archive
