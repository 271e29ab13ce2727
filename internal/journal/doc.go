// Package journal persists worker tick outcomes and directory state changes in
// a SQLite database under the log directory.
//
// The journal is an audit trail only. Counters are never restored from it, so
// a restarted daemon begins again at file_0000.txt. Schema changes bump the
// version in schema.go; older journals are rejected with ErrSchemaMismatch.
package journal
