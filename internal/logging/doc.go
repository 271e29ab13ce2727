// Package logging assembles the structured slog loggers used by the dirchurn
// daemon and CLI.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standard field keys (component, worker, counter, state, ...) and the
// WarnWithContext helper that every non-fatal tick failure goes through. Log
// retention for per-run files lives here as well.
package logging
