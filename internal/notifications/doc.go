// Package notifications delivers directory state alerts via ntfy.
//
// NewService returns a no-op implementation when no topic is configured.
// Events that the configuration turns off are dropped silently, so callers
// publish every transition and let the service decide.
package notifications
