// Package monitor classifies the monitored directory as empty, normal, or
// overloaded.
//
// Classify is a pure function of the regular-file count. Monitor wraps it
// with an fsnotify watch so that every create, remove, or rename in the
// directory produces a fresh Snapshot for the registered callback.
package monitor
