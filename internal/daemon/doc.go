// Package daemon coordinates the long-running dirchurn process.
//
// It wires configuration, the producer and consumer workers, the directory
// monitor, and the optional activity journal into a single lifecycle with
// flock-based locking to prevent multiple instances. Control commands
// (start/stop/interval per worker, path changes, emptying the folder) are
// methods on Daemon; the HTTP API and the IPC server are thin adapters over
// them.
//
// The daemon enforces the operator interval range and creates directories on
// path changes. Workers stay responsible for tick semantics; the monitor
// stays responsible for classification.
package daemon
