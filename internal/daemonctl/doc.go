// Package daemonctl launches, stops, and inspects the background dirchurn
// daemon process from the CLI.
package daemonctl
