// Package main hosts the dirchurn CLI entrypoint and command graph.
//
// The Cobra command tree launches and stops the background daemon and
// translates the remaining invocations into IPC calls against it: worker
// scheduling, directory switching, listing, emptying, and journal queries.
// Configuration resolution and socket discovery live here so subcommands
// stay declarative.
package main
