// Package churn implements the two periodic workers that manufacture and
// retire files inside the monitored directory.
//
// A Producer writes file_%04d.txt on every tick and a Consumer removes the
// file named by its own counter. Each worker owns its counter and a
// WorkerConfig guarded by a private mutex; scheduling commands (start, stop,
// interval changes) travel to the worker's loop goroutine through an inbox
// channel and are acknowledged before the call returns.
//
// The two counters are deliberately independent. A Consumer that starts
// earlier or runs faster than the Producer will try to retire files that were
// never created (recorded as warnings), and a slower Consumer leaves files
// behind permanently. Nothing here pairs creations with retirements.
//
// Tick failures never stop a worker: they are logged, counted in Stats, and
// reported to the optional Observer, and the counter still advances.
package churn
