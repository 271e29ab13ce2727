package preflight

import (
	"dirchurn/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space below which the monitored filesystem is
// reported as a failed check.
const minFreeBytes = 16 << 20

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Monitored directory", cfg.Paths.MonitoredDir),
		CheckDiskSpace("Monitored filesystem", cfg.Paths.MonitoredDir, minFreeBytes),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.APIBind != "" {
		results = append(results, CheckAPIBind(cfg.Paths.APIBind))
	}
	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
