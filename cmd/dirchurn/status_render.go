package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dirchurn/internal/api"
	"dirchurn/internal/daemonctl"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiOrange = "\x1b[38;5;208m"
)

const (
	statusLabelWidth = 22
	statusIndent     = "  "
)

var titleCaser = cases.Title(language.Und)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func statusKindFromSeverity(severity string) statusKind {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "ok":
		return statusOK
	case "warn":
		return statusWarn
	case "error":
		return statusError
	default:
		return statusInfo
	}
}

// stateColor maps a directory state colour name to its terminal escape.
func stateColor(name string) string {
	switch name {
	case "red":
		return ansiRed
	case "green":
		return ansiGreen
	case "orange":
		return ansiOrange
	default:
		return ""
	}
}

// directoryStatusLine renders "Status: Normal (5 files)" in the state colour.
func directoryStatusLine(dir api.DirectoryStatus, colorize bool) string {
	line := fmt.Sprintf("Status: %s (%d files)", titleCaser.String(dir.State), dir.FileCount)
	if colorize {
		if color := stateColor(dir.Color); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// reportDirectory returns the live directory status, or the locally computed
// one when the daemon is offline.
func reportDirectory(report *daemonctl.StatusReport) api.DirectoryStatus {
	if report.Daemon != nil {
		return report.Daemon.Directory
	}
	return api.FromSnapshot(report.Snapshot, report.Snapshot.Dir)
}

func renderStatusReport(report *daemonctl.StatusReport, colorize bool) []string {
	var lines []string
	lines = append(lines, renderSectionHeader("System Status", colorize)...)
	for _, check := range report.SystemChecks {
		lines = append(lines, renderStatusLine(check.Label, statusKindFromSeverity(check.Severity), check.Detail, colorize))
	}
	if report.Daemon != nil && report.Daemon.PID > 0 {
		lines = append(lines, renderStatusLine("PID", statusInfo, strconv.Itoa(report.Daemon.PID), colorize))
	}
	lines = append(lines, "")

	dir := reportDirectory(report)
	lines = append(lines, renderSectionHeader("Directory", colorize)...)
	lines = append(lines, statusIndent+directoryStatusLine(dir, colorize))
	lines = append(lines, statusIndent+"Path: "+dir.Path)
	if report.Daemon == nil {
		lines = append(lines, statusIndent+"(computed locally; daemon offline)")
	}

	if report.Daemon == nil {
		return lines
	}
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Workers", colorize)...)
	rows := [][]string{
		workerRow(report.Daemon.Producer),
		workerRow(report.Daemon.Consumer),
	}
	table := renderTable([]tableColumn{
		{Header: "Worker"},
		{Header: "Running"},
		{Header: "Interval", Align: alignRight},
		{Header: "Next File"},
		{Header: "Ticks", Align: alignRight},
		{Header: "Warnings", Align: alignRight},
	}, rows)
	lines = append(lines, strings.Split(strings.TrimRight(table, "\n"), "\n")...)
	for _, worker := range []api.WorkerStatus{report.Daemon.Producer, report.Daemon.Consumer} {
		if worker.LastWarning != "" {
			lines = append(lines, renderStatusLine(titleCaser.String(worker.Name)+" warning", statusWarn, worker.LastWarning, colorize))
		}
	}
	return lines
}

func workerRow(worker api.WorkerStatus) []string {
	return []string{
		titleCaser.String(worker.Name),
		yesNo(worker.Running),
		fmt.Sprintf("%d ms", worker.IntervalMillis),
		worker.NextFile,
		strconv.FormatUint(worker.Ticks, 10),
		strconv.FormatUint(worker.Warnings, 10),
	}
}

type statusJSON struct {
	Running      bool                   `json:"running"`
	Directory    api.DirectoryStatus    `json:"directory"`
	Daemon       *api.DaemonStatus      `json:"daemon,omitempty"`
	SystemChecks []daemonctl.StatusLine `json:"systemChecks"`
}

func statusJSONPayload(report *daemonctl.StatusReport) statusJSON {
	return statusJSON{
		Running:      report.Running,
		Directory:    reportDirectory(report),
		Daemon:       report.Daemon,
		SystemChecks: report.SystemChecks,
	}
}
