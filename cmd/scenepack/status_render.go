package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"scenepack/internal/ledger"
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
)

const (
	statusLabelWidth = 24
	statusIndent     = "  "
)

var statusStyles = [...]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func paint(text string, kind statusKind, colorize bool) string {
	if !colorize || int(kind) >= len(statusStyles) {
		return text
	}
	return statusStyles[kind].color + text + ansiReset
}

// renderStatusLine formats one doctor check as "label: [KIND] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + statusStyles[kind].label + "]"
	if message != "" {
		status += " " + message
	}
	return paint(fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status), kind, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return []string{
		paint(line, statusInfo, colorize),
		paint(strings.Repeat("-", len(line)), statusInfo, colorize),
	}
}

func colorizeRunStatus(status ledger.RunStatus, colorize bool) string {
	kind := statusInfo
	switch status {
	case ledger.RunCompleted:
		kind = statusOK
	case ledger.RunAborted:
		kind = statusError
	}
	return paint(string(status), kind, colorize)
}

func colorizeMovieStatus(status ledger.Status, colorize bool) string {
	kind := statusOK
	switch status {
	case ledger.StatusFailed:
		kind = statusError
	case ledger.StatusSkipped:
		kind = statusWarn
	case ledger.StatusDiscovered:
		kind = statusInfo
	}
	return paint(string(status), kind, colorize)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
