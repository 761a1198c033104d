// SPDX-License-Identifier: GPL-3.0-or-later

package status

import (
	"fmt"
	"io"
)

// Severity is the outcome of a check. The numeric value is the process exit code.
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
	Unknown
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for the severity.
// Out of range values map to Unknown.
func (s Severity) ExitCode() int {
	if s < OK || s > Unknown {
		return int(Unknown)
	}
	return int(s)
}

// Worst returns the most severe of the given severities.
// Unknown ranks below Critical.
func Worst(severities ...Severity) Severity {
	worst := OK
	for _, s := range severities {
		if rank(s) > rank(worst) {
			worst = s
		}
	}
	return worst
}

func rank(s Severity) int {
	switch s {
	case Critical:
		return 3
	case Unknown:
		return 2
	case Warning:
		return 1
	default:
		return 0
	}
}

// Result is the severity and message a check reports.
type Result struct {
	Severity Severity
	Message  string
}

func NewOK(msg string) Result       { return Result{Severity: OK, Message: msg} }
func NewWarning(msg string) Result  { return Result{Severity: Warning, Message: msg} }
func NewCritical(msg string) Result { return Result{Severity: Critical, Message: msg} }
func NewUnknown(msg string) Result  { return Result{Severity: Unknown, Message: msg} }

func Newf(s Severity, format string, a ...any) Result {
	return Result{Severity: s, Message: fmt.Sprintf(format, a...)}
}

// Line formats the result the way monitoring handlers expect it:
//
//	CheckRabbitMQConsumers CRITICAL: Queues missing: orders
func (r Result) Line(title string) string {
	if r.Message == "" {
		return fmt.Sprintf("%s %s", title, r.Severity)
	}
	return fmt.Sprintf("%s %s: %s", title, r.Severity, r.Message)
}

// Write prints the result line followed by a newline.
func (r Result) Write(w io.Writer, title string) error {
	_, err := fmt.Fprintln(w, r.Line(title))
	return err
}
