// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux

package logger

import "github.com/coreos/go-systemd/v22/journal"

// stderrToJournal reports whether a systemd unit captures stderr, in which case
// journald stamps records itself.
func stderrToJournal() bool {
	ok, err := journal.StderrIsJournalStream()
	return err == nil && ok
}
