// SPDX-License-Identifier: GPL-3.0-or-later

package buildinfo

// Version is reported by --version and sent in the management API User-Agent.
// Release builds override it with -ldflags "-X <module>/pkg/buildinfo.Version=...".
var Version = "v0.0.0"
