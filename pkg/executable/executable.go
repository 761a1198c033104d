// SPDX-License-Identifier: GPL-3.0-or-later

package executable

import (
	"os"
	"path/filepath"
	"strings"
)

// Name is the base name the binary was invoked under, minus the ".plugin" suffix.
// It comes from os.Args[0] rather than os.Executable so that a symlink such as
// check-rabbitmq-consumers keeps its own name.
var Name = nameOf(os.Args)

func nameOf(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "rabbitmq"
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), ".plugin")
	if strings.HasSuffix(name, ".test") {
		return "test"
	}
	return name
}
