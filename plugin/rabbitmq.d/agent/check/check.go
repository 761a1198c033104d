// SPDX-License-Identifier: GPL-3.0-or-later

package check

import (
	"context"
	"io"
	"os"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/logger"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
)

// Check is an interface that represents a single monitoring check.
type Check interface {
	// Init validates the configuration and prepares clients.
	// If it returns error, the check reports UNKNOWN.
	Init(context.Context) error

	// Check is called after Init and returns the outcome.
	Check(context.Context) status.Result

	// Cleanup releases resources acquired by Init.
	Cleanup(context.Context)

	GetBase() *Base

	// Configuration returns a pointer to the check options.
	// The runner parses command line flags into it.
	Configuration() any
}

// Base is a helper struct. All checks should embed this struct.
type Base struct {
	*logger.Logger

	// Out receives metric lines. The status line is written by the runner.
	Out io.Writer
}

func (b *Base) GetBase() *Base { return b }

// Output returns the metric writer, stdout if none is set.
func (b *Base) Output() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}
