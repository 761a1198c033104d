// SPDX-License-Identifier: GPL-3.0-or-later

package check

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := map[string]struct {
		err  error
		want status.Severity
	}{
		"connection refused":         {err: refused, want: status.Critical},
		"wrapped connection refused": {err: fmt.Errorf("get nodes: %w", refused), want: status.Critical},
		"other error":                {err: errors.New("err 'not_authorised', reason 'Login failed'"), want: status.Unknown},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			res := FromError(test.err)

			assert.Equal(t, test.want, res.Severity)
			assert.Equal(t, test.err.Error(), res.Message)
		})
	}
}
