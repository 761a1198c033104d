// SPDX-License-Identifier: GPL-3.0-or-later

package runner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// unsetEnv removes keys for the duration of the test. Call t.Setenv on them first so they are restored.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, os.Unsetenv(k))
	}
}
