// SPDX-License-Identifier: GPL-3.0-or-later

package check

import (
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

// FromError maps a failed broker request to a result: CRITICAL when the
// connection was refused, UNKNOWN otherwise. The message is the error text.
func FromError(err error) status.Result {
	if rabbitmq.IsConnRefused(err) {
		return status.NewCritical(err.Error())
	}
	return status.NewUnknown(err.Error())
}
