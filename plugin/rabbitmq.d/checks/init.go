// SPDX-License-Identifier: GPL-3.0-or-later

// Package checks registers every check with the default registry.
package checks

import (
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/alive"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/amqpalive"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/cluster"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/consumers"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/consumerutil"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/draintime"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/exchangemetrics"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/nodeusage"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/overviewmetrics"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/partitions"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/queuedepth"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/queuemetrics"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/queuesync"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks/stompalive"
)
