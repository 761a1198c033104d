// SPDX-License-Identifier: GPL-3.0-or-later

package partitions

import (
	"context"
	"fmt"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-network-partitions", check.Creator{
		Title:       "CheckRabbitMQPartitions",
		Description: "Checks whether any RabbitMQ cluster node reports a network partition.",
		Create:      func() check.Check { return New() },
	})
}

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client *rabbitmq.Client
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	client, err := rabbitmq.New(c.HTTPConfig())
	if err != nil {
		return fmt.Errorf("init RabbitMQ client: %v", err)
	}
	c.client = client
	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	nodes, err := c.client.Nodes(ctx)
	if err != nil {
		return check.FromError(err)
	}

	for _, n := range nodes {
		if len(n.Partitions) > 0 {
			c.Debugf("node '%s' partitioned from %v", n.Name, n.Partitions)
			return status.NewCritical("network partition detected")
		}
	}
	return status.NewOK("no network partition detected")
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
