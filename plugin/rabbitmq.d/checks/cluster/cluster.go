// SPDX-License-Identifier: GPL-3.0-or-later

package cluster

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-cluster-health", check.Creator{
		Title:       "CheckRabbitMQCluster",
		Description: "Checks that all RabbitMQ cluster nodes are running and expected nodes are present.",
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
	Nodes             string `short:"n" long:"nodes" value-name:"NODE1,NODE2" description:"comma separated list of expected nodes in the cluster" yaml:"nodes,omitempty" toml:"nodes,omitempty" json:"nodes"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client   *rabbitmq.Client
	expected []string
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	c.expected = nil
	for _, name := range strings.Split(c.Nodes, ",") {
		if name = strings.TrimSpace(name); name != "" {
			c.expected = append(c.expected, name)
		}
	}

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

	running := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		running[n.Name] = n.Running
	}

	var failed []string
	for name, ok := range running {
		if !ok {
			failed = append(failed, name)
		}
	}
	slices.Sort(failed)

	var missing []string
	for _, name := range c.expected {
		if _, ok := running[name]; !ok {
			missing = append(missing, name)
		}
	}

	var msg string
	if len(failed) == 0 {
		msg = fmt.Sprintf("%d healthy cluster nodes", len(running))
	} else {
		msg = fmt.Sprintf("%d failed cluster node: %s", len(failed), strings.Join(failed, ","))
	}
	if len(missing) > 0 {
		msg = fmt.Sprintf("%d node(s) not found: %s. %s", len(missing), strings.Join(missing, ","), msg)
	}

	if len(failed) > 0 || len(missing) > 0 {
		return status.NewCritical(msg)
	}
	return status.NewOK(msg)
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
