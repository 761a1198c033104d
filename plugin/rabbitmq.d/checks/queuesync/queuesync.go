// SPDX-License-Identifier: GPL-3.0-or-later

package queuesync

import (
	"context"
	"fmt"
	"strings"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/matcher"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuesel"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-queues-synchronised", check.Creator{
		Title:       "CheckRabbitMQQueuesSynchronised",
		Description: "Checks that all mirrored RabbitMQ queues have their slaves synchronised.",
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
	Vhost             string `short:"v" long:"vhost" description:"regular expression for filtering the RabbitMQ vhost" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	ListQueues        bool   `long:"list-queues" description:"list all unsynchronised queues, otherwise only the count" yaml:"list_queues,omitempty" toml:"list_queues,omitempty" json:"list_queues"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client *rabbitmq.Client
	vhost  matcher.Matcher
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	var err error
	if c.vhost, err = queuesel.NewVhostMatcher(c.Vhost); err != nil {
		return err
	}

	client, err := rabbitmq.New(c.HTTPConfig())
	if err != nil {
		return fmt.Errorf("init RabbitMQ client: %v", err)
	}
	c.client = client

	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	queues, err := c.client.Queues(ctx, "")
	if err != nil {
		return check.FromError(err)
	}

	var unsynced []string
	for _, q := range queuesel.FilterVhost(queues, c.vhost) {
		if !q.HasSlaves() {
			continue
		}
		if n := len(q.SlaveNodes) - len(q.SynchronisedSlaveNodes); n != 0 {
			unsynced = append(unsynced, fmt.Sprintf("%s: %d unsynchronised slave(s)", q.Name, n))
		}
	}

	switch {
	case len(unsynced) == 0:
		return status.NewOK("")
	case c.ListQueues:
		return status.NewCritical(strings.Join(unsynced, " - "))
	default:
		return status.Newf(status.Critical, "%d unsynchronised queue(s)", len(unsynced))
	}
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
