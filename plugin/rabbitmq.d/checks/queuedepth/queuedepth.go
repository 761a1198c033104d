// SPDX-License-Identifier: GPL-3.0-or-later

package queuedepth

import (
	"context"
	"fmt"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/threshold"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuecheck"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuesel"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-queue", check.Creator{
		Title:       "CheckRabbitMQQueue",
		Description: "Checks the number of messages in RabbitMQ queues.",
		Create:      func() check.Check { return New() },
	})
}

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Warn:       250,
			Critical:   500,
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"RabbitMQ vhost to list queues from, all vhosts when empty" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	Queue             string `long:"queue" value-name:"QUEUES" required:"true" description:"comma separated list of RabbitMQ queues to monitor" yaml:"queue" toml:"queue" json:"queue"`
	Regex             bool   `long:"regex" description:"use the queue name as a regular expression" yaml:"regex,omitempty" toml:"regex,omitempty" json:"regex"`
	Warn              int64  `short:"w" long:"warn" value-name:"NUM_MESSAGES" description:"WARNING message count threshold" yaml:"warn" toml:"warn" json:"warn"`
	Critical          int64  `short:"c" long:"critical" value-name:"NUM_MESSAGES" description:"CRITICAL message count threshold" yaml:"critical" toml:"critical" json:"critical"`
	Below             bool   `long:"below" description:"count values under the thresholds as warning/critical" yaml:"below,omitempty" toml:"below,omitempty" json:"below"`
	Ignore            bool   `long:"ignore" description:"ignore non-existent queues" yaml:"ignore,omitempty" toml:"ignore,omitempty" json:"ignore"`
	Pretty            bool   `long:"pretty" description:"print a multiline message" yaml:"pretty,omitempty" toml:"pretty,omitempty" json:"pretty"`
	SortOutput        bool   `long:"sort-output" description:"sort queues in the message alphabetically" yaml:"sort_output,omitempty" toml:"sort_output,omitempty" json:"sort_output"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client   *rabbitmq.Client
	selector *queuesel.Selector
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	sel, err := queuesel.New(queuesel.NewCriteria(c.Queue, "", c.Regex))
	if err != nil {
		return err
	}
	c.selector = sel

	client, err := rabbitmq.New(c.HTTPConfig())
	if err != nil {
		return fmt.Errorf("init RabbitMQ client: %v", err)
	}
	c.client = client

	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	queues, err := c.client.Queues(ctx, c.Vhost)
	if err != nil {
		c.Errorf("fetch queues: %v", err)
		return status.NewCritical(queuecheck.MsgNoQueues)
	}
	if len(queues) == 0 && !c.Ignore {
		return status.NewCritical(queuecheck.MsgNoQueues)
	}

	selected, missing := c.selector.Select(queues)
	if c.Ignore {
		if len(missing) > 0 {
			c.Debugf("ignoring missing queues: %v", missing)
		}
		missing = nil
	}

	e := queuecheck.Evaluate(selected, missing, c.spec(), queuecheck.Depth)

	return queuecheck.Aggregate(e, queuecheck.Options{Sorted: c.SortOutput, Pretty: c.Pretty})
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Check) spec() threshold.Spec {
	dir := threshold.AtOrAbove
	if c.Below {
		dir = threshold.AtOrBelow
	}
	return threshold.New(float64(c.Warn), float64(c.Critical), dir)
}
