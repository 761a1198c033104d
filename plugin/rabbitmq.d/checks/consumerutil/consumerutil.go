// SPDX-License-Identifier: GPL-3.0-or-later

package consumerutil

import (
	"context"
	"fmt"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/matcher"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/threshold"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuecheck"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuesel"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-consumer-utilisation", check.Creator{
		Title: "CheckRabbitMQConsumerUtilisation",
		Description: "Checks the consumer utilisation of RabbitMQ queues: the fraction of time " +
			"a queue is able to immediately deliver messages to consumers.",
		Create: func() check.Check { return New() },
	})
}

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Warn:       0.9,
			Critical:   0.5,
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string  `short:"v" long:"vhost" description:"regular expression for filtering the RabbitMQ vhost" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	Queue             string  `long:"queue" value-name:"QUEUES" description:"comma separated list of RabbitMQ queues to monitor" yaml:"queue,omitempty" toml:"queue,omitempty" json:"queue"`
	Exclude           string  `long:"exclude" value-name:"QUEUES" description:"comma separated list of RabbitMQ queues to NOT monitor, all others will be monitored" yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude"`
	Regex             bool    `long:"regex" description:"treat --queue and --exclude as regular expressions" yaml:"regex,omitempty" toml:"regex,omitempty" json:"regex"`
	Warn              float64 `short:"w" long:"warn" value-name:"CONSUMER_UTILISATION" description:"WARNING consumer utilisation threshold" yaml:"warn" toml:"warn" json:"warn"`
	Critical          float64 `short:"c" long:"critical" value-name:"CONSUMER_UTILISATION" description:"CRITICAL consumer utilisation threshold" yaml:"critical" toml:"critical" json:"critical"`
	SortOutput        bool    `long:"sort-output" description:"sort queues in the message alphabetically" yaml:"sort_output,omitempty" toml:"sort_output,omitempty" json:"sort_output"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client   *rabbitmq.Client
	selector *queuesel.Selector
	vhost    matcher.Matcher
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	sel, err := queuesel.New(queuesel.NewCriteria(c.Queue, c.Exclude, c.Regex))
	if err != nil {
		return err
	}
	c.selector = sel

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
		c.Errorf("fetch queues: %v", err)
		return status.NewCritical(queuecheck.MsgNoQueues)
	}

	selected, missing := c.selector.Select(queuesel.FilterVhost(queues, c.vhost))

	spec := threshold.New(c.Warn, c.Critical, threshold.AtOrBelow)
	e := queuecheck.Evaluate(selected, missing, spec, queuecheck.ConsumerUtilisation)

	return queuecheck.Aggregate(e, queuecheck.Options{Sorted: c.SortOutput})
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
