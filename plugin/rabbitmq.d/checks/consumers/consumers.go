// SPDX-License-Identifier: GPL-3.0-or-later

package consumers

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
	check.Register("check-rabbitmq-consumers", check.Creator{
		Title:       "CheckRabbitMQConsumers",
		Description: "Checks the number of consumers of RabbitMQ queues.",
		Create:      func() check.Check { return New() },
	})
}

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Warn:       5,
			Critical:   2,
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"regular expression for filtering the RabbitMQ vhost" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	Queue             string `long:"queue" value-name:"QUEUES" description:"comma separated list of RabbitMQ queues to monitor" yaml:"queue,omitempty" toml:"queue,omitempty" json:"queue"`
	Exclude           string `long:"exclude" value-name:"QUEUES" description:"comma separated list of RabbitMQ queues to NOT monitor, all others will be monitored" yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude"`
	Regex             bool   `long:"regex" description:"treat --queue and --exclude as regular expressions" yaml:"regex,omitempty" toml:"regex,omitempty" json:"regex"`
	Warn              int64  `short:"w" long:"warn" value-name:"NUM_CONSUMERS" description:"WARNING consumer count threshold" yaml:"warn" toml:"warn" json:"warn"`
	Critical          int64  `short:"c" long:"critical" value-name:"NUM_CONSUMERS" description:"CRITICAL consumer count threshold" yaml:"critical" toml:"critical" json:"critical"`
	SortOutput        bool   `long:"sort-output" description:"sort queues in the message alphabetically" yaml:"sort_output,omitempty" toml:"sort_output,omitempty" json:"sort_output"`
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

	c.Debugf("using URL %s", c.HTTPConfig().URL)
	c.Debugf("thresholds: %s", c.spec())

	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	queues, err := c.client.Queues(ctx, "")
	if err != nil {
		c.Errorf("fetch queues: %v", err)
		return status.NewCritical(queuecheck.MsgNoQueues)
	}

	selected, missing := c.selector.Select(queuesel.FilterVhost(queues, c.vhost))
	c.Debugf("selected %d of %d queues, %d missing", len(selected), len(queues), len(missing))

	e := queuecheck.Evaluate(selected, missing, c.spec(), queuecheck.ConsumerCount)

	return queuecheck.Aggregate(e, queuecheck.Options{Sorted: c.SortOutput})
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Check) spec() threshold.Spec {
	return threshold.New(float64(c.Warn), float64(c.Critical), threshold.AtOrBelow)
}
