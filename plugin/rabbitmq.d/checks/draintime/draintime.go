// SPDX-License-Identifier: GPL-3.0-or-later

package draintime

import (
	"context"
	"fmt"
	"strings"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/matcher"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuecheck"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuesel"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-queue-drain-time", check.Creator{
		Title:       "CheckRabbitMQQueueDrainTime",
		Description: "Checks how long RabbitMQ queues take to drain at the current egress rate.",
		Create:      func() check.Check { return New() },
	})
}

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Filter:     ".*",
			Warn:       180,
			Critical:   360,
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"regular expression for filtering the RabbitMQ vhost" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	Filter            string `long:"filter" value-name:"REGEX" description:"regular expression for filtering queues" yaml:"filter" toml:"filter" json:"filter"`
	Warn              int64  `short:"w" long:"warning" value-name:"PROCESS_TIME_SECS" description:"WARNING time in seconds to drain a queue at the current rate" yaml:"warning" toml:"warning" json:"warning"`
	Critical          int64  `short:"c" long:"critical" value-name:"PROCESS_TIME_SECS" description:"CRITICAL time in seconds to drain a queue at the current rate" yaml:"critical" toml:"critical" json:"critical"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client *rabbitmq.Client
	filter matcher.Matcher
	vhost  matcher.Matcher
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	var err error
	if c.filter, err = matcher.NewRegExpMatcher(c.Filter); err != nil {
		return fmt.Errorf("queue filter: %v", err)
	}
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

	var total int
	var crit, warn []string

	for _, q := range queuesel.FilterVhost(queues, c.vhost) {
		if !c.filter.MatchString(q.Name) {
			continue
		}
		total++

		// nothing to drain
		if q.Messages == 0 {
			continue
		}

		rate := q.BackingQueueStatus.AvgEgressRate
		if rate == 0 {
			crit = append(crit, q.Name+" Infinite (drain rate = 0) sec")
			continue
		}

		secs := float64(q.Messages) / rate
		entry := fmt.Sprintf("%s %s sec", q.Name, queuecheck.FormatFloat(secs))

		switch {
		case secs > float64(c.Critical):
			crit = append(crit, entry)
		case secs > float64(c.Warn):
			warn = append(warn, entry)
		}
	}

	switch {
	case len(crit) > 0:
		return status.NewCritical("Drain time: " + strings.Join(crit, ", "))
	case len(warn) > 0:
		return status.NewWarning("Drain time: " + strings.Join(warn, ", "))
	default:
		return status.Newf(status.OK, "All (%d) queues will be drained in under %d seconds", total, c.Warn)
	}
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
