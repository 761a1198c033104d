// SPDX-License-Identifier: GPL-3.0-or-later

package exchangemetrics

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/matcher"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/metricout"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/dotted"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuesel"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("metrics-rabbitmq-exchange", check.Creator{
		Title:       "RabbitMQExchangeMetrics",
		Description: "Outputs per exchange RabbitMQ metrics in graphite or prometheus format.",
		Kind:        check.KindMetric,
		Create:      func() check.Check { return New() },
	})
}

// The default exchange has an empty name. It is reported under its alias.
const defaultExchangeName = "amq.default"

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Options:    metricout.NewOptions(),
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	metricout.Options `yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"regular expression for filtering the RabbitMQ vhost" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	Filter            string `long:"filter" value-name:"REGEX" description:"regular expression for filtering exchanges" yaml:"filter,omitempty" toml:"filter,omitempty" json:"filter"`
	Metrics           string `long:"metrics" value-name:"REGEX" description:"regular expression for filtering metrics in each exchange, all when unset" yaml:"metrics,omitempty" toml:"metrics,omitempty" json:"metrics"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client  *rabbitmq.Client
	vhost   matcher.Matcher
	filter  matcher.Matcher
	metrics matcher.Matcher
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	var err error
	if c.vhost, err = queuesel.NewVhostMatcher(c.Vhost); err != nil {
		return err
	}
	if c.filter, err = newMatcher(c.Filter); err != nil {
		return fmt.Errorf("exchange filter: %v", err)
	}
	if c.metrics, err = newMatcher(c.Metrics); err != nil {
		return fmt.Errorf("metrics filter: %v", err)
	}
	if err := c.Options.Validate(); err != nil {
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
	raw, err := c.client.ExchangesRaw(ctx)
	if err != nil {
		return check.FromError(err)
	}

	w, err := metricout.New(c.Output(), c.Options.Config("exchange"))
	if err != nil {
		return status.NewUnknown(err.Error())
	}

	var werr error
	gjson.ParseBytes(raw).ForEach(func(_, exchange gjson.Result) bool {
		name := exchange.Get("name").String()
		if !c.vhost.MatchString(exchange.Get("vhost").String()) || !c.filter.MatchString(name) {
			return true
		}
		if name == "" {
			name = defaultExchangeName
		}

		for _, f := range dotted.Flatten(exchange) {
			if !c.metrics.MatchString(f.Path) {
				continue
			}
			s := metricout.Sample{Object: name, Metric: f.Path, Value: dotted.FormatValue(f.Value)}
			if werr = w.Write(s); werr != nil {
				return false
			}
		}
		return true
	})
	if werr != nil {
		return status.NewUnknown(werr.Error())
	}
	if err := w.Flush(); err != nil {
		return status.NewUnknown(err.Error())
	}

	return status.NewOK("")
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}

func newMatcher(expr string) (matcher.Matcher, error) {
	if expr == "" {
		return matcher.TRUE(), nil
	}
	return matcher.NewRegExpMatcher(expr)
}
