// SPDX-License-Identifier: GPL-3.0-or-later

package queuemetrics

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

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
	check.Register("metrics-rabbitmq-queue", check.Creator{
		Title:       "RabbitMQQueueMetrics",
		Description: "Outputs per queue RabbitMQ metrics in graphite or prometheus format.",
		Kind:        check.KindMetric,
		Create:      func() check.Check { return New() },
	})
}

const defaultMetrics = "^messages$|consumers|drain_time|avg_egress"

// Rates of the backing queue keep their historical names and precision.
var reBackingQueueRate = regexp.MustCompile(`backing_queue_status.avg`)

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Options:    metricout.NewOptions(),
			Metrics:    defaultMetrics,
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	metricout.Options `yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"regular expression for filtering the RabbitMQ vhost" yaml:"vhost,omitempty" toml:"vhost,omitempty" json:"vhost"`
	Filter            string `long:"filter" value-name:"REGEX" description:"regular expression for filtering queues" yaml:"filter,omitempty" toml:"filter,omitempty" json:"filter"`
	Metrics           string `long:"metrics" value-name:"REGEX" description:"regular expression for filtering metrics in each queue" yaml:"metrics" toml:"metrics" json:"metrics"`
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
		return fmt.Errorf("queue filter: %v", err)
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
	raw, err := c.client.QueuesRaw(ctx)
	if err != nil {
		return check.FromError(err)
	}

	w, err := metricout.New(c.Output(), c.Options.Config("queue"))
	if err != nil {
		return status.NewUnknown(err.Error())
	}

	var werr error
	gjson.ParseBytes(raw).ForEach(func(_, queue gjson.Result) bool {
		name := queue.Get("name").String()
		if !c.vhost.MatchString(queue.Get("vhost").String()) || !c.filter.MatchString(name) {
			return true
		}
		for _, s := range c.samples(name, queue) {
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

func (c *Check) samples(name string, queue gjson.Result) []metricout.Sample {
	fields := dotted.Flatten(queue)

	messages := queue.Get("messages")
	if messages.Type != gjson.Number {
		fields = append(fields, dotted.Field{Path: "messages", Value: gjson.Parse("0")})
	}
	fields = append(fields, dotted.Field{
		Path:  "drain_time",
		Value: gjson.Parse(strconv.FormatInt(drainTime(messages.Float(), queue.Get("backing_queue_status.avg_egress_rate").Float()), 10)),
	})

	var samples []metricout.Sample
	for _, f := range fields {
		if !c.metrics.MatchString(f.Path) {
			continue
		}
		s := metricout.Sample{Object: name, Metric: f.Path, Value: dotted.FormatValue(f.Value)}
		if reBackingQueueRate.MatchString(f.Path) {
			s.Metric = dotted.LastSegment(f.Path)
			s.Value = fmt.Sprintf("%.4f", f.Value.Float())
		}
		samples = append(samples, s)
	}
	return samples
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}

// drainTime returns whole seconds to drain messages at rate, 0 when the rate gives no answer.
func drainTime(messages, rate float64) int64 {
	v := messages / rate
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(v)
}

func newMatcher(expr string) (matcher.Matcher, error) {
	if expr == "" {
		return matcher.TRUE(), nil
	}
	return matcher.NewRegExpMatcher(expr)
}
