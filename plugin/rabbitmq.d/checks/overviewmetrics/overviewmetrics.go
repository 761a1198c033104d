// SPDX-License-Identifier: GPL-3.0-or-later

package overviewmetrics

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/metricout"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/dotted"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("metrics-rabbitmq-overview", check.Creator{
		Title:       "RabbitMQOverviewMetrics",
		Description: "Outputs RabbitMQ broker wide message and object totals in graphite or prometheus format.",
		Kind:        check.KindMetric,
		Create:      func() check.Check { return New() },
	})
}

var (
	queueTotals  = []string{"messages", "messages_ready", "messages_unacknowledged"}
	messageStats = []string{"deliver_get", "deliver_no_ack", "publish"}
	objectTotals = []string{"channels", "connections", "consumers", "exchanges", "queues"}
)

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
	raw, err := c.client.OverviewRaw(ctx)
	if err != nil {
		return check.FromError(err)
	}

	w, err := metricout.New(c.Output(), c.Options.Config("overview"))
	if err != nil {
		return status.NewUnknown(err.Error())
	}

	for _, s := range collect(gjson.ParseBytes(raw)) {
		if err := w.Write(s); err != nil {
			return status.NewUnknown(err.Error())
		}
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

func collect(overview gjson.Result) []metricout.Sample {
	var samples []metricout.Sample
	add := func(metric string, v gjson.Result) {
		if v.Exists() && v.Type != gjson.Null {
			samples = append(samples, metricout.Sample{Metric: metric, Value: dotted.FormatValue(v)})
		}
	}

	totals := overview.Get("queue_totals")
	for _, key := range queueTotals {
		add("queue_totals."+key+".count", totals.Get(key))
		add("queue_totals."+key+".rate", totals.Get(key+"_details.rate"))
	}

	stats := overview.Get("message_stats")
	for _, key := range messageStats {
		add("message_stats."+key+".count", stats.Get(key))
		add("message_stats."+key+".rate", stats.Get(key+"_details.rate"))
	}

	objects := overview.Get("object_totals")
	for _, key := range objectTotals {
		add("object_totals."+key+".count", objects.Get(key))
	}

	return samples
}
