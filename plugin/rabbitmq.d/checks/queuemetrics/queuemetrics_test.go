// SPDX-License-Identifier: GPL-3.0-or-later

package queuemetrics

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/metricout"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq/rabbitmqtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataQueues, _ = os.ReadFile("testdata/queues.json")

func Test_testDataIsValid(t *testing.T) {
	for name, data := range map[string][]byte{
		"dataQueues": dataQueues,
	} {
		require.NotNil(t, data, name)
		require.True(t, json.Valid(data), name)
	}
}

func TestCheck_Registered(t *testing.T) {
	creator, ok := check.DefaultRegistry.Lookup("metrics-rabbitmq-queue")
	require.True(t, ok)
	assert.Equal(t, check.KindMetric, creator.Kind)
}

func TestCheck_Init(t *testing.T) {
	tests := map[string]struct {
		prepare func(c *Check)
		wantErr bool
	}{
		"defaults":        {prepare: func(c *Check) {}},
		"bad vhost regex": {prepare: func(c *Check) { c.Vhost = "prod(" }, wantErr: true},
		"bad filter":      {prepare: func(c *Check) { c.Filter = "[a-" }, wantErr: true},
		"bad metrics":     {prepare: func(c *Check) { c.Metrics = "(" }, wantErr: true},
		"unknown format":  {prepare: func(c *Check) { c.Format = "influx" }, wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			chk := New()
			test.prepare(chk)

			if test.wantErr {
				assert.Error(t, chk.Init(context.Background()))
			} else {
				assert.NoError(t, chk.Init(context.Background()))
			}
		})
	}
}

func TestCheck_Check_Graphite(t *testing.T) {
	tests := map[string]struct {
		prepare func(c *Check)
		want    []string
	}{
		"default metrics": {
			prepare: func(c *Check) {},
			want: []string{
				"test.rabbitmq.orders.consumers 6",
				"test.rabbitmq.orders.messages 1200",
				"test.rabbitmq.orders.avg_egress_rate 10.5000",
				"test.rabbitmq.orders.drain_time 114",
				"test.rabbitmq.billing.consumers 0",
				"test.rabbitmq.billing.messages 40",
				"test.rabbitmq.billing.avg_egress_rate 0.0000",
				"test.rabbitmq.billing.drain_time 0",
				"test.rabbitmq.events.consumers 1",
				"test.rabbitmq.events.messages 0",
				"test.rabbitmq.events.drain_time 0",
			},
		},
		"queue filter": {
			prepare: func(c *Check) { c.Filter = "^ord" },
			want: []string{
				"test.rabbitmq.orders.consumers 6",
				"test.rabbitmq.orders.messages 1200",
				"test.rabbitmq.orders.avg_egress_rate 10.5000",
				"test.rabbitmq.orders.drain_time 114",
			},
		},
		"vhost filter": {
			prepare: func(c *Check) { c.Vhost = "prod" },
			want: []string{
				"test.rabbitmq.billing.consumers 0",
				"test.rabbitmq.billing.messages 40",
				"test.rabbitmq.billing.avg_egress_rate 0.0000",
				"test.rabbitmq.billing.drain_time 0",
			},
		},
		"custom metrics": {
			prepare: func(c *Check) {
				c.Filter = "orders"
				c.Metrics = "messages|backing_queue_status"
			},
			want: []string{
				"test.rabbitmq.orders.messages 1200",
				"test.rabbitmq.orders.messages_ready 1100",
				"test.rabbitmq.orders.messages_details.rate 1.5",
				"test.rabbitmq.orders.avg_egress_rate 10.5000",
				"test.rabbitmq.orders.avg_ingress_rate 2.2500",
				"test.rabbitmq.orders.avg_ack_egress_rate 0.1235",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			srv := rabbitmqtest.NewServer(map[string]rabbitmqtest.Response{
				"/api/queues": rabbitmqtest.OK(dataQueues),
			})
			defer srv.Close()

			var buf bytes.Buffer
			chk := New()
			chk.Connection = srv.Connection()
			chk.Scheme = "test.rabbitmq"
			chk.Out = &buf
			test.prepare(chk)

			require.NoError(t, chk.Init(context.Background()))
			defer chk.Cleanup(context.Background())

			assert.Equal(t, status.NewOK(""), chk.Check(context.Background()))
			assert.Equal(t, test.want, stripTimestamps(t, buf.String()))
		})
	}
}

func TestCheck_Check_Prometheus(t *testing.T) {
	srv := rabbitmqtest.NewServer(map[string]rabbitmqtest.Response{
		"/api/queues": rabbitmqtest.OK(dataQueues),
	})
	defer srv.Close()

	var buf bytes.Buffer
	chk := New()
	chk.Connection = srv.Connection()
	chk.Format = metricout.FormatPrometheus
	chk.Out = &buf

	require.NoError(t, chk.Init(context.Background()))
	defer chk.Cleanup(context.Background())

	assert.Equal(t, status.NewOK(""), chk.Check(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "# TYPE rabbitmq_queue_consumers gauge\n")
	assert.Contains(t, out, `rabbitmq_queue_consumers{name="orders"} 6`+"\n")
	assert.Contains(t, out, `rabbitmq_queue_drain_time{name="orders"} 114`+"\n")
	assert.Contains(t, out, `rabbitmq_queue_avg_egress_rate{name="orders"} 10.5`+"\n")
	assert.Contains(t, out, `rabbitmq_queue_messages{name="events"} 0`+"\n")
}

func TestCheck_Check_ConnectionRefused(t *testing.T) {
	var buf bytes.Buffer
	chk := New()
	chk.Connection = rabbitmqtest.ClosedConnection()
	chk.Out = &buf

	require.NoError(t, chk.Init(context.Background()))
	defer chk.Cleanup(context.Background())

	res := chk.Check(context.Background())
	assert.Equal(t, status.Critical, res.Severity)
	assert.Empty(t, buf.String())
}

func Test_drainTime(t *testing.T) {
	assert.Equal(t, int64(114), drainTime(1200, 10.5))
	assert.Equal(t, int64(0), drainTime(0, 0))
	assert.Equal(t, int64(0), drainTime(40, 0))
	assert.Equal(t, int64(2), drainTime(5, 2))
}

func stripTimestamps(t *testing.T, out string) []string {
	t.Helper()

	var lines []string
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		i := strings.LastIndexByte(line, ' ')
		require.Positive(t, i, line)
		lines = append(lines, line[:i])
	}
	return lines
}
