// SPDX-License-Identifier: GPL-3.0-or-later

package exchangemetrics

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/metricout"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq/rabbitmqtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataExchanges, _ = os.ReadFile("testdata/exchanges.json")

func Test_testDataIsValid(t *testing.T) {
	for name, data := range map[string][]byte{
		"dataExchanges": dataExchanges,
	} {
		require.NotNil(t, data, name)
		require.True(t, json.Valid(data), name)
	}
}

func TestCheck_Check_Graphite(t *testing.T) {
	tests := map[string]struct {
		prepare func(c *Check)
		want    []string
	}{
		"message stats": {
			prepare: func(c *Check) { c.Metrics = "^message_stats" },
			want: []string{
				"test.rabbitmq.events.message_stats.publish_in 300",
				"test.rabbitmq.events.message_stats.publish_in_details.rate 2.5",
				"test.rabbitmq.events.message_stats.publish_out 290",
				"test.rabbitmq.events.message_stats.publish_out_details.rate 0.0",
				"test.rabbitmq.audit.message_stats.publish_in 12",
				"test.rabbitmq.audit.message_stats.publish_in_details.rate 0.2",
			},
		},
		"all metrics of one exchange": {
			prepare: func(c *Check) { c.Filter = "^audit$" },
			want: []string{
				"test.rabbitmq.audit.name audit",
				"test.rabbitmq.audit.vhost production",
				"test.rabbitmq.audit.type fanout",
				"test.rabbitmq.audit.durable false",
				"test.rabbitmq.audit.auto_delete false",
				"test.rabbitmq.audit.internal false",
				"test.rabbitmq.audit.arguments.alternate-exchange unrouted",
				"test.rabbitmq.audit.message_stats.publish_in 12",
				"test.rabbitmq.audit.message_stats.publish_in_details.rate 0.2",
			},
		},
		"default exchange": {
			prepare: func(c *Check) {
				c.Filter = "^$"
				c.Metrics = "durable"
			},
			want: []string{
				"test.rabbitmq.amq.default.durable true",
			},
		},
		"vhost filter": {
			prepare: func(c *Check) {
				c.Vhost = "^/$"
				c.Metrics = "^type$"
			},
			want: []string{
				"test.rabbitmq.amq.default.type direct",
				"test.rabbitmq.events.type topic",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			srv := rabbitmqtest.NewServer(map[string]rabbitmqtest.Response{
				"/api/exchanges": rabbitmqtest.OK(dataExchanges),
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
			assert.Equal(t, test.want, stripTimestamps(buf.String()))
		})
	}
}

func TestCheck_Check_Prometheus(t *testing.T) {
	srv := rabbitmqtest.NewServer(map[string]rabbitmqtest.Response{
		"/api/exchanges": rabbitmqtest.OK(dataExchanges),
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
	assert.Contains(t, out, `rabbitmq_exchange_message_stats_publish_in{name="events"} 300`+"\n")
	assert.Contains(t, out, `rabbitmq_exchange_durable{name="amq.default"} 1`+"\n")
	assert.Contains(t, out, `rabbitmq_exchange_durable{name="audit"} 0`+"\n")
	assert.NotContains(t, out, "rabbitmq_exchange_type")
}

func TestCheck_Check_APIError(t *testing.T) {
	srv := rabbitmqtest.NewServer(map[string]rabbitmqtest.Response{
		"/api/exchanges": rabbitmqtest.JSON(401, `{"error":"not_authorised","reason":"Login failed"}`),
	})
	defer srv.Close()

	chk := New()
	chk.Connection = srv.Connection()
	chk.Out = &bytes.Buffer{}

	require.NoError(t, chk.Init(context.Background()))
	defer chk.Cleanup(context.Background())

	res := chk.Check(context.Background())
	assert.Equal(t, status.Unknown, res.Severity)
	assert.Contains(t, res.Message, "Login failed")
}

func stripTimestamps(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if i := strings.LastIndexByte(line, ' '); i > 0 {
			lines = append(lines, line[:i])
		}
	}
	return lines
}
