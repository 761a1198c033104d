// SPDX-License-Identifier: GPL-3.0-or-later

package queuesync

import (
	"context"
	"encoding/json"
	"os"
	"testing"

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
	creator, ok := check.DefaultRegistry.Lookup("check-rabbitmq-queues-synchronised")
	require.True(t, ok)
	assert.Equal(t, "CheckRabbitMQQueuesSynchronised", creator.Title)
}

func TestCheck_Check(t *testing.T) {
	tests := map[string]struct {
		prepare func(c *Check)
		body    []byte
		want    status.Result
	}{
		"count": {
			prepare: func(c *Check) {},
			body:    dataQueues,
			want:    status.NewCritical("2 unsynchronised queue(s)"),
		},
		"list queues": {
			prepare: func(c *Check) { c.ListQueues = true },
			body:    dataQueues,
			want:    status.NewCritical("orders: 1 unsynchronised slave(s) - audit: 2 unsynchronised slave(s)"),
		},
		"vhost filter": {
			prepare: func(c *Check) {
				c.Vhost = "^/$"
				c.ListQueues = true
			},
			body: dataQueues,
			want: status.NewCritical("orders: 1 unsynchronised slave(s)"),
		},
		"all synchronised": {
			prepare: func(c *Check) {},
			body:    []byte(`[{"name":"billing","vhost":"/","slave_nodes":["a"],"synchronised_slave_nodes":["a"]}]`),
			want:    status.NewOK(""),
		},
		"no queues": {
			prepare: func(c *Check) {},
			body:    []byte(`[]`),
			want:    status.NewOK(""),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			srv := rabbitmqtest.NewServer(map[string]rabbitmqtest.Response{
				"/api/queues": rabbitmqtest.OK(test.body),
			})
			defer srv.Close()

			chk := New()
			chk.Connection = srv.Connection()
			test.prepare(chk)

			require.NoError(t, chk.Init(context.Background()))
			defer chk.Cleanup(context.Background())

			assert.Equal(t, test.want, chk.Check(context.Background()))
		})
	}
}

func TestCheck_Check_ConnectionRefused(t *testing.T) {
	chk := New()
	chk.Connection = rabbitmqtest.ClosedConnection()

	require.NoError(t, chk.Init(context.Background()))
	defer chk.Cleanup(context.Background())

	res := chk.Check(context.Background())
	assert.Equal(t, status.Critical, res.Severity)
	assert.Contains(t, res.Message, "connection refused")
}
