// SPDX-License-Identifier: GPL-3.0-or-later

package dotted

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	doc := gjson.Parse(`{
		"name": "orders",
		"consumers": 6,
		"consumer_utilisation": null,
		"slave_nodes": ["rabbit@node2"],
		"backing_queue_status": {"avg_egress_rate": 10.5, "mode": "default", "q": {"len": 3}},
		"durable": true
	}`)

	var got []string
	for _, f := range Flatten(doc) {
		got = append(got, f.Path+"="+FormatValue(f.Value))
	}

	assert.Equal(t, []string{
		"name=orders",
		"consumers=6",
		"backing_queue_status.avg_egress_rate=10.5",
		"backing_queue_status.mode=default",
		"backing_queue_status.q.len=3",
		"durable=true",
	}, got)
}

func TestFlatten_NotAnObject(t *testing.T) {
	assert.Empty(t, Flatten(gjson.Parse(`null`)))
	assert.Empty(t, Flatten(gjson.Parse(`{}`)))
}

func TestFormatValue(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want string
	}{
		"integer":         {raw: `1200`, want: "1200"},
		"big integer":     {raw: `50000000000`, want: "50000000000"},
		"zero":            {raw: `0`, want: "0"},
		"float zero":      {raw: `0.0`, want: "0.0"},
		"float":           {raw: `0.23211730652213466`, want: "0.23211730652213466"},
		"integral float":  {raw: `23.0`, want: "23.0"},
		"small exponent":  {raw: `1.5e-05`, want: "1.5e-05"},
		"string":          {raw: `"running"`, want: "running"},
		"true":            {raw: `true`, want: "true"},
		"false":           {raw: `false`, want: "false"},
		"negative number": {raw: `-2`, want: "-2"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, FormatValue(gjson.Parse(test.raw)))
		})
	}
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "avg_egress_rate", LastSegment("backing_queue_status.avg_egress_rate"))
	assert.Equal(t, "messages", LastSegment("messages"))
}
