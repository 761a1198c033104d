// SPDX-License-Identifier: GPL-3.0-or-later

package queuesel

import (
	"fmt"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/matcher"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

// NewVhostMatcher compiles an unanchored vhost pattern. An empty pattern matches every vhost.
func NewVhostMatcher(pattern string) (matcher.Matcher, error) {
	if pattern == "" {
		return matcher.TRUE(), nil
	}
	m, err := matcher.NewRegExpMatcher(pattern)
	if err != nil {
		return nil, fmt.Errorf("vhost filter: %v", err)
	}
	return matcher.WithCache(m), nil
}

// FilterVhost keeps the queues whose vhost matches m. Order is kept.
func FilterVhost(queues []rabbitmq.Queue, m matcher.Matcher) []rabbitmq.Queue {
	if m == nil {
		return queues
	}
	var res []rabbitmq.Queue
	for _, q := range queues {
		if m.MatchString(q.Vhost) {
			res = append(res, q)
		}
	}
	return res
}
