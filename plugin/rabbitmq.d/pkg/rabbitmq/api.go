// SPDX-License-Identifier: GPL-3.0-or-later

package rabbitmq

import (
	"fmt"
	"strconv"
	"strings"
)

// https://www.rabbitmq.com/docs/http-api-reference

const (
	urlPathAPIOverview      = "/api/overview"
	urlPathAPINodes         = "/api/nodes"
	urlPathAPIQueues        = "/api/queues"
	urlPathAPIExchanges     = "/api/exchanges"
	urlPathAPIAlivenessTest = "/api/aliveness-test"
	urlPathAPIHealthVhosts  = "/api/health/checks/virtual-hosts"
)

// Queue is a single record of the /api/queues listing.
// Absent numeric fields decode as zero.
type Queue struct {
	Name                   string             `json:"name"`
	Vhost                  string             `json:"vhost"`
	Node                   string             `json:"node"`
	State                  string             `json:"state"`
	Type                   string             `json:"type"`
	Consumers              int64              `json:"consumers"`
	ConsumerUtilisation    Ratio              `json:"consumer_utilisation"`
	Messages               int64              `json:"messages"`
	BackingQueueStatus     BackingQueueStatus `json:"backing_queue_status"`
	SlaveNodes             []string           `json:"slave_nodes"`
	SynchronisedSlaveNodes []string           `json:"synchronised_slave_nodes"`
}

// Ratio is a number in [0,1] that remembers how the broker wrote it. Absent,
// null and integer literals (0, 1) are integral and render without a fraction.
type Ratio struct {
	Value      float64
	Fractional bool
}

// Fraction returns a Ratio as the broker writes a float, e.g. 0.23 or 1.0.
func Fraction(v float64) Ratio { return Ratio{Value: v, Fractional: true} }

func (r *Ratio) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*r = Ratio{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("ratio: %v", err)
	}
	*r = Ratio{Value: v, Fractional: strings.ContainsAny(s, ".eE")}
	return nil
}

type BackingQueueStatus struct {
	AvgEgressRate  float64 `json:"avg_egress_rate"`
	AvgIngressRate float64 `json:"avg_ingress_rate"`
}

// HasSlaves reports whether the queue is mirrored. Quorum and classic
// non-mirrored queues omit slave_nodes.
func (q Queue) HasSlaves() bool {
	return len(q.SlaveNodes) > 0
}

// Node is a single record of the /api/nodes listing.
type Node struct {
	Name          string   `json:"name"`
	Running       bool     `json:"running"`
	Partitions    []string `json:"partitions"`
	MemUsed       int64    `json:"mem_used"`
	MemLimit      int64    `json:"mem_limit"`
	MemAlarm      bool     `json:"mem_alarm"`
	FDUsed        int64    `json:"fd_used"`
	FDTotal       int64    `json:"fd_total"`
	SocketsUsed   int64    `json:"sockets_used"`
	SocketsTotal  int64    `json:"sockets_total"`
	ProcUsed      int64    `json:"proc_used"`
	ProcTotal     int64    `json:"proc_total"`
	DiskFree      int64    `json:"disk_free"`
	DiskFreeLimit int64    `json:"disk_free_limit"`
	DiskFreeAlarm bool     `json:"disk_free_alarm"`
}

// Overview is the subset of /api/overview the checks rely on.
type Overview struct {
	ManagementVersion string `json:"management_version"`
	RabbitMQVersion   string `json:"rabbitmq_version"`
	ClusterName       string `json:"cluster_name"`
	Node              string `json:"node"`
}

// StatusReply is the body of the aliveness and health check endpoints.
type StatusReply struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (r StatusReply) OK() bool {
	return r.Status == "ok"
}
