// SPDX-License-Identifier: GPL-3.0-or-later

package nodeusage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-node-usage", check.Creator{
		Title:       "CheckRabbitMQNodeUsage",
		Description: "Checks memory, socket, file descriptor, process or disk usage of a RabbitMQ node.",
		Create:      func() check.Check { return New() },
	})
}

const (
	typeMem    = "mem"
	typeSocket = "socket"
	typeFD     = "fd"
	typeProc   = "proc"
	typeDisk   = "disk"
)

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			MemWarn:    80,
			MemCrit:    90,
			FDWarn:     80,
			FDCrit:     90,
			SocketWarn: 80,
			SocketCrit: 90,
			ProcWarn:   80,
			ProcCrit:   90,
			DiskWarn:   80,
			DiskCrit:   90,
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Type              string  `long:"type" choice:"mem" choice:"socket" choice:"fd" choice:"proc" choice:"disk" description:"resource type" yaml:"type" toml:"type" json:"type"`
	MemWarn           float64 `short:"m" long:"mwarn" value-name:"PERCENT" description:"WARNING % of mem usage vs high watermark" yaml:"mem_warn" toml:"mem_warn" json:"mem_warn"`
	MemCrit           float64 `short:"c" long:"mcrit" value-name:"PERCENT" description:"CRITICAL % of mem usage vs high watermark" yaml:"mem_crit" toml:"mem_crit" json:"mem_crit"`
	FDWarn            float64 `short:"f" long:"fwarn" value-name:"PERCENT" description:"WARNING % of file descriptor usage vs high watermark" yaml:"fd_warn" toml:"fd_warn" json:"fd_warn"`
	FDCrit            float64 `short:"F" long:"fcrit" value-name:"PERCENT" description:"CRITICAL % of file descriptor usage vs high watermark" yaml:"fd_crit" toml:"fd_crit" json:"fd_crit"`
	SocketWarn        float64 `short:"s" long:"swarn" value-name:"PERCENT" description:"WARNING % of socket usage vs high watermark" yaml:"socket_warn" toml:"socket_warn" json:"socket_warn"`
	SocketCrit        float64 `short:"S" long:"scrit" value-name:"PERCENT" description:"CRITICAL % of socket usage vs high watermark" yaml:"socket_crit" toml:"socket_crit" json:"socket_crit"`
	ProcWarn          float64 `short:"e" long:"pwarn" value-name:"PERCENT" description:"WARNING % of proc usage vs high watermark" yaml:"proc_warn" toml:"proc_warn" json:"proc_warn"`
	ProcCrit          float64 `short:"E" long:"pcrit" value-name:"PERCENT" description:"CRITICAL % of proc usage vs high watermark" yaml:"proc_crit" toml:"proc_crit" json:"proc_crit"`
	DiskWarn          float64 `short:"d" long:"dwarn" value-name:"PERCENT" description:"WARNING % of disk usage vs high watermark" yaml:"disk_warn" toml:"disk_warn" json:"disk_warn"`
	DiskCrit          float64 `short:"D" long:"dcrit" value-name:"PERCENT" description:"CRITICAL % of disk usage vs high watermark" yaml:"disk_crit" toml:"disk_crit" json:"disk_crit"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	client *rabbitmq.Client
	usage  resource
}

// resource describes how a usage percentage is derived from a node record.
type resource struct {
	label      string
	warn, crit float64
	ratio      func(n rabbitmq.Node) (used, total int64)
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	var err error
	if c.usage, err = c.resource(); err != nil {
		return err
	}

	client, err := rabbitmq.New(c.HTTPConfig())
	if err != nil {
		return fmt.Errorf("init RabbitMQ client: %v", err)
	}
	c.client = client

	return nil
}

func (c *Check) resource() (resource, error) {
	switch c.Type {
	case typeMem:
		return resource{"Memory", c.MemWarn, c.MemCrit, func(n rabbitmq.Node) (int64, int64) {
			return n.MemUsed, n.MemLimit
		}}, nil
	case typeSocket:
		return resource{"Socket", c.SocketWarn, c.SocketCrit, func(n rabbitmq.Node) (int64, int64) {
			return n.SocketsUsed, n.SocketsTotal
		}}, nil
	case typeFD:
		return resource{"File Descriptor", c.FDWarn, c.FDCrit, func(n rabbitmq.Node) (int64, int64) {
			return n.FDUsed, n.FDTotal
		}}, nil
	case typeProc:
		return resource{"Proc", c.ProcWarn, c.ProcCrit, func(n rabbitmq.Node) (int64, int64) {
			return n.ProcUsed, n.ProcTotal
		}}, nil
	case typeDisk:
		// the free space limit against what is left
		return resource{"Disk", c.DiskWarn, c.DiskCrit, func(n rabbitmq.Node) (int64, int64) {
			return n.DiskFreeLimit, n.DiskFree
		}}, nil
	case "":
		return resource{}, errors.New("type: not set, expected one of mem, socket, fd, proc, disk")
	default:
		return resource{}, fmt.Errorf("type: unknown '%s', expected one of mem, socket, fd, proc, disk", c.Type)
	}
}

func (c *Check) Check(ctx context.Context) status.Result {
	nodes, err := c.client.Nodes(ctx)
	if err != nil {
		return status.NewUnknown(err.Error())
	}
	if len(nodes) == 0 {
		return status.NewUnknown("no nodes reported by the management API")
	}

	node := nodes[0]
	used, total := c.usage.ratio(node)
	pct := float64(used) / float64(total) * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return status.Newf(status.Unknown, "%s usage unavailable: node '%s' reports a zero total", c.usage.label, node.Name)
	}

	s := strconv.FormatFloat(pct, 'f', 2, 64)
	v, _ := strconv.ParseFloat(s, 64)
	c.Debugf("node '%s' %s usage %s%% (used %d, total %d)", node.Name, c.Type, s, used, total)

	switch {
	case v >= c.usage.crit:
		return status.Newf(status.Critical, "%s usage is critical: %s%%", c.usage.label, s)
	case v >= c.usage.warn:
		return status.Newf(status.Warning, "%s usage is at warning: %s%%", c.usage.label, s)
	default:
		return status.Newf(status.OK, "%s usage is at: %s%%", c.usage.label, s)
	}
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
