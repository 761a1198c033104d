// SPDX-License-Identifier: GPL-3.0-or-later

package alive

import (
	"context"
	"fmt"

	"github.com/blang/semver/v4"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-alive", check.Creator{
		Title:       "CheckRabbitMQAlive",
		Description: "Checks that the RabbitMQ server is alive using the management API health endpoints.",
		Create:      func() check.Check { return New() },
	})
}

// The aliveness-test endpoint was removed in 4.0.
var versionNoAlivenessTest = semver.MustParse("4.0.0")

func New() *Check {
	return &Check{
		Config: Config{
			Connection: config.NewConnection(),
			Vhost:      "/",
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"RabbitMQ vhost to run the aliveness test against" yaml:"vhost" toml:"vhost" json:"vhost"`
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
	client, err := rabbitmq.New(c.HTTPConfig())
	if err != nil {
		return fmt.Errorf("init RabbitMQ client: %v", err)
	}
	c.client = client
	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	legacy, err := c.hasAlivenessTest(ctx)
	if err != nil {
		return check.FromError(err)
	}

	var reply *rabbitmq.StatusReply
	if legacy {
		c.Debugf("running aliveness test on vhost '%s'", c.Vhost)
		reply, err = c.client.AlivenessTest(ctx, c.Vhost)
	} else {
		c.Debugf("running virtual hosts health check")
		reply, err = c.client.VirtualHostsHealth(ctx)
	}
	if err != nil {
		return check.FromError(err)
	}

	if !reply.OK() {
		if reply.Reason != "" {
			return status.NewCritical(reply.Reason)
		}
		return status.Newf(status.Critical, "RabbitMQ server reported status '%s'", reply.Status)
	}
	return status.NewOK("RabbitMQ server is alive")
}

// hasAlivenessTest reports whether the broker still serves the aliveness-test endpoint.
// Only a refused connection is an error: when the version cannot be determined the
// health check endpoint is used.
func (c *Check) hasAlivenessTest(ctx context.Context) (bool, error) {
	overview, err := c.client.Overview(ctx)
	if err != nil {
		if rabbitmq.IsConnRefused(err) {
			return false, err
		}
		c.Debugf("broker version lookup failed: %v", err)
		return false, nil
	}

	ver, err := semver.ParseTolerant(overview.RabbitMQVersion)
	if err != nil {
		c.Debugf("broker version '%s': %v", overview.RabbitMQVersion, err)
		return false, nil
	}
	c.Debugf("broker version %s", ver)

	return ver.LT(versionNoAlivenessTest), nil
}

func (c *Check) Cleanup(context.Context) {
	if c.client != nil {
		c.client.Close()
	}
}
