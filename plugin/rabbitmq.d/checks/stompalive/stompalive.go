// SPDX-License-Identifier: GPL-3.0-or-later

package stompalive

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/google/uuid"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/tlscfg"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

func init() {
	check.Register("check-rabbitmq-stomp-alive", check.Creator{
		Title:       "CheckRabbitStomp",
		Description: "Checks that RabbitMQ routes a STOMP message through a test queue.",
		Create:      func() check.Check { return New() },
	})
}

const (
	defaultSTOMPPort = 61613
	probeBody        = "STOMP Alive Test"
	probeHeader      = "x-alive-probe-id"
)

func New() *Check {
	conn := config.NewConnection()
	conn.Port = defaultSTOMPPort

	return &Check{
		Config: Config{
			Connection: conn,
			Vhost:      "/",
			Queue:      "aliveness-test",
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"RabbitMQ vhost sent as the STOMP host header" yaml:"vhost" toml:"vhost" json:"vhost"`
	Queue             string `short:"q" long:"queue" description:"queue to post a message to and receive from" yaml:"queue" toml:"queue" json:"queue"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	tlsConfig *tls.Config
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	if c.Queue == "" {
		return errors.New("queue: not set")
	}
	if !c.SSL {
		return nil
	}

	tlsConfig, err := tlscfg.NewTLSConfig(tlscfg.TLSConfig{
		TLSCA:              c.CAFile,
		InsecureSkipVerify: c.VerifySSLOff,
	})
	if err != nil {
		return fmt.Errorf("init TLS config: %v", err)
	}
	if tlsConfig == nil {
		tlsConfig = &tls.Config{}
	}
	tlsConfig.ServerName = c.Host
	c.tlsConfig = tlsConfig

	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	if err := c.probe(ctx); err != nil {
		return classify(err)
	}
	return status.NewOK("RabbitMQ server is alive")
}

func (c *Check) Cleanup(context.Context) {}

// probe publishes a tagged message to the test queue and waits until it comes back.
// The whole exchange is bounded by the connection timeout.
func (c *Check) probe(ctx context.Context) error {
	netConn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = netConn.Close() }()

	if d := c.Timeout.Duration(); d > 0 {
		_ = netConn.SetDeadline(time.Now().Add(d))
	}
	stop := context.AfterFunc(ctx, func() { _ = netConn.Close() })
	defer stop()

	conn, err := stomp.Connect(netConn,
		stomp.ConnOpt.Login(c.Username, c.Password),
		stomp.ConnOpt.Host(c.Vhost),
		stomp.ConnOpt.HeartBeat(0, 0),
	)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Disconnect() }()

	dest := "/queue/" + c.Queue
	sub, err := conn.Subscribe(dest, stomp.AckAuto)
	if err != nil {
		return fmt.Errorf("subscribe to '%s': %w", dest, err)
	}

	id := uuid.NewString()
	c.Debugf("sending probe %s to '%s'", id, dest)
	if err := conn.Send(dest, "text/plain", []byte(probeBody), stomp.SendOpt.Header(probeHeader, id)); err != nil {
		return fmt.Errorf("send to '%s': %w", dest, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.C:
			if !ok {
				return fmt.Errorf("subscription to '%s' closed", dest)
			}
			if msg.Err != nil {
				return msg.Err
			}
			if msg.Header.Get(probeHeader) == id {
				return nil
			}
			// left over from an earlier run
			c.Debugf("skipping stale message on '%s'", dest)
		}
	}
}

func (c *Check) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.Timeout.Duration()}
	addr := c.Address(c.Port)

	if c.tlsConfig == nil {
		return dialer.DialContext(ctx, "tcp", addr)
	}
	td := &tls.Dialer{NetDialer: dialer, Config: c.tlsConfig}
	return td.DialContext(ctx, "tcp", addr)
}

func classify(err error) status.Result {
	var brokerErr stomp.Error
	var brokerErrPtr *stomp.Error

	switch {
	case rabbitmq.IsConnRefused(err):
		return status.NewCritical("TCP connection refused")
	case errors.As(err, &brokerErr):
		return status.Newf(status.Critical, "Error from broker. Check auth details? %s", brokerErr.Message)
	case errors.As(err, &brokerErrPtr):
		return status.Newf(status.Critical, "Error from broker. Check auth details? %s", brokerErrPtr.Message)
	default:
		return status.NewUnknown(err.Error())
	}
}
