// SPDX-License-Identifier: GPL-3.0-or-later

package amqpalive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/tlscfg"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
)

func init() {
	check.Register("check-rabbitmq-amqp-alive", check.Creator{
		Title:       "CheckRabbitAMQPAlive",
		Description: "Checks that RabbitMQ accepts AMQP 0-9-1 connections.",
		Create:      func() check.Check { return New() },
	})
}

const defaultAMQPPort = 5672

func New() *Check {
	conn := config.NewConnection()
	conn.Port = defaultAMQPPort

	return &Check{
		Config: Config{
			Connection: conn,
			Vhost:      "/",
		},
	}
}

type Config struct {
	config.Connection `group:"Connection Options" yaml:",inline" json:""`
	Vhost             string `short:"v" long:"vhost" description:"RabbitMQ vhost" yaml:"vhost" toml:"vhost" json:"vhost"`
	TLSCert           string `long:"tls-cert" value-name:"CERT" description:"TLS certificate to use when connecting" yaml:"tls_cert,omitempty" toml:"tls_cert,omitempty" json:"tls_cert"`
	TLSKey            string `long:"tls-key" value-name:"KEY" description:"TLS private key to use when connecting" yaml:"tls_key,omitempty" toml:"tls_key,omitempty" json:"tls_key"`
	NoVerifyPeer      bool   `long:"no-verify-peer" description:"disable peer verification" yaml:"no_verify_peer,omitempty" toml:"no_verify_peer,omitempty" json:"no_verify_peer"`
	Heartbeat         int    `long:"heartbeat" value-name:"SECONDS" description:"client heartbeat interval, 0 accepts the server's value" yaml:"heartbeat,omitempty" toml:"heartbeat,omitempty" json:"heartbeat"`
}

type Check struct {
	check.Base
	Config `yaml:",inline" json:""`

	uri     amqp.URI
	amqpCfg amqp.Config
}

func (c *Check) Configuration() any {
	return &c.Config
}

func (c *Check) Init(context.Context) error {
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat: must not be negative, got %d", c.Heartbeat)
	}

	c.uri = amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Vhost:    c.Vhost,
	}
	c.amqpCfg = amqp.Config{
		Vhost:     c.Vhost,
		Heartbeat: time.Duration(c.Heartbeat) * time.Second,
		Dial:      amqp.DefaultDial(c.Timeout.Duration()),
	}

	if c.SSL {
		c.uri.Scheme = "amqps"
		tlsConfig, err := tlscfg.NewTLSConfig(tlscfg.TLSConfig{
			TLSCA:              c.CAFile,
			TLSCert:            c.TLSCert,
			TLSKey:             c.TLSKey,
			InsecureSkipVerify: c.NoVerifyPeer || c.VerifySSLOff,
		})
		if err != nil {
			return fmt.Errorf("init TLS config: %v", err)
		}
		c.amqpCfg.TLSClientConfig = tlsConfig
	}

	return nil
}

func (c *Check) Check(ctx context.Context) status.Result {
	c.Debugf("dialing %s://%s vhost '%s'", c.uri.Scheme, c.Address(c.Port), c.Vhost)

	conn, err := dial(ctx, c.uri.String(), c.amqpCfg)
	if err != nil {
		return classify(err)
	}
	if err := conn.Close(); err != nil {
		c.Debugf("close connection: %v", err)
	}

	return status.NewOK("RabbitMQ server is alive")
}

func (c *Check) Cleanup(context.Context) {}

// dial opens an AMQP connection and gives up when ctx is done.
func dial(ctx context.Context, url string, cfg amqp.Config) (*amqp.Connection, error) {
	type result struct {
		conn *amqp.Connection
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		conn, err := amqp.DialConfig(url, cfg)
		ch <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}

func classify(err error) status.Result {
	var amqpErr *amqp.Error
	var opErr *net.OpError

	switch {
	case errors.Is(err, amqp.ErrCredentials),
		errors.As(err, &amqpErr) && amqpErr.Code == amqp.AccessRefused:
		return status.NewCritical("Possible authentication failure")
	case errors.As(err, &opErr):
		return status.NewCritical("TCP connection refused")
	default:
		return status.NewUnknown(err.Error())
	}
}
