// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/confopt"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/tlscfg"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/web"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 15672
	DefaultUsername = "guest"
	DefaultPassword = "guest"
	DefaultTimeout  = confopt.Duration(time.Second * 10)
)

// Connection holds the broker connection settings shared by all checks.
type Connection struct {
	Host         string           `long:"host" env:"RABBITMQ_HOST" description:"RabbitMQ host" yaml:"host" toml:"host" json:"host"`
	Port         int              `short:"P" long:"port" env:"RABBITMQ_PORT" description:"RabbitMQ port" yaml:"port" toml:"port" json:"port"`
	Username     string           `short:"u" long:"username" env:"RABBITMQ_USERNAME" description:"RabbitMQ username" yaml:"username" toml:"username" json:"username"`
	User         string           `long:"user" hidden:"true" description:"Alias for --username" yaml:"-" toml:"-" json:"-"`
	Password     string           `short:"p" long:"password" env:"RABBITMQ_PASSWORD" description:"RabbitMQ password" yaml:"password" toml:"password" json:"password"`
	SSL          bool             `long:"ssl" description:"Enable SSL for connection to the API" yaml:"ssl" toml:"ssl" json:"ssl"`
	VerifySSLOff bool             `long:"verify_ssl_off" description:"Do not check validity of SSL cert" yaml:"verify_ssl_off" toml:"verify_ssl_off" json:"verify_ssl_off"`
	CAFile       string           `long:"ssl_ca_file" description:"Path to SSL CA .crt" yaml:"ssl_ca_file" toml:"ssl_ca_file" json:"ssl_ca_file"`
	Timeout      confopt.Duration `long:"timeout" description:"Request timeout (Go duration or seconds)" yaml:"timeout" toml:"timeout" json:"timeout"`
	Ini          string           `short:"i" long:"ini" description:"Configuration ini file with an [auth] section" yaml:"ini" toml:"ini" json:"ini"`
}

// NewConnection returns Connection with the default settings.
func NewConnection() Connection {
	return Connection{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Username: DefaultUsername,
		Password: DefaultPassword,
		Timeout:  DefaultTimeout,
	}
}

// Conn gives the runner access to the connection settings of any check config that embeds Connection.
func (c *Connection) Conn() *Connection { return c }

// Resolve applies the --user alias and the ini [auth] credentials.
func (c *Connection) Resolve() error {
	if c.User != "" {
		c.Username = c.User
	}
	if c.Ini == "" {
		return nil
	}

	path, err := homedir.Expand(c.Ini)
	if err != nil {
		return fmt.Errorf("expand ini path '%s': %v", c.Ini, err)
	}

	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load ini file '%s': %v", path, err)
	}

	sec, err := f.GetSection("auth")
	if err != nil {
		return fmt.Errorf("ini file '%s': %v", path, err)
	}

	c.Username = sec.Key("username").String()
	c.Password = sec.Key("password").String()

	return nil
}

// Address returns host:port for the given port.
func (c Connection) Address(port int) string {
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// HTTPConfig builds the management API client settings.
func (c Connection) HTTPConfig() web.HTTPConfig {
	scheme := "http"
	if c.SSL {
		scheme = "https"
	}

	return web.HTTPConfig{
		RequestConfig: web.RequestConfig{
			URL:      fmt.Sprintf("%s://%s", scheme, c.Address(c.Port)),
			Username: c.Username,
			Password: c.Password,
		},
		ClientConfig: web.ClientConfig{
			Timeout: c.Timeout,
			TLSConfig: tlscfg.TLSConfig{
				TLSCA:              c.CAFile,
				InsecureSkipVerify: c.VerifySSLOff,
			},
		},
	}
}
