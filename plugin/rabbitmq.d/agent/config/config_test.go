// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/confopt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection(t *testing.T) {
	conn := NewConnection()

	assert.Equal(t, "localhost", conn.Host)
	assert.Equal(t, 15672, conn.Port)
	assert.Equal(t, "guest", conn.Username)
	assert.Equal(t, "guest", conn.Password)
	assert.Equal(t, 10*time.Second, conn.Timeout.Duration())
}

func TestConnection_HTTPConfig(t *testing.T) {
	tests := map[string]struct {
		conn    Connection
		wantURL string
	}{
		"http": {
			conn:    NewConnection(),
			wantURL: "http://localhost:15672",
		},
		"https": {
			conn: func() Connection {
				c := NewConnection()
				c.SSL = true
				c.Port = 15671
				return c
			}(),
			wantURL: "https://localhost:15671",
		},
		"ipv6 host": {
			conn: func() Connection {
				c := NewConnection()
				c.Host = "::1"
				return c
			}(),
			wantURL: "http://[::1]:15672",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := test.conn.HTTPConfig()

			assert.Equal(t, test.wantURL, cfg.URL)
			assert.Equal(t, test.conn.Username, cfg.Username)
			assert.Equal(t, test.conn.Password, cfg.Password)
			assert.Equal(t, test.conn.Timeout, cfg.Timeout)
		})
	}
}

func TestConnection_HTTPConfig_TLS(t *testing.T) {
	conn := NewConnection()
	conn.SSL = true
	conn.VerifySSLOff = true
	conn.CAFile = "/etc/ssl/ca.pem"

	cfg := conn.HTTPConfig()

	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "/etc/ssl/ca.pem", cfg.TLSCA)
}

func TestConnection_Resolve(t *testing.T) {
	tests := map[string]struct {
		prepare  func() Connection
		wantUser string
		wantPass string
		wantErr  bool
	}{
		"nothing to resolve": {
			prepare:  NewConnection,
			wantUser: "guest",
			wantPass: "guest",
		},
		"user alias": {
			prepare: func() Connection {
				c := NewConnection()
				c.User = "alias"
				return c
			},
			wantUser: "alias",
			wantPass: "guest",
		},
		"ini overrides credentials": {
			prepare: func() Connection {
				c := NewConnection()
				c.User = "alias"
				c.Password = "cli-pass"
				c.Ini = "testdata/auth.ini"
				return c
			},
			wantUser: "ini-user",
			wantPass: "ini-pass",
		},
		"ini without auth section": {
			prepare: func() Connection {
				c := NewConnection()
				c.Ini = "testdata/noauth.ini"
				return c
			},
			wantErr: true,
		},
		"ini file not found": {
			prepare: func() Connection {
				c := NewConnection()
				c.Ini = "testdata/missing.ini"
				return c
			},
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			conn := test.prepare()

			err := conn.Resolve()

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantUser, conn.Username)
			assert.Equal(t, test.wantPass, conn.Password)
		})
	}
}

func TestLoadFile(t *testing.T) {
	want := Connection{
		Host:     "rabbit.example.com",
		Port:     15671,
		Username: "monitor",
		Password: "secret",
		SSL:      true,
		CAFile:   "/etc/ssl/rabbit-ca.pem",
		Timeout:  confopt.Duration(5 * time.Second),
	}

	tests := map[string]struct {
		path    string
		want    Connection
		wantErr bool
	}{
		"yaml":              {path: "testdata/conn.yaml", want: want},
		"toml":              {path: "testdata/conn.toml", want: want},
		"unknown extension": {path: "testdata/auth.ini", wantErr: true},
		"not found":         {path: "testdata/missing.yaml", wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			conn := NewConnection()

			err := LoadFile(test.path, &conn)

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, conn)
		})
	}
}

func TestLoadFile_KeepsUnsetKeys(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "conn-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("host: partial.example.com\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	conn := NewConnection()
	require.NoError(t, LoadFile(f.Name(), &conn))

	assert.Equal(t, "partial.example.com", conn.Host)
	assert.Equal(t, DefaultPort, conn.Port)
	assert.Equal(t, DefaultUsername, conn.Username)
	assert.Equal(t, DefaultTimeout, conn.Timeout)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "RABBITMQ_CONFIG_TEST_HOST"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	require.NoError(t, LoadEnvFile("testdata/conn.env"))
	assert.Equal(t, "env-host", os.Getenv(key))

	t.Setenv(key, "preset")
	require.NoError(t, LoadEnvFile("testdata/conn.env"))
	assert.Equal(t, "preset", os.Getenv(key))

	assert.Error(t, LoadEnvFile("testdata/missing.env"))
}
