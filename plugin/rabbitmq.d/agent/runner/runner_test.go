// SPDX-License-Identifier: GPL-3.0-or-later

package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfig struct {
	config.Connection `group:"Connection Options" yaml:",inline"`
	Warn              int  `short:"w" long:"warn" description:"warning threshold" yaml:"warn" toml:"warn"`
	Fail              bool `long:"fail-init" description:"fail on init"`
}

type mockCheck struct {
	check.Base
	mockConfig

	result      status.Result
	initCalled  bool
	checkCalled bool
	cleanedUp   bool
}

func (m *mockCheck) Configuration() any { return &m.mockConfig }

func (m *mockCheck) Init(context.Context) error {
	m.initCalled = true
	if m.Fail {
		return errors.New("mock init error")
	}
	return nil
}

func (m *mockCheck) Check(context.Context) status.Result {
	m.checkCalled = true
	return m.result
}

func (m *mockCheck) Cleanup(context.Context) { m.cleanedUp = true }

func newRunner(kind check.Kind, chk *mockCheck) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := &Runner{
		Registry: check.Registry{
			"check-mock": {
				Title: "CheckMock",
				Kind:  kind,
				Create: func() check.Check {
					chk.Connection = config.NewConnection()
					return chk
				},
			},
		},
		Out:    &out,
		ErrOut: &errOut,
	}
	return r, &out, &errOut
}

func TestRunner_Run(t *testing.T) {
	tests := map[string]struct {
		kind     check.Kind
		args     []string
		result   status.Result
		wantCode int
		wantOut  string
	}{
		"ok check prints status": {
			result:   status.NewOK("all good"),
			wantCode: 0,
			wantOut:  "CheckMock OK: all good\n",
		},
		"critical check": {
			args:     []string{"-w", "3"},
			result:   status.NewCritical("Queues missing: orders"),
			wantCode: 2,
			wantOut:  "CheckMock CRITICAL: Queues missing: orders\n",
		},
		"empty message": {
			result:   status.NewWarning(""),
			wantCode: 1,
			wantOut:  "CheckMock WARNING\n",
		},
		"ok metric is silent": {
			kind:     check.KindMetric,
			result:   status.NewOK(""),
			wantCode: 0,
			wantOut:  "",
		},
		"failed metric prints status": {
			kind:     check.KindMetric,
			result:   status.NewCritical("connection refused"),
			wantCode: 2,
			wantOut:  "CheckMock CRITICAL: connection refused\n",
		},
		"init error": {
			args:     []string{"--fail-init"},
			wantCode: 3,
			wantOut:  "CheckMock UNKNOWN: mock init error\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			chk := &mockCheck{result: test.result}
			r, out, _ := newRunner(test.kind, chk)

			code := r.Run(context.Background(), "check-mock", test.args)

			assert.Equal(t, test.wantCode, code)
			assert.Equal(t, test.wantOut, out.String())
			assert.True(t, chk.initCalled)
			assert.NotNil(t, chk.Logger)
		})
	}
}

func TestRunner_Run_CleanupAfterCheck(t *testing.T) {
	chk := &mockCheck{result: status.NewOK("")}
	r, _, _ := newRunner(check.KindCheck, chk)

	r.Run(context.Background(), "check-mock", nil)

	assert.True(t, chk.checkCalled)
	assert.True(t, chk.cleanedUp)
}

func TestRunner_Run_UnknownCheck(t *testing.T) {
	r, out, errOut := newRunner(check.KindCheck, &mockCheck{})

	code := r.Run(context.Background(), "check-nope", nil)

	assert.Equal(t, 3, code)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "unknown check 'check-nope'")
}

func TestRunner_Run_ParseError(t *testing.T) {
	chk := &mockCheck{}
	r, out, _ := newRunner(check.KindCheck, chk)

	code := r.Run(context.Background(), "check-mock", []string{"--no-such-option"})

	assert.Equal(t, 3, code)
	assert.Contains(t, out.String(), "CheckMock UNKNOWN: ")
	assert.False(t, chk.initCalled)
}

func TestRunner_Run_Help(t *testing.T) {
	chk := &mockCheck{}
	r, out, _ := newRunner(check.KindCheck, chk)

	code := r.Run(context.Background(), "check-mock", []string{"--help"})

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "--warn")
	assert.Contains(t, out.String(), "Connection Options")
	assert.Contains(t, out.String(), "Plugin Options")
	assert.False(t, chk.initCalled)
}

func TestRunner_Run_Version(t *testing.T) {
	chk := &mockCheck{}
	r, out, _ := newRunner(check.KindCheck, chk)

	code := r.Run(context.Background(), "check-mock", []string{"--version"})

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "check-mock, version: ")
	assert.False(t, chk.initCalled)
}

func TestRunner_Run_ConnectionSources(t *testing.T) {
	tests := map[string]struct {
		env      map[string]string
		args     []string
		wantHost string
		wantPort int
		wantUser string
	}{
		"defaults": {
			wantHost: "localhost",
			wantPort: 15672,
			wantUser: "guest",
		},
		"config file": {
			args:     []string{"--config", "testdata/conn.yaml"},
			wantHost: "from-config.example.com",
			wantPort: 25672,
			wantUser: "guest",
		},
		"environment overrides config file": {
			env:      map[string]string{"RABBITMQ_HOST": "from-env"},
			args:     []string{"--config", "testdata/conn.yaml"},
			wantHost: "from-env",
			wantPort: 25672,
			wantUser: "guest",
		},
		"command line overrides environment": {
			env:      map[string]string{"RABBITMQ_HOST": "from-env"},
			args:     []string{"--host", "from-cli", "--config", "testdata/conn.yaml"},
			wantHost: "from-cli",
			wantPort: 25672,
			wantUser: "guest",
		},
		"user alias": {
			args:     []string{"--user", "monitor"},
			wantHost: "localhost",
			wantPort: 15672,
			wantUser: "monitor",
		},
		"ini overrides credentials": {
			args:     []string{"-u", "monitor", "--ini", "testdata/auth.ini"},
			wantHost: "localhost",
			wantPort: 15672,
			wantUser: "ini-user",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USERNAME", "RABBITMQ_PASSWORD"} {
				t.Setenv(k, "")
			}
			unsetEnv(t, "RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USERNAME", "RABBITMQ_PASSWORD")
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			chk := &mockCheck{result: status.NewOK("")}
			r, _, _ := newRunner(check.KindCheck, chk)

			code := r.Run(context.Background(), "check-mock", test.args)
			require.Equal(t, 0, code)

			assert.Equal(t, test.wantHost, chk.Host)
			assert.Equal(t, test.wantPort, chk.Port)
			assert.Equal(t, test.wantUser, chk.Username)
		})
	}
}

func TestRunner_Run_ConfigFileCheckOptions(t *testing.T) {
	tests := map[string]struct {
		args     []string
		wantWarn int
		wantHost string
	}{
		"yaml":                        {args: []string{"--config", "testdata/check.yaml"}, wantWarn: 7, wantHost: "yaml.example.com"},
		"toml":                        {args: []string{"--config", "testdata/check.toml"}, wantWarn: 9, wantHost: "toml.example.com"},
		"command line overrides file": {args: []string{"-w", "3", "--config", "testdata/check.yaml"}, wantWarn: 3, wantHost: "yaml.example.com"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"RABBITMQ_HOST", "RABBITMQ_PORT"} {
				t.Setenv(k, "")
			}
			unsetEnv(t, "RABBITMQ_HOST", "RABBITMQ_PORT")

			chk := &mockCheck{result: status.NewOK("")}
			r, _, _ := newRunner(check.KindCheck, chk)

			code := r.Run(context.Background(), "check-mock", test.args)
			require.Equal(t, 0, code)

			assert.Equal(t, test.wantWarn, chk.Warn)
			assert.Equal(t, test.wantHost, chk.Host)
			assert.Equal(t, 15672, chk.Port)
		})
	}
}

func TestRunner_Run_BadConfigFile(t *testing.T) {
	chk := &mockCheck{}
	r, out, _ := newRunner(check.KindCheck, chk)

	code := r.Run(context.Background(), "check-mock", []string{"--config", "testdata/missing.yaml"})

	assert.Equal(t, 3, code)
	assert.Contains(t, out.String(), "CheckMock UNKNOWN: config file: ")
}
