// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/confopt"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/tlscfg"
)

// ErrRedirectAttempted is returned instead of following a redirect. The management
// API answers in place, so a redirect points at a login page or a misrouted proxy.
var ErrRedirectAttempted = errors.New("redirect")

// ClientConfig controls how the management API is reached.
type ClientConfig struct {
	// Timeout bounds every phase of a request: dial, TLS handshake and reading
	// the reply. Zero means no limit.
	Timeout confopt.Duration `yaml:"timeout,omitempty" json:"timeout"`

	tlscfg.TLSConfig `yaml:",inline" json:""`
}

// NewHTTPClient returns a client honoring the HTTP_PROXY, HTTPS_PROXY and NO_PROXY
// environment variables.
func NewHTTPClient(cfg ClientConfig) (*http.Client, error) {
	tlsConfig, err := tlscfg.NewTLSConfig(cfg.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("error on creating TLS config: %v", err)
	}

	timeout := cfg.Timeout.Duration()

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
			TLSClientConfig:     tlsConfig,
			TLSHandshakeTimeout: timeout,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error { return ErrRedirectAttempted },
	}, nil
}
