// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/buildinfo"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/executable"
)

// RequestConfig says where the management API lives and who is asking.
type RequestConfig struct {
	// URL is the API base, e.g. http://localhost:15672. A path prefix is kept
	// for brokers published behind a reverse proxy.
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username,omitempty" json:"username"`
	Password string `yaml:"password,omitempty" json:"password"`
}

var userAgent = fmt.Sprintf("sensu-plugins-rabbitmq %s/%s", executable.Name, buildinfo.Version)

// NewRequest builds a GET request for urlPath below cfg.URL, bound to ctx.
// Escaped segments of urlPath (a vhost "/" is "%2F") reach the wire unchanged.
func NewRequest(ctx context.Context, cfg RequestConfig, urlPath string) (*http.Request, error) {
	u := cfg.URL
	if urlPath != "" {
		v, err := url.JoinPath(cfg.URL, urlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to join URL path: %w", err)
		}
		u = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if cfg.Username != "" || cfg.Password != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	return req, nil
}
