// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/confopt"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/tlscfg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	client, err := NewHTTPClient(ClientConfig{Timeout: confopt.Duration(time.Second * 5)})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, client.Timeout)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, tr.TLSClientConfig)
	assert.Equal(t, 5*time.Second, tr.TLSHandshakeTimeout)
	assert.NotNil(t, tr.Proxy)
}

func TestNewHTTPClient_RefusesRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/overview" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(ClientConfig{Timeout: confopt.Duration(time.Second)})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/api/overview")
	if resp != nil {
		_ = resp.Body.Close()
	}
	assert.ErrorIs(t, err, ErrRedirectAttempted)
}

func TestNewHTTPClient_TLS(t *testing.T) {
	client, err := NewHTTPClient(ClientConfig{TLSConfig: tlscfg.TLSConfig{InsecureSkipVerify: true}})
	require.NoError(t, err)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, tr.TLSClientConfig)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)

	_, err = NewHTTPClient(ClientConfig{TLSConfig: tlscfg.TLSConfig{TLSCA: "/nonexistent/ca.pem"}})
	assert.Error(t, err)
}
