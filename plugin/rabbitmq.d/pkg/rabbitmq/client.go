// SPDX-License-Identifier: GPL-3.0-or-later

package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"syscall"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/web"
)

// ErrEmptyResponse is returned when the API replies with an empty body.
var ErrEmptyResponse = errors.New("empty response")

// Client talks to the RabbitMQ management HTTP API.
type Client struct {
	httpClient *http.Client
	request    web.RequestConfig
}

func New(cfg web.HTTPConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("config: url not set")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("config: invalid url '%s': %v", cfg.URL, err)
	}

	httpClient, err := web.NewHTTPClient(cfg.ClientConfig)
	if err != nil {
		return nil, fmt.Errorf("init HTTP client: %v", err)
	}

	return &Client{httpClient: httpClient, request: cfg.RequestConfig}, nil
}

// Queues returns the queue listing in the order the broker reports it.
// A non-empty vhost limits the listing to that virtual host.
func (c *Client) Queues(ctx context.Context, vhost string) ([]Queue, error) {
	path := urlPathAPIQueues
	if vhost != "" {
		path += "/" + url.PathEscape(vhost)
	}

	var queues []Queue
	if err := c.getJSON(ctx, path, &queues); err != nil {
		return nil, err
	}
	return queues, nil
}

// QueuesRaw returns the queue listing as received.
func (c *Client) QueuesRaw(ctx context.Context) ([]byte, error) {
	return c.getRaw(ctx, urlPathAPIQueues)
}

// ExchangesRaw returns the exchange listing as received.
func (c *Client) ExchangesRaw(ctx context.Context) ([]byte, error) {
	return c.getRaw(ctx, urlPathAPIExchanges)
}

func (c *Client) Nodes(ctx context.Context) ([]Node, error) {
	var nodes []Node
	if err := c.getJSON(ctx, urlPathAPINodes, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := c.getJSON(ctx, urlPathAPIOverview, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// OverviewRaw returns the overview document as received.
func (c *Client) OverviewRaw(ctx context.Context) ([]byte, error) {
	return c.getRaw(ctx, urlPathAPIOverview)
}

// AlivenessTest declares a test queue in vhost, publishes to it and consumes the message.
// The endpoint was removed in RabbitMQ 4.0.
func (c *Client) AlivenessTest(ctx context.Context, vhost string) (*StatusReply, error) {
	var reply StatusReply
	path := urlPathAPIAlivenessTest + "/" + url.PathEscape(vhost)
	if err := c.getJSON(ctx, path, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// VirtualHostsHealth reports whether all virtual hosts are running on the target node.
// A failed check is returned as a reply, not an error.
func (c *Client) VirtualHostsHealth(ctx context.Context) (*StatusReply, error) {
	req, err := web.NewRequest(ctx, c.request, urlPathAPIHealthVhosts)
	if err != nil {
		return nil, fmt.Errorf("failed to create health check request: %w", err)
	}

	var reply StatusReply
	client := web.DoHTTP(c.httpClient).OnNokCode(func(resp *http.Response) (bool, error) {
		return resp.StatusCode == http.StatusServiceUnavailable, nil
	})
	if err := client.RequestJSON(req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

func (c *Client) getJSON(ctx context.Context, path string, in any) error {
	req, err := web.NewRequest(ctx, c.request, path)
	if err != nil {
		return fmt.Errorf("failed to create '%s' request: %w", path, err)
	}
	return c.webClient().RequestJSON(req, in)
}

func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := web.NewRequest(ctx, c.request, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create '%s' request: %w", path, err)
	}

	var bs []byte
	err = c.webClient().Request(req, func(body io.Reader) error {
		var err error
		bs, err = io.ReadAll(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("'%s': %w", req.URL, ErrEmptyResponse)
	}
	if !json.Valid(bs) {
		return nil, fmt.Errorf("'%s': response is not valid JSON", req.URL)
	}
	return bs, nil
}

func (c *Client) webClient() *web.Client {
	return web.DoHTTP(c.httpClient).OnNokCode(func(resp *http.Response) (bool, error) {
		var msg struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Error != "" {
			return false, fmt.Errorf("err '%s', reason '%s'", msg.Error, msg.Reason)
		}
		return false, nil
	})
}

// IsConnRefused reports whether err was caused by the broker refusing the TCP connection.
func IsConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
