// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client executes HTTP requests and decodes their responses.
type Client struct {
	client    *http.Client
	onNokCode func(resp *http.Response) (bool, error)
}

func DoHTTP(cl *http.Client) *Client {
	return &Client{client: cl}
}

// OnNokCode sets a handler for non-200 responses.
// It returns whether the body should still be parsed, and an optional error that wins over the default one.
func (c *Client) OnNokCode(fn func(resp *http.Response) (bool, error)) *Client {
	c.onNokCode = fn
	return c
}

func (c *Client) RequestJSON(req *http.Request, in any) error {
	return c.Request(req, func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(in); err != nil {
			return fmt.Errorf("error on decoding response from '%s': %w", req.URL, err)
		}
		return nil
	})
}

func (c *Client) Request(req *http.Request, parse func(body io.Reader) error) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error on HTTP request to '%s': %w", req.URL, err)
	}
	defer CloseBody(resp)

	if resp.StatusCode != http.StatusOK {
		if c.onNokCode == nil {
			return fmt.Errorf("'%s' returned HTTP status code: %d", req.URL, resp.StatusCode)
		}
		ok, err := c.onNokCode(resp)
		if err != nil {
			return fmt.Errorf("'%s' returned HTTP status code %d: %w", req.URL, resp.StatusCode, err)
		}
		if !ok {
			return fmt.Errorf("'%s' returned HTTP status code: %d", req.URL, resp.StatusCode)
		}
	}

	if parse == nil {
		return nil
	}

	return parse(resp.Body)
}

// CloseBody drains and closes the response body so the connection can be reused.
func CloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
