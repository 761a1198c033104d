// SPDX-License-Identifier: GPL-3.0-or-later

// Package rabbitmqtest provides a fake management API for tests.
package rabbitmqtest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/confopt"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/web"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
)

type Response struct {
	Status int
	Body   []byte
}

func OK(body []byte) Response { return Response{Status: http.StatusOK, Body: body} }

func JSON(status int, body string) Response { return Response{Status: status, Body: []byte(body)} }

// MustReadFile reads a fixture and panics on error.
func MustReadFile(path string) []byte {
	bs, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return bs
}

// Server answers requests by escaped URL path. Unknown paths get 404 with an API error body.
type Server struct {
	*httptest.Server

	mux      sync.Mutex
	routes   map[string]Response
	requests []string
	users    []string
}

func NewServer(routes map[string]Response) *Server {
	s := &Server{routes: routes}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()
	user, _, _ := r.BasicAuth()

	s.mux.Lock()
	s.requests = append(s.requests, path)
	s.users = append(s.users, user)
	resp, ok := s.routes[path]
	s.mux.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Object Not Found","reason":"Not Found"}`))
		return
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// Requests returns the escaped paths requested so far.
func (s *Server) Requests() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string(nil), s.requests...)
}

// Users returns the basic auth user of every request so far.
func (s *Server) Users() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string(nil), s.users...)
}

func (s *Server) HTTPConfig() web.HTTPConfig {
	return web.HTTPConfig{
		RequestConfig: web.RequestConfig{
			URL:      s.URL,
			Username: "guest",
			Password: "guest",
		},
		ClientConfig: web.ClientConfig{
			Timeout: confopt.Duration(time.Second * 2),
		},
	}
}

// ClosedURL returns the URL of a server that no longer listens.
func ClosedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

// Connection returns default connection settings pointing at the server.
func (s *Server) Connection() config.Connection {
	return ConnectionFor(s.URL)
}

// ClosedConnection returns connection settings of a server that no longer listens.
func ClosedConnection() config.Connection {
	return ConnectionFor(ClosedURL())
}

// ConnectionFor returns default connection settings with host and port taken from rawURL.
func ConnectionFor(rawURL string) config.Connection {
	conn := config.NewConnection()
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		panic(err)
	}
	conn.Host = host
	if conn.Port, err = strconv.Atoi(port); err != nil {
		panic(err)
	}
	conn.Timeout = confopt.Duration(time.Second * 2)
	return conn
}
