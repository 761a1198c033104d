// SPDX-License-Identifier: GPL-3.0-or-later

package web

// HTTPConfig bundles what a management API client needs: where and how to ask
// (RequestConfig) and how to connect (ClientConfig). Checks embed it inline so the
// fields stay flat in YAML.
type HTTPConfig struct {
	RequestConfig `yaml:",inline" json:""`
	ClientConfig  `yaml:",inline" json:""`
}
