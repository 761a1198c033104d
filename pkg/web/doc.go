// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package web holds the HTTP plumbing of the management API client.

HTTPConfig is what a check hands to the client. Requests are built with NewRequest,
the client with NewHTTPClient, and replies are read with DoHTTP:

	req, err := web.NewRequest(ctx, cfg.RequestConfig, "/api/queues")
	var queues []queue
	err = web.DoHTTP(client).RequestJSON(req, &queues)
*/
package web
