// Package api has one typed function per REST endpoint of the social API.
package api

import (
	"net/url"
	"strconv"

	"socialnet/internal/entities"
	"socialnet/internal/httpclient"
)

// API groups the endpoint functions around one HTTP client.
type API struct {
	http *httpclient.Client
}

// New returns the endpoint set bound to c.
func New(c *httpclient.Client) *API {
	return &API{http: c}
}

// HTTP exposes the underlying client.
func (a *API) HTTP() *httpclient.Client { return a.http }

func pageQuery(p entities.PageRequest) url.Values {
	q := url.Values{}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}
	return q
}

func id(v int64) string { return strconv.FormatInt(v, 10) }
