package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	Feed  *http.Client // RESO feed requests, bearer-authenticated
	Media *http.Client // asset downloads, longer timeout
}

func NewClients(token string) *Clients {
	feed := &http.Client{
		Timeout: 30 * time.Second,
	}
	if token != "" {
		feed.Transport = &bearerTransport{token: token, base: http.DefaultTransport}
	}

	return &Clients{
		Feed:  feed,
		Media: &http.Client{Timeout: 60 * time.Second},
	}
}

// bearerTransport injects the feed's bearer token on every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	clone.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(clone)
}
