package services

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// NewHTTPClient returns an [http.Client] that sends token as a bearer token and
// waits on a client-side limiter of rps requests per second (no limit when rps <= 0).
//
// Token acquisition and refresh happen elsewhere; an empty token sends no Authorization header.
func NewHTTPClient(ctx context.Context, token string, rps float64) *http.Client {
	var base http.RoundTripper = http.DefaultTransport
	if rps > 0 {
		base = &RateLimitedTransport{
			Base:    base,
			Limiter: rate.NewLimiter(rate.Limit(rps), 1),
		}
	}

	if token == "" {
		return &http.Client{Transport: base}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src)
}

// RateLimitedTransport delays each request until Limiter admits it.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
