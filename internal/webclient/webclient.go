// Package webclient is a thin transport abstraction between the provider
// clients and net/http. Both the reputation client and the generative-text
// client issue requests through it, which keeps test doubles trivial.
package webclient

import (
	"context"
	"net/http"
	"time"
)

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
