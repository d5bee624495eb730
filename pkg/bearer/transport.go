// Package bearer provides an http.RoundTripper that attaches the current
// bearer token to outbound requests.
//
// The transport is a pure, synchronous request transform: it consults its
// token source at send time, and if a token is present it clones the request
// and sets the Authorization header on the clone. Requests are never
// mutated, blocked or swallowed, and the transport performs no I/O of its
// own beyond delegating to the base round tripper. Removing the token
// between two sends affects only the later request.
package bearer

import "net/http"

// TokenSource supplies the token to attach. Implementations must be cheap
// and non-blocking; the transport calls them on every request.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a plain function to a TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Transport attaches Authorization headers on the way out. The zero value is
// not usable; use New.
type Transport struct {
	source TokenSource
	base   http.RoundTripper
	header string
	prefix string
}

// Option configures the Transport.
type Option func(*Transport)

// WithBase sets the underlying round tripper. Defaults to
// http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithHeader overrides the header name. Defaults to Authorization.
func WithHeader(name string) Option {
	return func(t *Transport) {
		if name != "" {
			t.header = name
		}
	}
}

// WithPrefix overrides the credential prefix. Defaults to "Bearer ".
func WithPrefix(prefix string) Option {
	return func(t *Transport) {
		t.prefix = prefix
	}
}

// New creates a Transport reading tokens from source.
func New(source TokenSource, opts ...Option) *Transport {
	t := &Transport{
		source: source,
		base:   http.DefaultTransport,
		header: "Authorization",
		prefix: "Bearer ",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper. The token is read once per call;
// a request already carrying the header keeps its own value.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.source != nil {
		token = t.source.Token()
	}

	if token == "" || req.Header.Get(t.header) != "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set(t.header, t.prefix+token)
	return t.base.RoundTrip(clone)
}
