// Package fasttransport implements a remote.Transport on top of
// github.com/valyala/fasthttp.
package fasttransport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"

	"github.com/wanmail/remote"
)

// Transport sends commands through a fasthttp.Client. Redirects are followed
// by the transport, as GET requests without a body.
type Transport struct {
	base    *url.URL
	client  *fasthttp.Client
	timeout time.Duration
}

// Option configures a Transport.
type Option func(*Transport) error

// WithTimeout bounds the duration of every exchange.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) error {
		if d < 0 {
			return &remote.ConfigurationError{Msg: fmt.Sprintf("negative timeout %s", d)}
		}
		t.timeout = d
		return nil
	}
}

// WithProxy dials the server through an HTTP or SOCKS5 proxy.
func WithProxy(proxyURL string) Option {
	return func(t *Transport) error {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Host == "" {
			return &remote.ConfigurationError{Msg: fmt.Sprintf("invalid proxy URL %q", proxyURL)}
		}
		switch u.Scheme {
		case "socks5":
			t.client.Dial = fasthttpproxy.FasthttpSocksDialer(proxyURL)
		case "http", "":
			addr := u.Host
			if u.User != nil {
				addr = u.User.String() + "@" + addr
			}
			t.client.Dial = fasthttpproxy.FasthttpHTTPDialer(addr)
		default:
			return &remote.ConfigurationError{Msg: fmt.Sprintf("unsupported proxy scheme %q", u.Scheme)}
		}
		return nil
	}
}

// New returns a transport sending requests relative to serverURL.
func New(serverURL *url.URL, opts ...Option) (*Transport, error) {
	if serverURL == nil || serverURL.Scheme == "" || serverURL.Host == "" {
		return nil, &remote.ConfigurationError{Msg: fmt.Sprintf("server URL %v must be absolute", serverURL)}
	}
	t := &Transport{
		base: serverURL,
		client: &fasthttp.Client{
			Dial:                   fasthttp.Dial,
			DisablePathNormalizing: true,
		},
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Factory returns a remote.TransportFactory creating Transports with the
// given options.
func Factory(opts ...Option) remote.TransportFactory {
	return func(serverURL *url.URL) (remote.Transport, error) {
		return New(serverURL, opts...)
	}
}

type reply struct {
	code        int
	contentType string
	location    string
	body        []byte
}

// Call implements remote.Transport.
func (t *Transport) Call(method, path string, body interface{}) (*remote.Response, error) {
	u := remote.ResolveURL(t.base, path)
	data, err := remote.EncodeBody(method, body)
	if err != nil {
		return nil, err
	}

	for redirects := 0; ; redirects++ {
		r, err := t.do(method, u, data)
		if err != nil {
			return nil, &remote.TransportError{Op: method, URL: u, Err: err}
		}
		if !remote.IsRedirect(r.code) {
			return remote.DecodeReply(method, u, r.code, r.contentType, r.body)
		}
		if redirects >= remote.MaxRedirects {
			return nil, &remote.TransportError{Op: method, URL: u, Err: fmt.Errorf("too many redirects (%d)", redirects)}
		}
		next, err := remote.NormalizeURL(r.location, u)
		if err != nil {
			return nil, &remote.TransportError{Op: method, URL: u, Err: err}
		}
		u, method, data = next, http.MethodGet, nil
	}
}

// logRequest is replaced in tests.
var logRequest = remote.LogRequest

func (t *Transport) do(method, u string, data []byte) (*reply, error) {
	logRequest(method, u, data)
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(res)

	req.SetRequestURI(u)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", remote.JSONType)
	if data != nil {
		req.Header.SetContentType(remote.ContentType)
		req.SetBody(data)
	}

	var err error
	if t.timeout > 0 {
		err = t.client.DoTimeout(req, res, t.timeout)
	} else {
		err = t.client.Do(req, res)
	}
	if err != nil {
		return nil, err
	}

	// res is recycled on return.
	return &reply{
		code:        res.StatusCode(),
		contentType: strings.TrimSpace(string(res.Header.ContentType())),
		location:    string(res.Header.Peek("Location")),
		body:        append([]byte(nil), res.Body()...),
	}, nil
}

// Close implements remote.Transport.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
