package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultURL is the default server URL.
	DefaultURL = "http://127.0.0.1:4444/wd/hub"
	// JSONType is JSON content type.
	JSONType = "application/json"
	// ContentType is the content type of request bodies.
	ContentType = JSONType + "; charset=utf-8"
	// MaxRedirects is the maximum number of redirects to follow.
	MaxRedirects = 10
)

// Transport performs a single blocking HTTP exchange with the server.
// Implementations own their connections; a Bridge closes its Transport when
// the session ends.
type Transport interface {
	// Call sends one request. path is either absolute or relative to the
	// server URL; body, if not nil, is sent as JSON for methods that carry a
	// body.
	Call(method, path string, body interface{}) (*Response, error)
	// Close releases the transport's connections.
	Close() error
}

// TransportFactory creates the Transport a Bridge talks through.
type TransportFactory func(serverURL *url.URL) (Transport, error)

// HTTPTransport is the default Transport, built on net/http.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client

	// Set by options and applied to client once all options have run.
	timeout *time.Duration
	proxy   *url.URL
}

// HTTPOption configures an HTTPTransport. Options may be given in any order.
type HTTPOption func(*HTTPTransport) error

// WithHTTPClient makes the transport use a copy of c. Redirects are always
// handled by the transport itself. WithTimeout and WithProxy apply on top of
// c's settings.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) error {
		if c == nil {
			return configError("nil HTTP client")
		}
		client := *c
		t.client = &client
		return nil
	}
}

// WithTimeout bounds the duration of every exchange, redirects included.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTransport) error {
		if d < 0 {
			return configError("negative timeout %s", d)
		}
		t.timeout = &d
		return nil
	}
}

// WithProxy routes all requests through the given proxy. HTTP, HTTPS and
// SOCKS5 ("socks5://host:port") proxies are supported.
func WithProxy(proxyURL string) HTTPOption {
	return func(t *HTTPTransport) error {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Host == "" {
			return configError("invalid proxy URL %q", proxyURL)
		}
		t.proxy = u
		return nil
	}
}

// NewHTTPTransport returns a transport sending requests relative to
// serverURL.
func NewHTTPTransport(serverURL *url.URL, opts ...HTTPOption) (*HTTPTransport, error) {
	if serverURL == nil || serverURL.Scheme == "" || serverURL.Host == "" {
		return nil, configError("server URL %v must be absolute", serverURL)
	}
	t := &HTTPTransport{
		base:   serverURL,
		client: &http.Client{},
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if t.timeout != nil {
		t.client.Timeout = *t.timeout
	}
	if t.proxy != nil {
		var tr *http.Transport
		switch rt := t.client.Transport.(type) {
		case nil:
			tr = http.DefaultTransport.(*http.Transport).Clone()
		case *http.Transport:
			tr = rt.Clone()
		default:
			return nil, configError("cannot set a proxy on round tripper %T", rt)
		}
		tr.Proxy = http.ProxyURL(t.proxy)
		t.client.Transport = tr
	}
	// http.Client doesn't copy request headers and re-sends bodies on 307,
	// selenium needs neither.
	t.client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return t, nil
}

// HTTPTransportFactory returns a TransportFactory creating HTTPTransports
// with the given options.
func HTTPTransportFactory(opts ...HTTPOption) TransportFactory {
	return func(serverURL *url.URL) (Transport, error) {
		return NewHTTPTransport(serverURL, opts...)
	}
}

// Call implements Transport.
func (t *HTTPTransport) Call(method, path string, body interface{}) (*Response, error) {
	u := ResolveURL(t.base, path)
	data, err := EncodeBody(method, body)
	if err != nil {
		return nil, err
	}

	for redirects := 0; ; redirects++ {
		response, buf, err := t.do(method, u, data)
		if err != nil {
			return nil, err
		}
		if !IsRedirect(response.StatusCode) {
			return DecodeReply(method, u, response.StatusCode, response.Header.Get("Content-Type"), buf)
		}
		if redirects >= MaxRedirects {
			return nil, &TransportError{Op: method, URL: u, Err: fmt.Errorf("too many redirects (%d)", redirects)}
		}
		next, err := NormalizeURL(response.Header.Get("Location"), u)
		if err != nil {
			return nil, &TransportError{Op: method, URL: u, Err: err}
		}
		debugLog("redirected to %s", next)
		u, method, data = next, http.MethodGet, nil
	}
}

func (t *HTTPTransport) do(method, u string, data []byte) (*http.Response, []byte, error) {
	LogRequest(method, u, data)
	request, err := newRequest(method, u, data)
	if err != nil {
		return nil, nil, &TransportError{Op: method, URL: u, Err: err}
	}

	response, err := t.client.Do(request)
	if err != nil {
		return nil, nil, &TransportError{Op: method, URL: u, Err: err}
	}
	defer response.Body.Close()

	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, &TransportError{Op: method, URL: u, Err: fmt.Errorf("reading reply (%s): %v", response.Status, err)}
	}
	return response, buf, nil
}

// Close implements Transport.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func newRequest(method string, url string, data []byte) (*http.Request, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	request, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	request.Header.Add("Accept", JSONType)
	if data != nil {
		request.Header.Set("Content-Type", ContentType)
	}
	return request, nil
}

// EncodeBody marshals a request body. Methods that carry no body, and a nil
// body, yield nil.
func EncodeBody(method string, body interface{}) ([]byte, error) {
	if body == nil || !hasBody(method) {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body: %w", method, err)
	}
	return data, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

// DecodeReply turns a raw reply into a Response. JSON replies are decoded,
// 204 No Content is an empty Response and anything else is a
// *TransportError.
func DecodeReply(method, url string, code int, contentType string, body []byte) (*Response, error) {
	logReply(code, contentType, body)
	switch {
	case strings.HasPrefix(contentType, JSONType):
		return NewResponse(code, body)
	case code == http.StatusNoContent:
		return NewResponse(code, nil)
	}
	return nil, &TransportError{
		Op:  method,
		URL: url,
		Err: fmt.Errorf("unexpected reply: HTTP %d, content type %q: %s", code, contentType, snippet(body)),
	}
}

// LogRequest logs an outgoing request when wire logging is enabled. See
// SetDebug.
func LogRequest(method, url string, data []byte) {
	debugLog("-> %s %s\n%s", method, url, data)
}

func logReply(code int, contentType string, buf []byte) {
	if !debugEnabled() {
		return
	}
	// Pretty print the JSON response
	var prettyBuf bytes.Buffer
	if err := json.Indent(&prettyBuf, buf, "", "    "); err == nil && prettyBuf.Len() > 0 {
		buf = prettyBuf.Bytes()
	}
	debugLog("<- %d [%s]\n%s", code, contentType, buf)
}

func snippet(buf []byte) string {
	const max = 200
	if len(buf) > max {
		return string(buf[:max]) + "..."
	}
	return string(buf)
}

// IsRedirect reports whether code is an HTTP redirect the transports follow.
func IsRedirect(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// ResolveURL joins path onto the server URL. Absolute URLs are returned
// unchanged.
func ResolveURL(base *url.URL, path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return strings.TrimRight(base.String(), "/") + "/" + strings.TrimLeft(path, "/")
}

// NormalizeURL resolves a redirect target against the URL that was
// requested.
func NormalizeURL(n string, base string) (string, error) {
	if n == "" {
		return "", fmt.Errorf("redirect without a Location header")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL %s with error %s", base, err)
	}
	nURL, err := baseURL.Parse(n)
	if err != nil {
		return "", fmt.Errorf("failed to parse new URL %s with error %s", n, err)
	}
	return nURL.String(), nil
}
