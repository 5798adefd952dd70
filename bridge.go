// Remote WebDriver client implementation.
// See https://github.com/SeleniumHQ/selenium/wiki/JsonWireProtocol for the
// protocol.

package remote

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/golang/glog"

	"github.com/wanmail/remote/log"
)

// Bridge is a client for one session on a remote WebDriver server. It exposes
// one method per wire protocol command, each of which performs at most one
// HTTP exchange and blocks until it completes.
//
// A Bridge is not safe for concurrent use. Use one Bridge, and so one
// session, per goroutine.
type Bridge struct {
	serverURL    *url.URL
	transport    Transport
	commands     *CommandSet
	id           string
	capabilities Capabilities
	closed       bool
}

type options struct {
	factory  TransportFactory
	commands *CommandSet
}

// Option configures a Bridge.
type Option func(*options) error

// WithTransport sets the factory of the Transport the Bridge talks through.
// The default is HTTPTransportFactory().
func WithTransport(f TransportFactory) Option {
	return func(o *options) error {
		if f == nil {
			return configError("nil transport factory")
		}
		o.factory = f
		return nil
	}
}

// WithCommands sets the command table. The default is LegacyCommands().
func WithCommands(cs *CommandSet) Option {
	return func(o *options) error {
		if cs == nil {
			return configError("nil command set")
		}
		o.commands = cs
		return nil
	}
}

// NewBridge connects to the server at serverURL and starts a new session with
// the desired capabilities. An empty serverURL means DefaultURL.
func NewBridge(serverURL string, desired Capabilities, opts ...Option) (*Bridge, error) {
	if serverURL == "" {
		serverURL = DefaultURL
	}
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, configError("invalid server URL %q", serverURL)
	}

	o := options{
		factory:  HTTPTransportFactory(),
		commands: LegacyCommands(),
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	t, err := o.factory(u)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		serverURL: u,
		transport: t,
		commands:  o.commands,
	}
	if err := b.newSession(desired); err != nil {
		if cerr := t.Close(); cerr != nil {
			glog.Warningf("ignoring error while closing transport after failed session start: %v", cerr)
		}
		return nil, err
	}
	return b, nil
}

// NewBridgeForBrowser is like NewBridge, with the desired capabilities given
// as a preset name such as "firefox". An unknown preset is reported before
// any network traffic.
func NewBridgeForBrowser(serverURL, browser string, opts ...Option) (*Bridge, error) {
	caps, err := Preset(browser)
	if err != nil {
		return nil, err
	}
	return NewBridge(serverURL, caps, opts...)
}

func (b *Bridge) newSession(desired Capabilities) error {
	resp, err := b.RawExecute(CmdNewSession, nil, map[string]interface{}{
		"desiredCapabilities": desired,
	})
	if err != nil {
		return err
	}

	// Newer servers nest the id and the capabilities in the value.
	var nested struct {
		SessionID    string          `json:"sessionId"`
		Capabilities json.RawMessage `json:"capabilities"`
	}
	id := resp.SessionID
	if id == "" {
		if err := resp.DecodeValue(&nested); err == nil {
			id = nested.SessionID
		}
	}
	if id == "" {
		return &Error{Kind: ErrServer, HTTPCode: resp.Code, Message: "new session reply did not contain a session id"}
	}

	caps := desired
	switch {
	case nested.SessionID != "":
		if len(nested.Capabilities) > 0 && !bytes.Equal(nested.Capabilities, []byte("null")) {
			if err := json.Unmarshal(nested.Capabilities, &caps); err != nil {
				return fmt.Errorf("decoding negotiated capabilities: %w", err)
			}
		}
	case resp.Value() != nil:
		if err := resp.DecodeValue(&caps); err != nil {
			return fmt.Errorf("decoding negotiated capabilities: %w", err)
		}
	}
	b.id = id
	b.capabilities = caps

	glog.Infof("session %s started: %q on %s", id, caps.BrowserName, caps.Platform)
	if v, err := caps.BrowserVersion(); err == nil {
		glog.V(1).Infof("session %s: browser version %s", id, v)
	}
	return nil
}

// SessionID returns the id of the session, or the empty string once the
// session has ended.
func (b *Bridge) SessionID() string {
	return b.id
}

// Capabilities returns the capabilities negotiated when the session started.
func (b *Bridge) Capabilities() Capabilities {
	return b.capabilities
}

// RawExecute runs a command and returns the server's reply. params supply the
// path placeholders other than the session id; body, if not nil, is sent as
// JSON.
func (b *Bridge) RawExecute(name CommandName, params map[string]string, body interface{}) (*Response, error) {
	if b.closed {
		return nil, ErrSessionClosed
	}
	cmd, ok := b.commands.Lookup(name)
	if !ok {
		return nil, argumentError(name, "unknown command")
	}
	path, err := cmd.URL(name, b.id, params)
	if err != nil {
		return nil, err
	}
	return b.transport.Call(cmd.Method, path, body)
}

// Execute runs a command like RawExecute and returns the "value" of the
// reply.
func (b *Bridge) Execute(name CommandName, params map[string]string, body interface{}) (interface{}, error) {
	resp, err := b.RawExecute(name, params, body)
	if err != nil {
		return nil, err
	}
	return resp.Value(), nil
}

func (b *Bridge) voidCommand(name CommandName, params map[string]string, body interface{}) error {
	_, err := b.RawExecute(name, params, body)
	return err
}

func (b *Bridge) decodeCommand(name CommandName, params map[string]string, body interface{}, v interface{}) error {
	resp, err := b.RawExecute(name, params, body)
	if err != nil {
		return err
	}
	if err := resp.DecodeValue(v); err != nil {
		return fmt.Errorf("%s: decoding reply: %w", name, err)
	}
	return nil
}

func (b *Bridge) stringCommand(name CommandName, params map[string]string) (string, error) {
	var s *string
	if err := b.decodeCommand(name, params, nil, &s); err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

func (b *Bridge) boolCommand(name CommandName, params map[string]string) (bool, error) {
	var v bool
	err := b.decodeCommand(name, params, nil, &v)
	return v, err
}

func (b *Bridge) stringsCommand(name CommandName) ([]string, error) {
	var v []string
	err := b.decodeCommand(name, nil, nil, &v)
	return v, err
}

// Status returns information about the server.
func (b *Bridge) Status() (*Status, error) {
	status := new(Status)
	if err := b.decodeCommand(CmdStatus, nil, nil, status); err != nil {
		return nil, err
	}
	return status, nil
}

// RemoteCapabilities asks the server for the session's current capabilities.
func (b *Bridge) RemoteCapabilities() (Capabilities, error) {
	var c Capabilities
	err := b.decodeCommand(CmdGetCapabilities, nil, nil, &c)
	return c, err
}

// Get navigates the browser to the provided URL.
func (b *Bridge) Get(url string) error {
	return b.voidCommand(CmdGet, nil, map[string]string{"url": url})
}

// CurrentURL returns the browser's current URL.
func (b *Bridge) CurrentURL() (string, error) {
	return b.stringCommand(CmdGetCurrentURL, nil)
}

// Back moves backward in history.
func (b *Bridge) Back() error {
	return b.voidCommand(CmdGoBack, nil, nil)
}

// Forward moves forward in history.
func (b *Bridge) Forward() error {
	return b.voidCommand(CmdGoForward, nil, nil)
}

// Refresh refreshes the page.
func (b *Bridge) Refresh() error {
	return b.voidCommand(CmdRefresh, nil, nil)
}

// Title returns the current page's title.
func (b *Bridge) Title() (string, error) {
	return b.stringCommand(CmdGetTitle, nil)
}

// PageSource returns the current page's source.
func (b *Bridge) PageSource() (string, error) {
	return b.stringCommand(CmdGetPageSource, nil)
}

// Screenshot takes a screenshot of the browser window and returns the PNG
// data.
func (b *Bridge) Screenshot() ([]byte, error) {
	data, err := b.stringCommand(CmdScreenshot, nil)
	if err != nil {
		return nil, err
	}

	// Selenium returns a base64 encoded image.
	decoder := base64.NewDecoder(base64.StdEncoding, bytes.NewBufferString(data))
	return io.ReadAll(decoder)
}

// Visible reports whether the browser window is visible.
func (b *Bridge) Visible() (bool, error) {
	return b.boolCommand(CmdIsBrowserVisible, nil)
}

// SetVisible shows or hides the browser window.
func (b *Bridge) SetVisible(visible bool) error {
	return b.voidCommand(CmdSetBrowserVisible, nil, map[string]bool{"visible": visible})
}

// WindowHandle returns the handle of the current window.
func (b *Bridge) WindowHandle() (string, error) {
	return b.stringCommand(CmdGetCurrentWindowHandle, nil)
}

// WindowHandles returns the handles of all open windows.
func (b *Bridge) WindowHandles() ([]string, error) {
	return b.stringsCommand(CmdGetWindowHandles)
}

// SwitchToWindow switches the context to the named window.
func (b *Bridge) SwitchToWindow(name string) error {
	return b.voidCommand(CmdSwitchToWindow, nil, map[string]string{"name": name})
}

// SwitchToFrame switches to the given frame. The frame may be given by name
// or id (a string), by index (an int), as an *Element, or as nil for the
// top-level browsing context.
func (b *Bridge) SwitchToFrame(frame interface{}) error {
	switch f := frame.(type) {
	case nil, string, int:
	case *Element:
		if err := b.owns(CmdSwitchToFrame, f); err != nil {
			return err
		}
	default:
		return argumentError(CmdSwitchToFrame, "invalid frame %T", frame)
	}
	return b.voidCommand(CmdSwitchToFrame, nil, map[string]interface{}{"id": frame})
}

// Close closes the current window.
func (b *Bridge) Close() error {
	return b.voidCommand(CmdClose, nil, nil)
}

// ImplicitWait returns the time the server waits for elements to appear when
// finding them.
func (b *Bridge) ImplicitWait() (time.Duration, error) {
	var ms float64
	if err := b.decodeCommand(CmdGetImplicitWait, nil, nil, &ms); err != nil {
		return 0, err
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// SetImplicitWait sets the amount of time the driver should wait when
// searching for elements. The timeout will be rounded to nearest millisecond
// and must not be negative.
func (b *Bridge) SetImplicitWait(timeout time.Duration) error {
	ms, err := millis(CmdImplicitlyWait, timeout)
	if err != nil {
		return err
	}
	return b.voidCommand(CmdImplicitlyWait, nil, map[string]uint{"ms": ms})
}

// SetScriptTimeout sets the amount of time that asynchronous scripts are
// permitted to run before they are aborted. The timeout will be rounded to
// nearest millisecond.
func (b *Bridge) SetScriptTimeout(timeout time.Duration) error {
	ms, err := millis(CmdSetScriptTimeout, timeout)
	if err != nil {
		return err
	}
	return b.voidCommand(CmdSetScriptTimeout, nil, map[string]uint{"ms": ms})
}

func millis(cmd CommandName, d time.Duration) (uint, error) {
	if d < 0 {
		return 0, argumentError(cmd, "negative timeout %s", d)
	}
	return uint(d.Round(time.Millisecond) / time.Millisecond), nil
}

// Speed returns the mouse and keyboard speed.
func (b *Bridge) Speed() (Speed, error) {
	s, err := b.stringCommand(CmdGetSpeed, nil)
	return Speed(s), err
}

// SetSpeed sets the mouse and keyboard speed.
func (b *Bridge) SetSpeed(speed Speed) error {
	switch speed {
	case Slow, Medium, Fast:
	default:
		return argumentError(CmdSetSpeed, "invalid speed %q", speed)
	}
	return b.voidCommand(CmdSetSpeed, nil, map[string]Speed{"speed": speed})
}

// Cookies returns all of the cookies in the browser's jar.
func (b *Bridge) Cookies() ([]Cookie, error) {
	// ChromeDriver returns the expiration date as a float.
	type cookie struct {
		Name   string      `json:"name"`
		Value  string      `json:"value"`
		Path   string      `json:"path"`
		Domain string      `json:"domain"`
		Secure bool        `json:"secure"`
		Expiry interface{} `json:"expiry"`
	}

	var reply []cookie
	if err := b.decodeCommand(CmdGetAllCookies, nil, nil, &reply); err != nil {
		return nil, err
	}

	cookies := make([]Cookie, len(reply))
	for i, c := range reply {
		sanitized := Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Path:   c.Path,
			Domain: c.Domain,
			Secure: c.Secure,
		}
		if expiry, ok := c.Expiry.(float64); ok && expiry > 0 {
			sanitized.Expiry = uint(expiry)
		}
		cookies[i] = sanitized
	}
	return cookies, nil
}

// Cookie returns the named cookie, or nil if the jar holds no such cookie.
func (b *Bridge) Cookie(name string) (*Cookie, error) {
	cookies, err := b.Cookies()
	if err != nil {
		return nil, err
	}
	for i := range cookies {
		if cookies[i].Name == name {
			return &cookies[i], nil
		}
	}
	return nil, nil
}

// AddCookie adds a cookie to the browser's jar.
func (b *Bridge) AddCookie(cookie *Cookie) error {
	if cookie == nil || cookie.Name == "" {
		return argumentError(CmdAddCookie, "cookie must have a name")
	}
	return b.voidCommand(CmdAddCookie, nil, map[string]*Cookie{"cookie": cookie})
}

// DeleteCookie deletes the named cookie from the browser's jar.
func (b *Bridge) DeleteCookie(name string) error {
	return b.voidCommand(CmdDeleteCookie, map[string]string{"name": name}, nil)
}

// DeleteAllCookies deletes all of the cookies in the browser's jar.
func (b *Bridge) DeleteAllCookies() error {
	return b.voidCommand(CmdDeleteAllCookies, nil, nil)
}

// FindElement finds exactly one element in the current page's DOM. It fails
// with ErrNoSuchElement if there is none.
func (b *Bridge) FindElement(by By, value string) (*Element, error) {
	return b.findElement(nil, by, value)
}

// FindElements finds all matching elements in the current page's DOM, in
// document order. No match is not an error.
func (b *Bridge) FindElements(by By, value string) ([]*Element, error) {
	return b.findElements(nil, by, value)
}

// ActiveElement returns the element that currently has focus.
func (b *Bridge) ActiveElement() (*Element, error) {
	var ref elementRef
	if err := b.decodeCommand(CmdGetActiveElement, nil, nil, &ref); err != nil {
		return nil, err
	}
	if ref.id() == "" {
		return nil, &Error{Kind: ErrNoSuchElement, Message: "no active element"}
	}
	return b.element(ref.id()), nil
}

func (b *Bridge) findParams(parent *Element, name CommandName, by By) (map[string]string, error) {
	if !by.valid() {
		return nil, argumentError(name, "unknown locator strategy %q", by)
	}
	if parent == nil {
		return nil, nil
	}
	if err := b.owns(name, parent); err != nil {
		return nil, err
	}
	return parent.params(), nil
}

func (b *Bridge) findElement(parent *Element, by By, value string) (*Element, error) {
	name := CmdFindElement
	if parent != nil {
		name = CmdFindChildElement
	}
	params, err := b.findParams(parent, name, by)
	if err != nil {
		return nil, err
	}

	var ref elementRef
	if err := b.decodeCommand(name, params, map[string]string{"using": string(by), "value": value}, &ref); err != nil {
		return nil, err
	}
	if ref.id() == "" {
		return nil, &Error{Kind: ErrNoSuchElement, Message: fmt.Sprintf("no element found using %s %q", by, value)}
	}
	return b.element(ref.id()), nil
}

func (b *Bridge) findElements(parent *Element, by By, value string) ([]*Element, error) {
	name := CmdFindElements
	if parent != nil {
		name = CmdFindChildElements
	}
	params, err := b.findParams(parent, name, by)
	if err != nil {
		return nil, err
	}

	var refs []elementRef
	if err := b.decodeCommand(name, params, map[string]string{"using": string(by), "value": value}, &refs); err != nil {
		return nil, err
	}
	elems := make([]*Element, 0, len(refs))
	for _, ref := range refs {
		elems = append(elems, b.element(ref.id()))
	}
	return elems, nil
}

// ExecuteScript executes a script synchronously in the current page and
// returns its result. Element references in the result, however deeply
// nested, are returned as *Element. *Element arguments are passed to the
// script as DOM elements.
func (b *Bridge) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	return b.executeScript(CmdExecuteScript, script, args)
}

// ExecuteAsyncScript is like ExecuteScript for scripts that signal
// completion through the callback passed as their last argument.
func (b *Bridge) ExecuteAsyncScript(script string, args ...interface{}) (interface{}, error) {
	return b.executeScript(CmdExecuteAsyncScript, script, args)
}

func (b *Bridge) executeScript(name CommandName, script string, args []interface{}) (interface{}, error) {
	if !b.capabilities.JavascriptEnabled {
		return nil, fmt.Errorf("%s: %w: JavaScript is disabled in session %s", name, ErrUnsupportedOperation, b.id)
	}
	if args == nil {
		args = make([]interface{}, 0)
	}
	for _, arg := range args {
		if err := b.checkArg(name, arg); err != nil {
			return nil, err
		}
	}

	v, err := b.Execute(name, nil, map[string]interface{}{
		"script": script,
		"args":   args,
	})
	if err != nil {
		return nil, err
	}
	return b.unwrap(v), nil
}

func (b *Bridge) checkArg(name CommandName, arg interface{}) error {
	switch v := arg.(type) {
	case *Element:
		return b.owns(name, v)
	case []interface{}:
		for _, e := range v {
			if err := b.checkArg(name, e); err != nil {
				return err
			}
		}
	case map[string]interface{}:
		for _, e := range v {
			if err := b.checkArg(name, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// unwrap replaces element references in a decoded value by *Element.
func (b *Bridge) unwrap(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		for i := range v {
			v[i] = b.unwrap(v[i])
		}
		return v
	case map[string]interface{}:
		if id, ok := elementID(v); ok {
			return b.element(id)
		}
		for k := range v {
			v[k] = b.unwrap(v[k])
		}
		return v
	}
	return v
}

// AcceptAlert accepts the current alert.
func (b *Bridge) AcceptAlert() error {
	return b.voidCommand(CmdAcceptAlert, nil, nil)
}

// DismissAlert dismisses current alert.
func (b *Bridge) DismissAlert() error {
	return b.voidCommand(CmdDismissAlert, nil, nil)
}

// AlertText returns the current alert text.
func (b *Bridge) AlertText() (string, error) {
	return b.stringCommand(CmdGetAlertText, nil)
}

// SetAlertText types text into the current prompt.
func (b *Bridge) SetAlertText(text string) error {
	return b.voidCommand(CmdSetAlertText, nil, map[string]string{"text": text})
}

// Log returns the entries of the given log buffer added since the buffer was
// last read.
func (b *Bridge) Log(typ log.Type) ([]log.Message, error) {
	var msgs []log.Message
	if err := b.decodeCommand(CmdGetLog, nil, map[string]log.Type{"type": typ}, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// LogTypes returns the log buffers the server keeps for this session.
func (b *Bridge) LogTypes() ([]log.Type, error) {
	var types []log.Type
	if err := b.decodeCommand(CmdGetAvailableLogTypes, nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// Quit ends the session and closes the transport. Errors reported by the
// server for the quit command are returned; a *TransportError while closing
// the transport afterwards is logged and dropped. Calling Quit again is a
// no-op, and every other command fails with ErrSessionClosed.
func (b *Bridge) Quit() error {
	if b.closed {
		return nil
	}
	if err := b.voidCommand(CmdQuit, nil, nil); err != nil {
		return err
	}
	id := b.id
	b.closed = true
	b.id = ""

	if err := b.transport.Close(); err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			return err
		}
		glog.Warningf("session %s: ignoring error while closing transport: %v", id, err)
	}
	glog.Infof("session %s ended", id)
	return nil
}

func (b *Bridge) owns(name CommandName, e *Element) error {
	if e == nil {
		return argumentError(name, "nil element")
	}
	if e.bridge != b {
		return argumentError(name, "element %s belongs to another session", e.id)
	}
	return nil
}
