package remote

import (
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type call struct {
	Method string
	Path   string
	Body   interface{}
}

type reply struct {
	code int
	body string
	err  error
}

// fakeTransport records calls and answers them from a queue of replies. An
// empty queue answers with a null value.
type fakeTransport struct {
	calls    []call
	replies  []reply
	closed   int
	closeErr error
}

func (f *fakeTransport) Call(method, path string, body interface{}) (*Response, error) {
	f.calls = append(f.calls, call{method, path, body})
	if len(f.replies) == 0 {
		return NewResponse(200, []byte(`{"status": 0, "value": null}`))
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return NewResponse(r.code, []byte(r.body))
}

func (f *fakeTransport) Close() error {
	f.closed++
	return f.closeErr
}

func (f *fakeTransport) queue(body string) {
	f.replies = append(f.replies, reply{code: 200, body: body})
}

func (f *fakeTransport) factory(got **url.URL) TransportFactory {
	return func(u *url.URL) (Transport, error) {
		if got != nil {
			*got = u
		}
		return f, nil
	}
}

const newSessionReply = `{"sessionId": "abc123", "status": 0, "value": {"browserName": "firefox", "version": "45.0.2", "platform": "LINUX", "javascriptEnabled": true}}`

func newFakeBridge(t *testing.T, desired Capabilities) (*Bridge, *fakeTransport) {
	t.Helper()
	f := new(fakeTransport)
	f.queue(newSessionReply)
	b, err := NewBridge("", desired, WithTransport(f.factory(nil)))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	f.calls = nil
	return b, f
}

func TestNewBridge(t *testing.T) {
	f := new(fakeTransport)
	f.queue(newSessionReply)
	var u *url.URL
	b, err := NewBridge("http://grid.example.com:4444/wd/hub", Firefox(), WithTransport(f.factory(&u)))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	if u.String() != "http://grid.example.com:4444/wd/hub" {
		t.Errorf("factory got URL %s", u)
	}
	if b.SessionID() != "abc123" {
		t.Errorf("b.SessionID() = %q, want 'abc123'", b.SessionID())
	}
	want := Capabilities{BrowserName: "firefox", Version: "45.0.2", Platform: PlatformLinux, JavascriptEnabled: true}
	if diff := cmp.Diff(want, b.Capabilities()); diff != "" {
		t.Errorf("b.Capabilities() returned diff (-want +got):\n%s", diff)
	}
	wantCalls := []call{{
		Method: "POST",
		Path:   "/session",
		Body:   map[string]interface{}{"desiredCapabilities": Firefox()},
	}}
	if diff := cmp.Diff(wantCalls, f.calls); diff != "" {
		t.Errorf("calls returned diff (-want +got):\n%s", diff)
	}
}

func TestNewBridgeDefaultURL(t *testing.T) {
	f := new(fakeTransport)
	f.queue(newSessionReply)
	var u *url.URL
	if _, err := NewBridge("", Chrome(), WithTransport(f.factory(&u))); err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	if u.String() != DefaultURL {
		t.Errorf("factory got URL %s, want %s", u, DefaultURL)
	}
}

func TestNewBridgeW3CSessionID(t *testing.T) {
	f := new(fakeTransport)
	f.queue(`{"value": {"sessionId": "w3c-1", "capabilities": {"browserName": "chrome", "version": "58.0", "platform": "linux", "javascriptEnabled": true}}}`)
	b, err := NewBridge("", Chrome(), WithTransport(f.factory(nil)))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	if b.SessionID() != "w3c-1" {
		t.Errorf("b.SessionID() = %q, want 'w3c-1'", b.SessionID())
	}
	want := Capabilities{BrowserName: "chrome", Version: "58.0", Platform: PlatformLinux, JavascriptEnabled: true}
	if diff := cmp.Diff(want, b.Capabilities()); diff != "" {
		t.Errorf("b.Capabilities() returned diff (-want +got):\n%s", diff)
	}

	f.queue(`{"value": 42}`)
	v, err := b.ExecuteScript("return 42;")
	if err != nil {
		t.Fatalf("b.ExecuteScript() returned error: %v", err)
	}
	if v != 42.0 {
		t.Errorf("b.ExecuteScript() = %v, want 42", v)
	}
}

func TestNewBridgeW3CSessionNoCapabilities(t *testing.T) {
	f := new(fakeTransport)
	f.queue(`{"value": {"sessionId": "w3c-2", "capabilities": null}}`)
	b, err := NewBridge("", Safari(), WithTransport(f.factory(nil)))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	if diff := cmp.Diff(Safari(), b.Capabilities()); diff != "" {
		t.Errorf("b.Capabilities() returned diff (-want +got):\n%s", diff)
	}
}

func TestNewBridgeKeepsDesiredCapabilities(t *testing.T) {
	f := new(fakeTransport)
	f.queue(`{"sessionId": "abc123", "status": 0, "value": null}`)
	b, err := NewBridge("", Safari(), WithTransport(f.factory(nil)))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	if diff := cmp.Diff(Safari(), b.Capabilities()); diff != "" {
		t.Errorf("b.Capabilities() returned diff (-want +got):\n%s", diff)
	}
}

func TestNewBridgeErrors(t *testing.T) {
	t.Run("no session id", func(t *testing.T) {
		f := new(fakeTransport)
		f.queue(`{"status": 0, "value": {"browserName": "firefox"}}`)
		_, err := NewBridge("", Firefox(), WithTransport(f.factory(nil)))
		if !errors.Is(err, ErrServer) {
			t.Errorf("NewBridge() returned %v, want ErrServer", err)
		}
		if f.closed != 1 {
			t.Errorf("transport closed %d times, want 1", f.closed)
		}
	})

	t.Run("server error", func(t *testing.T) {
		f := new(fakeTransport)
		f.replies = append(f.replies, reply{code: 500, body: `{"status": 13, "value": {"message": "no browser"}}`})
		_, err := NewBridge("", Firefox(), WithTransport(f.factory(nil)))
		if !errors.Is(err, ErrUnknown) {
			t.Errorf("NewBridge() returned %v, want ErrUnknown", err)
		}
		if f.closed != 1 {
			t.Errorf("transport closed %d times, want 1", f.closed)
		}
	})

	t.Run("close error after failed start", func(t *testing.T) {
		f := &fakeTransport{closeErr: errors.New("connection reset")}
		f.replies = append(f.replies, reply{code: 500, body: `{"status": 13, "value": {"message": "no browser"}}`})
		_, err := NewBridge("", Firefox(), WithTransport(f.factory(nil)))
		if !errors.Is(err, ErrUnknown) {
			t.Errorf("NewBridge() returned %v, want the session start error", err)
		}
		if f.closed != 1 {
			t.Errorf("transport closed %d times, want 1", f.closed)
		}
	})

	for _, tc := range []struct {
		desc string
		new  func(TransportFactory) (*Bridge, error)
	}{
		{"relative URL", func(f TransportFactory) (*Bridge, error) {
			return NewBridge("/wd/hub", Firefox(), WithTransport(f))
		}},
		{"unparsable URL", func(f TransportFactory) (*Bridge, error) {
			return NewBridge("http://[::1", Firefox(), WithTransport(f))
		}},
		{"unknown preset", func(f TransportFactory) (*Bridge, error) {
			return NewBridgeForBrowser("", "mosaic", WithTransport(f))
		}},
		{"nil factory", func(TransportFactory) (*Bridge, error) {
			return NewBridge("", Firefox(), WithTransport(nil))
		}},
		{"nil commands", func(f TransportFactory) (*Bridge, error) {
			return NewBridge("", Firefox(), WithTransport(f), WithCommands(nil))
		}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			called := false
			factory := func(*url.URL) (Transport, error) {
				called = true
				return new(fakeTransport), nil
			}
			_, err := tc.new(factory)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("returned %v, want *ConfigurationError", err)
			}
			if called {
				t.Error("the transport factory was called")
			}
		})
	}
}

func TestBridgeForBrowser(t *testing.T) {
	f := new(fakeTransport)
	f.queue(newSessionReply)
	if _, err := NewBridgeForBrowser("", "internet_explorer", WithTransport(f.factory(nil))); err != nil {
		t.Fatalf("NewBridgeForBrowser() returned error: %v", err)
	}
	want := map[string]interface{}{"desiredCapabilities": InternetExplorer()}
	if diff := cmp.Diff(want, f.calls[0].Body); diff != "" {
		t.Errorf("new session body returned diff (-want +got):\n%s", diff)
	}
}

func TestBridgeCommands(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	for _, tc := range []struct {
		desc string
		run  func() error
		want call
	}{
		{"Get", func() error { return b.Get("http://example.com/") }, call{"POST", "/session/abc123/url", map[string]string{"url": "http://example.com/"}}},
		{"Back", b.Back, call{"POST", "/session/abc123/back", nil}},
		{"Forward", b.Forward, call{"POST", "/session/abc123/forward", nil}},
		{"Refresh", b.Refresh, call{"POST", "/session/abc123/refresh", nil}},
		{"SetImplicitWait", func() error { return b.SetImplicitWait(2 * time.Second) }, call{"POST", "/session/abc123/timeouts/implicit_wait", map[string]uint{"ms": 2000}}},
		{"SetScriptTimeout", func() error { return b.SetScriptTimeout(time.Second) }, call{"POST", "/session/abc123/timeouts/async_script", map[string]uint{"ms": 1000}}},
		{"SwitchToWindow", func() error { return b.SwitchToWindow("w1") }, call{"POST", "/session/abc123/window", map[string]string{"name": "w1"}}},
		{"SwitchToFrame", func() error { return b.SwitchToFrame(1) }, call{"POST", "/session/abc123/frame", map[string]interface{}{"id": 1}}},
		{"DeleteCookie", func() error { return b.DeleteCookie("a b") }, call{"DELETE", "/session/abc123/cookie/a%20b", nil}},
		{"SetAlertText", func() error { return b.SetAlertText("hi") }, call{"POST", "/session/abc123/alert_text", map[string]string{"text": "hi"}}},
	} {
		f.calls = nil
		if err := tc.run(); err != nil {
			t.Errorf("%s returned error: %v", tc.desc, err)
			continue
		}
		if diff := cmp.Diff([]call{tc.want}, f.calls); diff != "" {
			t.Errorf("%s: calls returned diff (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestBridgeReaders(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())

	f.queue(`{"status": 0, "value": "Go Selenium Test Suite"}`)
	if title, err := b.Title(); err != nil || title != "Go Selenium Test Suite" {
		t.Errorf("b.Title() = %q, %v", title, err)
	}

	f.queue(`{"status": 0, "value": ["w1", "w2"]}`)
	handles, err := b.WindowHandles()
	if err != nil {
		t.Fatalf("b.WindowHandles() returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"w1", "w2"}, handles); diff != "" {
		t.Errorf("b.WindowHandles() returned diff (-want +got):\n%s", diff)
	}

	f.queue(`{"status": 0, "value": 1500}`)
	if d, err := b.ImplicitWait(); err != nil || d != 1500*time.Millisecond {
		t.Errorf("b.ImplicitWait() = %s, %v", d, err)
	}

	f.queue(`{"status": 0, "value": "aGVsbG8="}`)
	if data, err := b.Screenshot(); err != nil || string(data) != "hello" {
		t.Errorf("b.Screenshot() = %q, %v", data, err)
	}

	f.queue(`{"status": 0, "value": [{"name": "a", "value": "1", "expiry": 1.5e9}, {"name": "b", "value": "2", "secure": true}]}`)
	c, err := b.Cookie("a")
	if err != nil {
		t.Fatalf("b.Cookie('a') returned error: %v", err)
	}
	if diff := cmp.Diff(&Cookie{Name: "a", Value: "1", Expiry: 1500000000}, c); diff != "" {
		t.Errorf("b.Cookie('a') returned diff (-want +got):\n%s", diff)
	}

	f.queue(`{"status": 0, "value": []}`)
	if c, err := b.Cookie("missing"); err != nil || c != nil {
		t.Errorf("b.Cookie('missing') = %+v, %v, want nil, nil", c, err)
	}

	f.queue(`{"status": 0, "value": null}`)
	if u, err := b.CurrentURL(); err != nil || u != "" {
		t.Errorf("b.CurrentURL() with a null value = %q, %v", u, err)
	}
}

func TestBridgeArgumentErrors(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	other, _ := newFakeBridge(t, Firefox())
	foreign := other.element("0")

	for _, tc := range []struct {
		desc string
		run  func() error
	}{
		{"AddCookie(nil)", func() error { return b.AddCookie(nil) }},
		{"AddCookie(nameless)", func() error { return b.AddCookie(&Cookie{Value: "x"}) }},
		{"SetSpeed", func() error { return b.SetSpeed(Speed("WARP")) }},
		{"SetImplicitWait(negative)", func() error { return b.SetImplicitWait(-time.Second) }},
		{"SetScriptTimeout(negative)", func() error { return b.SetScriptTimeout(-time.Millisecond) }},
		{"SwitchToFrame", func() error { return b.SwitchToFrame(3.5) }},
		{"SwitchToFrame(foreign)", func() error { return b.SwitchToFrame(foreign) }},
		{"FindElement", func() error { _, err := b.FindElement(By("regex"), "x"); return err }},
		{"ExecuteScript", func() error {
			_, err := b.ExecuteScript("return 1;", []interface{}{map[string]interface{}{"e": foreign}})
			return err
		}},
		{"Equal", func() error { _, err := b.element("0").Equal(foreign); return err }},
		{"findElement(foreign parent)", func() error { _, err := b.findElement(foreign, ByID, "x"); return err }},
		{"unknown command", func() error { _, err := b.Execute("fly", nil, nil); return err }},
		{"missing parameter", func() error { _, err := b.Execute(CmdClickElement, nil, nil); return err }},
	} {
		f.calls = nil
		err := tc.run()
		var ae *ArgumentError
		if !errors.As(err, &ae) {
			t.Errorf("%s returned %v, want *ArgumentError", tc.desc, err)
		}
		if len(f.calls) != 0 {
			t.Errorf("%s made calls: %+v", tc.desc, f.calls)
		}
	}
}

func TestBridgeFindElement(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())

	f.queue(`{"status": 0, "value": {"ELEMENT": "7"}}`)
	e, err := b.FindElement(ByCSSSelector, "p#intro")
	if err != nil {
		t.Fatalf("b.FindElement() returned error: %v", err)
	}
	if e.ID() != "7" {
		t.Errorf("e.ID() = %q, want '7'", e.ID())
	}
	wantBody := map[string]string{"using": "css selector", "value": "p#intro"}
	if diff := cmp.Diff(call{"POST", "/session/abc123/element", wantBody}, f.calls[0]); diff != "" {
		t.Errorf("call returned diff (-want +got):\n%s", diff)
	}

	f.calls = nil
	f.queue(`{"status": 0, "value": {"element-6066-11e4-a52e-4f735466cecf": "8"}}`)
	child, err := e.FindElement(ByTagName, "a")
	if err != nil {
		t.Fatalf("e.FindElement() returned error: %v", err)
	}
	if child.ID() != "8" || f.calls[0].Path != "/session/abc123/element/7/element" {
		t.Errorf("e.FindElement() = %v via %s", child, f.calls[0].Path)
	}

	f.queue(`{"status": 0, "value": null}`)
	if _, err := b.FindElement(ByID, "nothing"); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("b.FindElement() with a null value returned %v, want ErrNoSuchElement", err)
	}

	f.queue(`{"status": 0, "value": []}`)
	elems, err := b.FindElements(ByName, "nothing")
	if err != nil {
		t.Fatalf("b.FindElements() returned error: %v", err)
	}
	if elems == nil || len(elems) != 0 {
		t.Errorf("b.FindElements() = %#v, want an empty slice", elems)
	}
}

func TestBridgeExecuteScript(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	e := b.element("3")

	f.queue(`{"status": 0, "value": {"list": [{"element-6066-11e4-a52e-4f735466cecf": "4"}, 2], "el": {"ELEMENT": "5"}}}`)
	v, err := b.ExecuteScript("return stuff;", e, "x")
	if err != nil {
		t.Fatalf("b.ExecuteScript() returned error: %v", err)
	}
	got, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("b.ExecuteScript() = %#v, want a map", v)
	}
	list := got["list"].([]interface{})
	if el, ok := list[0].(*Element); !ok || el.ID() != "4" || list[1] != 2.0 {
		t.Errorf("got['list'] = %v, want [Element(4) 2]", list)
	}
	if el, ok := got["el"].(*Element); !ok || el.ID() != "5" {
		t.Errorf("got['el'] = %v, want Element(5)", got["el"])
	}

	body := f.calls[0].Body.(map[string]interface{})
	if diff := cmp.Diff([]interface{}{e, "x"}, body["args"], cmp.Comparer(func(a, b *Element) bool { return a.ID() == b.ID() })); diff != "" {
		t.Errorf("args returned diff (-want +got):\n%s", diff)
	}

	f.calls = nil
	if _, err := b.ExecuteAsyncScript("arguments[0]();"); err != nil {
		t.Fatalf("b.ExecuteAsyncScript() returned error: %v", err)
	}
	body = f.calls[0].Body.(map[string]interface{})
	if args, ok := body["args"].([]interface{}); !ok || args == nil || len(args) != 0 {
		t.Errorf("args = %#v, want an empty list", body["args"])
	}
	if f.calls[0].Path != "/session/abc123/execute_async" {
		t.Errorf("path = %s, want /session/abc123/execute_async", f.calls[0].Path)
	}
}

func TestBridgeExecuteScriptErrorKey(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	f.queue(`{"status": 0, "value": {"error": "validation failed", "ok": false}}`)
	v, err := b.ExecuteScript("return {error: 'validation failed', ok: false};")
	if err != nil {
		t.Fatalf("b.ExecuteScript() returned error: %v", err)
	}
	want := map[string]interface{}{"error": "validation failed", "ok": false}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("b.ExecuteScript() returned diff (-want +got):\n%s", diff)
	}
}

func TestBridgeJavascriptDisabled(t *testing.T) {
	f := new(fakeTransport)
	f.queue(`{"sessionId": "abc123", "status": 0, "value": {"browserName": "htmlunit", "javascriptEnabled": false}}`)
	b, err := NewBridge("", HTMLUnit(), WithTransport(f.factory(nil)))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	f.calls = nil
	if _, err := b.ExecuteScript("return 1;"); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("b.ExecuteScript() returned %v, want ErrUnsupportedOperation", err)
	}
	if _, err := b.ExecuteAsyncScript("return 1;"); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("b.ExecuteAsyncScript() returned %v, want ErrUnsupportedOperation", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("calls = %+v, want none", f.calls)
	}
}

func TestBridgeElementCommands(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	e := b.element(":wdc:1")

	if err := e.SendKeys("ab" + EnterKey); err != nil {
		t.Fatalf("e.SendKeys() returned error: %v", err)
	}
	want := call{"POST", "/session/abc123/element/:wdc:1/value", map[string][]string{"value": {"a", "b", EnterKey}}}
	if diff := cmp.Diff(want, f.calls[0]); diff != "" {
		t.Errorf("SendKeys call returned diff (-want +got):\n%s", diff)
	}

	f.calls = nil
	f.queue(`{"status": 0, "value": {"x": 10, "y": 20}}`)
	p, err := e.Location()
	if err != nil {
		t.Fatalf("e.Location() returned error: %v", err)
	}
	if *p != (Point{10, 20}) {
		t.Errorf("e.Location() = %+v, want {10 20}", *p)
	}

	f.queue(`{"status": 0, "value": null}`)
	if v, err := e.Attribute("nope"); err != nil || v != "" {
		t.Errorf("e.Attribute('nope') = %q, %v", v, err)
	}

	f.calls = nil
	same, err := e.Equal(b.element(":wdc:1"))
	if err != nil || !same {
		t.Errorf("e.Equal(same id) = %t, %v", same, err)
	}
	if len(f.calls) != 0 {
		t.Errorf("e.Equal(same id) made calls: %+v", f.calls)
	}

	f.queue(`{"status": 0, "value": false}`)
	if same, err := e.Equal(b.element("2")); err != nil || same {
		t.Errorf("e.Equal(other) = %t, %v", same, err)
	}
	if want := "/session/abc123/element/:wdc:1/equals/2"; f.calls[0].Path != want {
		t.Errorf("Equal path = %s, want %s", f.calls[0].Path, want)
	}
}

func TestBridgeProtocolError(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	f.replies = append(f.replies, reply{code: 500, body: `{"sessionId": "abc123", "status": 27, "value": {"message": "No alert is present", "class": "org.openqa.selenium.NoAlertPresentException"}}`})
	_, err := b.AlertText()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("b.AlertText() returned %v, want *Error", err)
	}
	if e.Kind != ErrNoAlertOpen || e.Message != "No alert is present" || e.HTTPCode != 500 {
		t.Errorf("b.AlertText() returned %+v", e)
	}

	te := &TransportError{Op: "GET", Err: fmt.Errorf("connection reset")}
	f.replies = append(f.replies, reply{err: te})
	if _, err := b.Title(); !errors.As(err, &te) {
		t.Errorf("b.Title() returned %v, want *TransportError", err)
	}
}

func TestBridgeQuit(t *testing.T) {
	b, f := newFakeBridge(t, Firefox())
	if err := b.Quit(); err != nil {
		t.Fatalf("b.Quit() returned error: %v", err)
	}
	if diff := cmp.Diff([]call{{"DELETE", "/session/abc123", nil}}, f.calls); diff != "" {
		t.Errorf("calls returned diff (-want +got):\n%s", diff)
	}
	if f.closed != 1 {
		t.Errorf("transport closed %d times, want 1", f.closed)
	}
	if id := b.SessionID(); id != "" {
		t.Errorf("b.SessionID() after Quit = %q, want ''", id)
	}

	f.calls = nil
	if _, err := b.Title(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("b.Title() after Quit returned %v, want ErrSessionClosed", err)
	}
	if err := b.Quit(); err != nil {
		t.Errorf("second b.Quit() returned error: %v", err)
	}
	if len(f.calls) != 0 || f.closed != 1 {
		t.Errorf("after Quit: calls = %+v, closed = %d", f.calls, f.closed)
	}
}

func TestBridgeQuitErrors(t *testing.T) {
	t.Run("transport close error is dropped", func(t *testing.T) {
		b, f := newFakeBridge(t, Firefox())
		f.closeErr = &TransportError{Op: "close", Err: fmt.Errorf("broken pipe")}
		if err := b.Quit(); err != nil {
			t.Errorf("b.Quit() returned error: %v", err)
		}
	})

	t.Run("other close error is returned", func(t *testing.T) {
		b, f := newFakeBridge(t, Firefox())
		f.closeErr = fmt.Errorf("disk on fire")
		if err := b.Quit(); err != f.closeErr {
			t.Errorf("b.Quit() returned %v, want %v", err, f.closeErr)
		}
		if _, err := b.Title(); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("b.Title() after Quit returned %v, want ErrSessionClosed", err)
		}
	})

	t.Run("quit command error keeps the session", func(t *testing.T) {
		b, f := newFakeBridge(t, Firefox())
		f.replies = append(f.replies, reply{code: 500, body: `{"status": 6, "value": {"message": "no session"}}`})
		if err := b.Quit(); err == nil {
			t.Fatal("b.Quit() returned no error")
		}
		if f.closed != 0 {
			t.Errorf("transport closed %d times, want 0", f.closed)
		}
		if b.SessionID() != "abc123" {
			t.Errorf("b.SessionID() = %q, want 'abc123'", b.SessionID())
		}
		if err := b.Quit(); err != nil {
			t.Errorf("retried b.Quit() returned error: %v", err)
		}
	})
}
