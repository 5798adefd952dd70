// Package remotetest provides a fake wire protocol server and tests that
// exercise package remote against it. The tests are in a separate package to
// allow every transport to validate its behavior.
package remotetest

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/remote"
	"github.com/wanmail/remote/log"
)

// Config selects what the common tests run against.
type Config struct {
	// Transport creates the transport under test. Nil means the Bridge's
	// default.
	Transport remote.TransportFactory
	// RedirectNewSession is copied to every Server the tests start.
	RedirectNewSession bool
}

// PageURL is the URL the tests navigate to for the named page. The fake
// server only looks at the path.
func PageURL(path string) string {
	return "http://example.com" + path
}

func runTest(f func(*testing.T, Config), c Config) func(*testing.T) {
	return func(t *testing.T) {
		f(t, c)
	}
}

func newBridge(t *testing.T, c Config, caps remote.Capabilities) (*remote.Bridge, *Server) {
	t.Helper()
	srv := NewServer()
	srv.RedirectNewSession = c.RedirectNewSession
	t.Cleanup(srv.Close)

	var opts []remote.Option
	if c.Transport != nil {
		opts = append(opts, remote.WithTransport(c.Transport))
	}
	b, err := remote.NewBridge(srv.URL(), caps, opts...)
	if err != nil {
		t.Fatalf("NewBridge(%q, %+v) returned error: %v", srv.URL(), caps, err)
	}
	return b, srv
}

func quitBridge(t *testing.T, b *remote.Bridge) {
	if err := b.Quit(); err != nil {
		t.Errorf("b.Quit() returned error: %v", err)
	}
}

func get(t *testing.T, b *remote.Bridge, path string) {
	t.Helper()
	if err := b.Get(PageURL(path)); err != nil {
		t.Fatalf("b.Get(%q) returned error: %v", PageURL(path), err)
	}
}

func find(t *testing.T, b *remote.Bridge, by remote.By, value string) *remote.Element {
	t.Helper()
	e, err := b.FindElement(by, value)
	if err != nil {
		t.Fatalf("b.FindElement(%q, %q) returned error: %v", by, value, err)
	}
	return e
}

func wantKind(t *testing.T, call string, err error, kind remote.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s returned no error, want %q", call, kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("%s returned error %v, want kind %q", call, err, kind)
	}
}

// RunCommonTests runs the tests that every transport must pass.
func RunCommonTests(t *testing.T, c Config) {
	t.Run("Status", runTest(testStatus, c))
	t.Run("NewSession", runTest(testNewSession, c))
	t.Run("RemoteCapabilities", runTest(testRemoteCapabilities, c))
	t.Run("Error", runTest(testError, c))
	t.Run("UnknownCommand", runTest(testUnknownCommand, c))
	t.Run("Timeouts", runTest(testTimeouts, c))
	t.Run("Speed", runTest(testSpeed, c))
	t.Run("Visible", runTest(testVisible, c))
	t.Run("Get", runTest(testGet, c))
	t.Run("Navigation", runTest(testNavigation, c))
	t.Run("PageSource", runTest(testPageSource, c))
	t.Run("FindElement", runTest(testFindElement, c))
	t.Run("FindElements", runTest(testFindElements, c))
	t.Run("InvalidSelector", runTest(testInvalidSelector, c))
	t.Run("ChildElements", runTest(testChildElements, c))
	t.Run("SendKeys", runTest(testSendKeys, c))
	t.Run("Click", runTest(testClick, c))
	t.Run("Select", runTest(testSelect, c))
	t.Run("ElementState", runTest(testElementState, c))
	t.Run("Geometry", runTest(testGeometry, c))
	t.Run("CSSProperty", runTest(testCSSProperty, c))
	t.Run("Equal", runTest(testEqual, c))
	t.Run("StaleElement", runTest(testStaleElement, c))
	t.Run("Cookies", runTest(testCookies, c))
	t.Run("ExecuteScript", runTest(testExecuteScript, c))
	t.Run("ExecuteScriptOnElement", runTest(testExecuteScriptOnElement, c))
	t.Run("ExecuteScriptDisabled", runTest(testExecuteScriptDisabled, c))
	t.Run("Screenshot", runTest(testScreenshot, c))
	t.Run("ActiveElement", runTest(testActiveElement, c))
	t.Run("SwitchFrame", runTest(testSwitchFrame, c))
	t.Run("Windows", runTest(testWindows, c))
	t.Run("Alerts", runTest(testAlerts, c))
	t.Run("Log", runTest(testLog, c))
	t.Run("Quit", runTest(testQuit, c))
}

func testStatus(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	status, err := b.Status()
	if err != nil {
		t.Fatalf("b.Status() returned error: %v", err)
	}
	if status.Build.Version == "" {
		t.Errorf("b.Status() = %+v, want a build version", status)
	}
	if status.OS.Name != runtime.GOOS {
		t.Errorf("b.Status().OS.Name = %q, want %q", status.OS.Name, runtime.GOOS)
	}
}

func testNewSession(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	if diff := cmp.Diff([]string{b.SessionID()}, srv.Sessions()); diff != "" {
		t.Errorf("server sessions differ from the Bridge's (-want +got):\n%s", diff)
	}
	want := remote.Capabilities{
		BrowserName:       "firefox",
		Version:           "45.0.2",
		Platform:          remote.PlatformLinux,
		JavascriptEnabled: true,
	}
	if diff := cmp.Diff(want, b.Capabilities()); diff != "" {
		t.Errorf("b.Capabilities() returned diff (-want +got):\n%s", diff)
	}
	v, err := b.Capabilities().BrowserVersion()
	if err != nil {
		t.Fatalf("BrowserVersion() returned error: %v", err)
	}
	if v.Major != 45 {
		t.Errorf("BrowserVersion().Major = %d, want 45", v.Major)
	}

	reqs := srv.Requests()
	if len(reqs) == 0 || reqs[0].Method != "POST" || reqs[0].Path != "/session" {
		t.Fatalf("first request = %+v, want POST /session", reqs)
	}
	desired, ok := reqs[0].Body["desiredCapabilities"].(map[string]interface{})
	if !ok {
		t.Fatalf("new session body = %v, want desiredCapabilities", reqs[0].Body)
	}
	if desired["browserName"] != "firefox" || desired["platform"] != "ANY" {
		t.Errorf("desiredCapabilities = %v, want firefox on ANY", desired)
	}
}

func testRemoteCapabilities(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Chrome(remote.WithVersion("76.0.3809.25"), remote.WithPlatform(remote.PlatformMac)))
	defer quitBridge(t, b)

	caps, err := b.RemoteCapabilities()
	if err != nil {
		t.Fatalf("b.RemoteCapabilities() returned error: %v", err)
	}
	if diff := cmp.Diff(b.Capabilities(), caps); diff != "" {
		t.Errorf("b.RemoteCapabilities() returned diff (-want +got):\n%s", diff)
	}
	if caps.BrowserName != "chrome" || caps.Platform != remote.PlatformMac {
		t.Errorf("b.RemoteCapabilities() = %+v, want chrome on mac", caps)
	}
}

func testError(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	_, err := b.FindElement(remote.ByID, "no-such-element")
	wantKind(t, "b.FindElement(ByID, 'no-such-element')", err, remote.ErrNoSuchElement)

	var e *remote.Error
	if !errors.As(err, &e) {
		t.Fatalf("b.FindElement(ByID, 'no-such-element') returned %T, want *remote.Error", err)
	}
	if e.Class != "org.openqa.selenium.NoSuchElementException" {
		t.Errorf("err.Class = %q, want NoSuchElementException", e.Class)
	}
	if e.HTTPCode != 500 || e.LegacyCode != 7 {
		t.Errorf("err.HTTPCode, err.LegacyCode = %d, %d, want 500, 7", e.HTTPCode, e.LegacyCode)
	}
	if !strings.Contains(e.Message, "no-such-element") {
		t.Errorf("err.Message = %q, want it to name the selector", e.Message)
	}
}

func testUnknownCommand(t *testing.T, c Config) {
	legacy := remote.LegacyCommands()
	table := make(map[remote.CommandName][2]string)
	for _, name := range legacy.Names() {
		cmd, _ := legacy.Lookup(name)
		table[name] = [2]string{cmd.Method, cmd.Path}
	}
	const bogus remote.CommandName = "bogus"
	table[bogus] = [2]string{"GET", "/session/{sessionId}/bogus"}
	cs, err := remote.NewCommandSet(table)
	if err != nil {
		t.Fatalf("NewCommandSet() returned error: %v", err)
	}

	srv := NewServer()
	defer srv.Close()
	opts := []remote.Option{remote.WithCommands(cs)}
	if c.Transport != nil {
		opts = append(opts, remote.WithTransport(c.Transport))
	}
	b, err := remote.NewBridge(srv.URL(), remote.Firefox(), opts...)
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	defer quitBridge(t, b)

	_, err = b.Execute(bogus, nil, nil)
	wantKind(t, "b.Execute(bogus)", err, remote.ErrUnknownCommand)
	var e *remote.Error
	if errors.As(err, &e) && e.HTTPCode != 404 {
		t.Errorf("err.HTTPCode = %d, want 404", e.HTTPCode)
	}
}

func testTimeouts(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	if err := b.SetImplicitWait(200 * time.Millisecond); err != nil {
		t.Fatalf("b.SetImplicitWait(200ms) returned error: %v", err)
	}
	wait, err := b.ImplicitWait()
	if err != nil {
		t.Fatalf("b.ImplicitWait() returned error: %v", err)
	}
	if wait != 200*time.Millisecond {
		t.Errorf("b.ImplicitWait() = %s, want 200ms", wait)
	}
	if err := b.SetScriptTimeout(time.Second); err != nil {
		t.Fatalf("b.SetScriptTimeout(1s) returned error: %v", err)
	}
}

func testSpeed(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	if s, err := b.Speed(); err != nil || s != remote.Fast {
		t.Fatalf("b.Speed() = %q, %v, want %q", s, err, remote.Fast)
	}
	if err := b.SetSpeed(remote.Slow); err != nil {
		t.Fatalf("b.SetSpeed(Slow) returned error: %v", err)
	}
	if s, err := b.Speed(); err != nil || s != remote.Slow {
		t.Fatalf("b.Speed() = %q, %v, want %q", s, err, remote.Slow)
	}

	n := len(srv.Requests())
	var argErr *remote.ArgumentError
	if err := b.SetSpeed("WARP"); !errors.As(err, &argErr) {
		t.Errorf("b.SetSpeed(WARP) returned %v, want *ArgumentError", err)
	}
	if got := len(srv.Requests()); got != n {
		t.Errorf("b.SetSpeed(WARP) sent %d requests, want none", got-n)
	}
}

func testVisible(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	if err := b.SetVisible(false); err != nil {
		t.Fatalf("b.SetVisible(false) returned error: %v", err)
	}
	visible, err := b.Visible()
	if err != nil {
		t.Fatalf("b.Visible() returned error: %v", err)
	}
	if visible {
		t.Errorf("b.Visible() = true after SetVisible(false)")
	}
}

func testGet(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	u := PageURL(HomePath)
	get(t, b, HomePath)
	got, err := b.CurrentURL()
	if err != nil {
		t.Fatalf("b.CurrentURL() returned error: %v", err)
	}
	if got != u {
		t.Errorf("b.CurrentURL() = %q, want %q", got, u)
	}

	var found bool
	for _, r := range srv.Requests() {
		if r.Method == "POST" && r.Path == "/session/"+b.SessionID()+"/url" {
			found = true
			if diff := cmp.Diff(map[string]interface{}{"url": u}, r.Body); diff != "" {
				t.Errorf("get body differs (-want +got):\n%s", diff)
			}
		}
	}
	if !found {
		t.Errorf("no POST /session/%s/url request was sent", b.SessionID())
	}
}

func testNavigation(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	get(t, b, HomePath)
	get(t, b, OtherPath)

	steps := []struct {
		name string
		f    func() error
		want string
	}{
		{"Back", b.Back, HomeTitle},
		{"Forward", b.Forward, OtherTitle},
		{"Refresh", b.Refresh, OtherTitle},
	}
	for _, s := range steps {
		if err := s.f(); err != nil {
			t.Fatalf("b.%s() returned error: %v", s.name, err)
		}
		title, err := b.Title()
		if err != nil {
			t.Fatalf("b.Title() returned error: %v", err)
		}
		if title != s.want {
			t.Errorf("b.Title() after %s = %q, want %q", s.name, title, s.want)
		}
	}
}

func testPageSource(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	source, err := b.PageSource()
	if err != nil {
		t.Fatalf("b.PageSource() returned error: %v", err)
	}
	if !strings.Contains(source, `id="q"`) {
		t.Errorf("b.PageSource() = %q, want it to contain the search box", source)
	}
}

func testFindElement(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	for _, tc := range []struct {
		by      remote.By
		value   string
		wantTag string
	}{
		{remote.ByID, "q", "input"},
		{remote.ByName, "q", "input"},
		{remote.ByCSSSelector, "#q", "input"},
		{remote.ByCSSSelector, "select#s", "select"},
		{remote.ByXPATH, "//input", "input"},
		{remote.ByLinkText, "other page", "a"},
		{remote.ByPartialLinkText, "other", "a"},
		{remote.ByClassName, "note", "p"},
		{remote.ByTagName, "form", "form"},
	} {
		e := find(t, b, tc.by, tc.value)
		if e.ID() == "" {
			t.Errorf("b.FindElement(%q, %q) returned an element without id", tc.by, tc.value)
		}
		tag, err := e.TagName()
		if err != nil {
			t.Fatalf("e.TagName() returned error: %v", err)
		}
		if tag != tc.wantTag {
			t.Errorf("b.FindElement(%q, %q).TagName() = %q, want %q", tc.by, tc.value, tag, tc.wantTag)
		}
	}
}

func testFindElements(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	elems, err := b.FindElements(remote.ByClassName, "note")
	if err != nil {
		t.Fatalf("b.FindElements(ByClassName, 'note') returned error: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("len(b.FindElements(ByClassName, 'note')) = %d, want 2", len(elems))
	}
	if elems[0].ID() == elems[1].ID() {
		t.Errorf("b.FindElements() returned the same element twice: %v", elems)
	}

	elems, err = b.FindElements(remote.ByTagName, "table")
	if err != nil {
		t.Fatalf("b.FindElements(ByTagName, 'table') returned error: %v", err)
	}
	if len(elems) != 0 {
		t.Errorf("b.FindElements(ByTagName, 'table') = %v, want none", elems)
	}
}

func testInvalidSelector(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	_, err := b.FindElement(remote.ByXPATH, "input[")
	wantKind(t, "b.FindElement(ByXPATH, 'input[')", err, remote.ErrInvalidSelector)

	var argErr *remote.ArgumentError
	if _, err := b.FindElement("by magic", "q"); !errors.As(err, &argErr) {
		t.Errorf("b.FindElement('by magic', 'q') returned %v, want *ArgumentError", err)
	}
}

func testChildElements(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	form := find(t, b, remote.ByID, "form")
	sel, err := form.FindElement(remote.ByTagName, "select")
	if err != nil {
		t.Fatalf("form.FindElement(ByTagName, 'select') returned error: %v", err)
	}
	opts, err := sel.FindElements(remote.ByTagName, "option")
	if err != nil {
		t.Fatalf("sel.FindElements(ByTagName, 'option') returned error: %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("len(sel.FindElements(ByTagName, 'option')) = %d, want 2", len(opts))
	}

	_, err = sel.FindElement(remote.ByID, "other")
	wantKind(t, "sel.FindElement(ByID, 'other')", err, remote.ErrNoSuchElement)
}

func testSendKeys(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	q := find(t, b, remote.ByName, "q")
	if err := q.SendKeys("golang"); err != nil {
		t.Fatalf("q.SendKeys('golang') returned error: %v", err)
	}
	if v, err := q.Value(); err != nil || v != "golang" {
		t.Fatalf("q.Value() = %q, %v, want 'golang'", v, err)
	}
	if err := q.Clear(); err != nil {
		t.Fatalf("q.Clear() returned error: %v", err)
	}
	if v, err := q.Value(); err != nil || v != "" {
		t.Fatalf("q.Value() after Clear() = %q, %v, want ''", v, err)
	}

	const query = "héllo"
	if err := q.SendKeys(query + remote.EnterKey); err != nil {
		t.Fatalf("q.SendKeys(%q + EnterKey) returned error: %v", query, err)
	}
	result := find(t, b, remote.ByID, "result")
	text, err := result.Text()
	if err != nil {
		t.Fatalf("result.Text() returned error: %v", err)
	}
	if !strings.Contains(text, query) {
		t.Errorf("result.Text() = %q, want it to contain %q", text, query)
	}
}

func testClick(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	box := find(t, b, remote.ByID, "chuk")
	if sel, err := box.IsSelected(); err != nil || sel {
		t.Fatalf("box.IsSelected() = %t, %v, want false", sel, err)
	}
	if err := box.Click(); err != nil {
		t.Fatalf("box.Click() returned error: %v", err)
	}
	if sel, err := box.IsSelected(); err != nil || !sel {
		t.Fatalf("box.IsSelected() after Click() = %t, %v, want true", sel, err)
	}
	if sel, err := box.Toggle(); err != nil || sel {
		t.Fatalf("box.Toggle() = %t, %v, want false", sel, err)
	}
	if err := box.Select(); err != nil {
		t.Fatalf("box.Select() returned error: %v", err)
	}
	if sel, err := box.IsSelected(); err != nil || !sel {
		t.Fatalf("box.IsSelected() after Select() = %t, %v, want true", sel, err)
	}

	q := find(t, b, remote.ByID, "q")
	err := q.Select()
	wantKind(t, "q.Select()", err, remote.ErrElementNotSelectable)

	if err := find(t, b, remote.ByLinkText, "other page").Click(); err != nil {
		t.Fatalf("link.Click() returned error: %v", err)
	}
	if title, err := b.Title(); err != nil || title != OtherTitle {
		t.Errorf("b.Title() after clicking the link = %q, %v, want %q", title, err, OtherTitle)
	}

	get(t, b, HomePath)
	if err := find(t, b, remote.ByID, "form").Submit(); err != nil {
		t.Fatalf("form.Submit() returned error: %v", err)
	}
	u, err := b.CurrentURL()
	if err != nil {
		t.Fatalf("b.CurrentURL() returned error: %v", err)
	}
	if !strings.Contains(u, "/search?") || !strings.Contains(u, "s=first_value") {
		t.Errorf("b.CurrentURL() after Submit() = %q, want the search page with the form values", u)
	}
}

func testSelect(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	selectedText := func(s *remote.SelectElement) string {
		t.Helper()
		o, err := s.FirstSelectedOption()
		if err != nil {
			t.Fatalf("s.FirstSelectedOption() returned error: %v", err)
		}
		text, err := o.Text()
		if err != nil {
			t.Fatalf("option.Text() returned error: %v", err)
		}
		return text
	}

	single, err := remote.NewSelect(find(t, b, remote.ByID, "s"))
	if err != nil {
		t.Fatalf("NewSelect(s) returned error: %v", err)
	}
	if single.IsMultiple() {
		t.Errorf("single.IsMultiple() = true, want false")
	}
	if got := selectedText(single); got != "First Value" {
		t.Errorf("initially selected option = %q, want 'First Value'", got)
	}
	if err := single.SelectByValue("second_value"); err != nil {
		t.Fatalf("single.SelectByValue('second_value') returned error: %v", err)
	}
	if got := selectedText(single); got != "Second Value" {
		t.Errorf("selected option = %q, want 'Second Value'", got)
	}
	if err := single.SelectByVisibleText("First Value"); err != nil {
		t.Fatalf("single.SelectByVisibleText('First Value') returned error: %v", err)
	}
	if got := selectedText(single); got != "First Value" {
		t.Errorf("selected option = %q, want 'First Value'", got)
	}
	if err := single.SelectByIndex(1); err != nil {
		t.Fatalf("single.SelectByIndex(1) returned error: %v", err)
	}
	if got := selectedText(single); got != "Second Value" {
		t.Errorf("selected option = %q, want 'Second Value'", got)
	}
	wantKind(t, "single.SelectByValue('nope')", single.SelectByValue("nope"), remote.ErrNoSuchElement)
	wantKind(t, "single.DeselectAll()", single.DeselectAll(), remote.ErrInvalidElementState)

	multi, err := remote.NewSelect(find(t, b, remote.ByID, "m"))
	if err != nil {
		t.Fatalf("NewSelect(m) returned error: %v", err)
	}
	if !multi.IsMultiple() {
		t.Errorf("multi.IsMultiple() = false, want true")
	}
	if err := multi.SelectByValue("a"); err != nil {
		t.Fatalf("multi.SelectByValue('a') returned error: %v", err)
	}
	if err := multi.SelectByVisibleText("Charlie Delta"); err != nil {
		t.Fatalf("multi.SelectByVisibleText('Charlie Delta') returned error: %v", err)
	}
	opts, err := multi.SelectedOptions()
	if err != nil {
		t.Fatalf("multi.SelectedOptions() returned error: %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("len(multi.SelectedOptions()) = %d, want 2", len(opts))
	}
	if err := multi.DeselectByValue("a"); err != nil {
		t.Fatalf("multi.DeselectByValue('a') returned error: %v", err)
	}
	if err := multi.DeselectAll(); err != nil {
		t.Fatalf("multi.DeselectAll() returned error: %v", err)
	}
	if opts, err := multi.SelectedOptions(); err != nil || len(opts) != 0 {
		t.Errorf("multi.SelectedOptions() after DeselectAll() = %v, %v, want none", opts, err)
	}
	_, err = multi.FirstSelectedOption()
	wantKind(t, "multi.FirstSelectedOption()", err, remote.ErrNoSuchElement)

	if _, err := remote.NewSelect(find(t, b, remote.ByID, "q")); err == nil {
		t.Errorf("NewSelect(q) returned no error for an <input>")
	}
}

func testElementState(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	hidden := find(t, b, remote.ByID, "hidden")
	if shown, err := hidden.IsDisplayed(); err != nil || shown {
		t.Errorf("hidden.IsDisplayed() = %t, %v, want false", shown, err)
	}
	if text, err := hidden.Text(); err != nil || text != "" {
		t.Errorf("hidden.Text() = %q, %v, want ''", text, err)
	}
	wantKind(t, "hidden.Click()", hidden.Click(), remote.ErrElementNotVisible)

	disabled := find(t, b, remote.ByID, "disabled")
	if enabled, err := disabled.IsEnabled(); err != nil || enabled {
		t.Errorf("disabled.IsEnabled() = %t, %v, want false", enabled, err)
	}
	wantKind(t, "disabled.SendKeys('x')", disabled.SendKeys("x"), remote.ErrInvalidElementState)

	q := find(t, b, remote.ByID, "q")
	if v, err := q.Attribute("name"); err != nil || v != "q" {
		t.Errorf("q.Attribute('name') = %q, %v, want 'q'", v, err)
	}
	if v, err := q.Attribute("no-such-attribute"); err != nil || v != "" {
		t.Errorf("q.Attribute('no-such-attribute') = %q, %v, want ''", v, err)
	}
	if err := q.Hover(); err != nil {
		t.Errorf("q.Hover() returned error: %v", err)
	}
}

func testGeometry(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	q := find(t, b, remote.ByID, "q")
	loc, err := q.Location()
	if err != nil {
		t.Fatalf("q.Location() returned error: %v", err)
	}
	inView, err := q.LocationInView()
	if err != nil {
		t.Fatalf("q.LocationInView() returned error: %v", err)
	}
	if *loc != *inView {
		t.Errorf("q.Location() = %+v, q.LocationInView() = %+v, want equal", loc, inView)
	}
	size, err := q.Size()
	if err != nil {
		t.Fatalf("q.Size() returned error: %v", err)
	}
	if size.Width == 0 || size.Height == 0 {
		t.Errorf("q.Size() = %+v, want non-zero", size)
	}

	if err := q.Drag(10, 5); err != nil {
		t.Fatalf("q.Drag(10, 5) returned error: %v", err)
	}
	moved, err := q.Location()
	if err != nil {
		t.Fatalf("q.Location() returned error: %v", err)
	}
	if want := (remote.Point{X: loc.X + 10, Y: loc.Y + 5}); *moved != want {
		t.Errorf("q.Location() after Drag(10, 5) = %+v, want %+v", moved, want)
	}
}

func testCSSProperty(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	q := find(t, b, remote.ByID, "q")
	if color, err := q.CSSProperty("color"); err != nil || color != "rgba(0, 0, 0, 1)" {
		t.Errorf("q.CSSProperty('color') = %q, %v, want black", color, err)
	}
	if err := q.SetCSSProperty("color", "rgba(255, 0, 0, 1)"); err != nil {
		t.Fatalf("q.SetCSSProperty('color') returned error: %v", err)
	}
	if color, err := q.CSSProperty("color"); err != nil || color != "rgba(255, 0, 0, 1)" {
		t.Errorf("q.CSSProperty('color') = %q, %v, want red", color, err)
	}
}

func testEqual(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	q1 := find(t, b, remote.ByID, "q")
	q2 := find(t, b, remote.ByName, "q")
	n := len(srv.Requests())
	if eq, err := q1.Equal(q2); err != nil || !eq {
		t.Errorf("q1.Equal(q2) = %t, %v, want true", eq, err)
	}
	if got := len(srv.Requests()); got != n {
		t.Errorf("q1.Equal(q2) sent %d requests for identical ids, want none", got-n)
	}

	submit := find(t, b, remote.ByID, "submit")
	if eq, err := q1.Equal(submit); err != nil || eq {
		t.Errorf("q1.Equal(submit) = %t, %v, want false", eq, err)
	}
}

func testStaleElement(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	q := find(t, b, remote.ByID, "q")
	if err := b.Refresh(); err != nil {
		t.Fatalf("b.Refresh() returned error: %v", err)
	}
	wantKind(t, "q.Click() after Refresh()", q.Click(), remote.ErrStaleElementReference)
}

func testCookies(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	for _, name := range []string{"a", "b"} {
		if err := b.AddCookie(&remote.Cookie{Name: name, Value: "value-" + name, Path: "/"}); err != nil {
			t.Fatalf("b.AddCookie(%q) returned error: %v", name, err)
		}
	}
	cookies, err := b.Cookies()
	if err != nil {
		t.Fatalf("b.Cookies() returned error: %v", err)
	}
	want := []remote.Cookie{
		{Name: "a", Value: "value-a", Path: "/"},
		{Name: "b", Value: "value-b", Path: "/"},
	}
	if diff := cmp.Diff(want, cookies); diff != "" {
		t.Errorf("b.Cookies() returned diff (-want +got):\n%s", diff)
	}

	cookie, err := b.Cookie("b")
	if err != nil {
		t.Fatalf("b.Cookie('b') returned error: %v", err)
	}
	if cookie == nil || cookie.Value != "value-b" {
		t.Errorf("b.Cookie('b') = %+v, want value-b", cookie)
	}
	if cookie, err := b.Cookie("missing"); err != nil || cookie != nil {
		t.Errorf("b.Cookie('missing') = %+v, %v, want nil", cookie, err)
	}

	err = b.AddCookie(&remote.Cookie{Name: "x", Value: "y", Domain: "other.org"})
	wantKind(t, "b.AddCookie(domain other.org)", err, remote.ErrInvalidCookieDomain)

	if err := b.DeleteCookie("a"); err != nil {
		t.Fatalf("b.DeleteCookie('a') returned error: %v", err)
	}
	if cookies, err := b.Cookies(); err != nil || len(cookies) != 1 {
		t.Errorf("b.Cookies() after DeleteCookie('a') = %v, %v, want one cookie", cookies, err)
	}
	if err := b.DeleteAllCookies(); err != nil {
		t.Fatalf("b.DeleteAllCookies() returned error: %v", err)
	}
	if cookies, err := b.Cookies(); err != nil || len(cookies) != 0 {
		t.Errorf("b.Cookies() after DeleteAllCookies() = %v, %v, want none", cookies, err)
	}
}

func testExecuteScript(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	got, err := b.ExecuteScript("return document.title;")
	if err != nil {
		t.Fatalf("b.ExecuteScript('return document.title;') returned error: %v", err)
	}
	if got != HomeTitle {
		t.Errorf("b.ExecuteScript('return document.title;') = %v, want %q", got, HomeTitle)
	}

	got, err = b.ExecuteScript("return arguments;", "a", 1.5, true)
	if err != nil {
		t.Fatalf("b.ExecuteScript('return arguments;') returned error: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"a", 1.5, true}, got); diff != "" {
		t.Errorf("b.ExecuteScript('return arguments;') returned diff (-want +got):\n%s", diff)
	}

	got, err = b.ExecuteAsyncScript("arguments[arguments.length - 1](arguments[0]);", "done")
	if err != nil {
		t.Fatalf("b.ExecuteAsyncScript() returned error: %v", err)
	}
	if got != "done" {
		t.Errorf("b.ExecuteAsyncScript() = %v, want 'done'", got)
	}

	srv.HandleScript("return 6 * 7;", func([]interface{}) (interface{}, error) { return 42, nil })
	if got, err := b.ExecuteScript("return 6 * 7;"); err != nil || got != 42.0 {
		t.Errorf("b.ExecuteScript('return 6 * 7;') = %v, %v, want 42", got, err)
	}

	_, err = b.ExecuteScript("throw 'up';")
	wantKind(t, "b.ExecuteScript('throw')", err, remote.ErrJavascript)

	// No arguments are sent as an empty list.
	if _, err := b.ExecuteScript("return arguments;"); err != nil {
		t.Fatalf("b.ExecuteScript('return arguments;') returned error: %v", err)
	}
	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	if diff := cmp.Diff([]interface{}{}, last.Body["args"]); diff != "" {
		t.Errorf("args sent without arguments differ (-want +got):\n%s", diff)
	}
}

func testExecuteScriptOnElement(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	q := find(t, b, remote.ByID, "q")
	got, err := b.ExecuteScript("return arguments[0];", q)
	if err != nil {
		t.Fatalf("b.ExecuteScript('return arguments[0];', q) returned error: %v", err)
	}
	e, ok := got.(*remote.Element)
	if !ok {
		t.Fatalf("b.ExecuteScript('return arguments[0];', q) = %T, want *remote.Element", got)
	}
	if e.ID() != q.ID() {
		t.Errorf("returned element id = %q, want %q", e.ID(), q.ID())
	}

	if tag, err := b.ExecuteScript("return arguments[0].tagName;", q); err != nil || tag != "INPUT" {
		t.Errorf("b.ExecuteScript('return arguments[0].tagName;', q) = %v, %v, want INPUT", tag, err)
	}

	got, err = b.ExecuteScript("return {title: document.title, elements: document.getElementsByTagName(arguments[0])};", "select")
	if err != nil {
		t.Fatalf("b.ExecuteScript(nested) returned error: %v", err)
	}
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("b.ExecuteScript(nested) = %T, want a map", got)
	}
	elems, ok := m["elements"].([]interface{})
	if !ok || len(elems) != 2 {
		t.Fatalf("b.ExecuteScript(nested)[elements] = %v, want two elements", m["elements"])
	}
	for _, v := range elems {
		e, ok := v.(*remote.Element)
		if !ok {
			t.Fatalf("nested element = %T, want *remote.Element", v)
		}
		if tag, err := e.TagName(); err != nil || tag != "select" {
			t.Errorf("nested element TagName() = %q, %v, want select", tag, err)
		}
	}
}

func testExecuteScriptDisabled(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.HTMLUnit())
	defer quitBridge(t, b)

	n := len(srv.Requests())
	_, err := b.ExecuteScript("return 1;")
	if !errors.Is(err, remote.ErrUnsupportedOperation) {
		t.Errorf("b.ExecuteScript() with JavaScript disabled returned %v, want ErrUnsupportedOperation", err)
	}
	_, err = b.ExecuteAsyncScript("return 1;")
	if !errors.Is(err, remote.ErrUnsupportedOperation) {
		t.Errorf("b.ExecuteAsyncScript() with JavaScript disabled returned %v, want ErrUnsupportedOperation", err)
	}
	if got := len(srv.Requests()); got != n {
		t.Errorf("scripts with JavaScript disabled sent %d requests, want none", got-n)
	}
}

func testScreenshot(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	data, err := b.Screenshot()
	if err != nil {
		t.Fatalf("b.Screenshot() returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte(PNGHeader)) {
		t.Errorf("b.Screenshot() = %q, want PNG data", data)
	}
}

func testActiveElement(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	active, err := b.ActiveElement()
	if err != nil {
		t.Fatalf("b.ActiveElement() returned error: %v", err)
	}
	if name, err := active.Attribute("name"); err != nil || name != "q" {
		t.Errorf("b.ActiveElement().Attribute('name') = %q, %v, want 'q'", name, err)
	}
}

func testSwitchFrame(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, FramePath)

	const (
		insideFrame  = "chuk"
		outsideFrame = "outsideOfFrame"
	)
	_, err := b.FindElement(remote.ByID, insideFrame)
	wantKind(t, "b.FindElement(inside frame)", err, remote.ErrNoSuchElement)

	iframe := find(t, b, remote.ByTagName, "iframe")
	for _, frame := range []interface{}{"iframeID", "iframeName", 0, iframe} {
		if err := b.SwitchToFrame(frame); err != nil {
			t.Fatalf("b.SwitchToFrame(%v) returned error: %v", frame, err)
		}
		find(t, b, remote.ByID, insideFrame)
		if err := b.SwitchToFrame(nil); err != nil {
			t.Fatalf("b.SwitchToFrame(nil) returned error: %v", err)
		}
		find(t, b, remote.ByID, outsideFrame)
	}

	wantKind(t, "b.SwitchToFrame('nope')", b.SwitchToFrame("nope"), remote.ErrNoSuchFrame)
	var argErr *remote.ArgumentError
	if err := b.SwitchToFrame(1.5); !errors.As(err, &argErr) {
		t.Errorf("b.SwitchToFrame(1.5) returned %v, want *ArgumentError", err)
	}
}

func testWindows(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, HomePath)

	first, err := b.WindowHandle()
	if err != nil {
		t.Fatalf("b.WindowHandle() returned error: %v", err)
	}
	if first == "" {
		t.Fatal("b.WindowHandle() returned an empty handle")
	}

	if err := find(t, b, remote.ByID, "popup").Click(); err != nil {
		t.Fatalf("popup.Click() returned error: %v", err)
	}
	handles, err := b.WindowHandles()
	if err != nil {
		t.Fatalf("b.WindowHandles() returned error: %v", err)
	}
	if len(handles) != 2 || handles[0] != first {
		t.Fatalf("b.WindowHandles() = %v, want %q and one more", handles, first)
	}

	if err := b.SwitchToWindow(handles[1]); err != nil {
		t.Fatalf("b.SwitchToWindow(%q) returned error: %v", handles[1], err)
	}
	if h, err := b.WindowHandle(); err != nil || h != handles[1] {
		t.Errorf("b.WindowHandle() = %q, %v, want %q", h, err, handles[1])
	}
	wantKind(t, "b.SwitchToWindow('nope')", b.SwitchToWindow("nope"), remote.ErrNoSuchWindow)

	if err := b.Close(); err != nil {
		t.Fatalf("b.Close() returned error: %v", err)
	}
	if handles, err := b.WindowHandles(); err != nil || len(handles) != 1 {
		t.Errorf("b.WindowHandles() after Close() = %v, %v, want one window", handles, err)
	}
}

func testAlerts(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)
	get(t, b, AlertPath)

	text, err := b.AlertText()
	if err != nil {
		t.Fatalf("b.AlertText() returned error: %v", err)
	}
	if text != AlertText {
		t.Errorf("b.AlertText() = %q, want %q", text, AlertText)
	}
	if err := b.SetAlertText("typed"); err != nil {
		t.Fatalf("b.SetAlertText() returned error: %v", err)
	}
	if err := b.AcceptAlert(); err != nil {
		t.Fatalf("b.AcceptAlert() returned error: %v", err)
	}
	wantKind(t, "b.AcceptAlert() without alert", b.AcceptAlert(), remote.ErrNoAlertOpen)

	get(t, b, AlertPath)
	if err := b.DismissAlert(); err != nil {
		t.Fatalf("b.DismissAlert() returned error: %v", err)
	}
	_, err = b.AlertText()
	wantKind(t, "b.AlertText() without alert", err, remote.ErrNoAlertOpen)
}

func testQuit(t *testing.T, c Config) {
	b, srv := newBridge(t, c, remote.Firefox())
	if err := b.Quit(); err != nil {
		t.Fatalf("b.Quit() returned error: %v", err)
	}
	if ids := srv.Sessions(); len(ids) != 0 {
		t.Errorf("server sessions after Quit() = %v, want none", ids)
	}
	if id := b.SessionID(); id != "" {
		t.Errorf("b.SessionID() after Quit() = %q, want ''", id)
	}

	n := len(srv.Requests())
	if _, err := b.Title(); !errors.Is(err, remote.ErrSessionClosed) {
		t.Errorf("b.Title() after Quit() returned %v, want ErrSessionClosed", err)
	}
	if err := b.Quit(); err != nil {
		t.Errorf("second b.Quit() returned error: %v", err)
	}
	if got := len(srv.Requests()); got != n {
		t.Errorf("commands after Quit() sent %d requests, want none", got-n)
	}
}

func testLog(t *testing.T, c Config) {
	b, _ := newBridge(t, c, remote.Firefox())
	defer quitBridge(t, b)

	types, err := b.LogTypes()
	if err != nil {
		t.Fatalf("b.LogTypes() returned error: %v", err)
	}
	if diff := cmp.Diff([]log.Type{log.Browser, log.Server}, types); diff != "" {
		t.Errorf("b.LogTypes() returned diff (-want +got):\n%s", diff)
	}

	// Drain the entries of the session start.
	if _, err := b.Log(log.Browser); err != nil {
		t.Fatalf("b.Log(%q) returned error: %v", log.Browser, err)
	}
	get(t, b, HomePath)
	get(t, b, "/missing")

	msgs, err := b.Log(log.Browser)
	if err != nil {
		t.Fatalf("b.Log(%q) returned error: %v", log.Browser, err)
	}
	if len(msgs) != 2 {
		t.Fatalf("b.Log(%q) returned %d messages, want 2: %+v", log.Browser, len(msgs), msgs)
	}
	if msgs[0].Level != log.Info || !strings.Contains(msgs[0].Message, PageURL(HomePath)) {
		t.Errorf("msgs[0] = %+v, want an INFO entry for %s", msgs[0], PageURL(HomePath))
	}
	if msgs[0].Timestamp.IsZero() {
		t.Errorf("msgs[0].Timestamp is zero")
	}
	severe := log.Filter(msgs, log.Warning)
	if len(severe) != 1 || severe[0].Level != log.Severe {
		t.Errorf("log.Filter(msgs, WARNING) = %+v, want the 404 entry", severe)
	}

	msgs, err = b.Log(log.Browser)
	if err != nil {
		t.Fatalf("b.Log(%q) returned error: %v", log.Browser, err)
	}
	if len(msgs) != 0 {
		t.Errorf("second b.Log(%q) = %+v, want no messages", log.Browser, msgs)
	}

	server, err := b.Log(log.Server)
	if err != nil {
		t.Fatalf("b.Log(%q) returned error: %v", log.Server, err)
	}
	if len(server) != 1 || !strings.Contains(server[0].Message, b.SessionID()) {
		t.Errorf("b.Log(%q) = %+v, want the session creation entry", log.Server, server)
	}

	_, err = b.Log(log.Performance)
	wantKind(t, "b.Log(performance)", err, remote.ErrUnknown)
}
