package remotetest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wanmail/remote"
	"github.com/wanmail/remote/log"
)

// BasePath is the path the fake server answers on.
const BasePath = "/wd/hub"

// PNGHeader starts every screenshot taken by the fake server.
const PNGHeader = "\x89PNG\r\n\x1a\n"

// Request is a command received by the fake server.
type Request struct {
	Method string
	// Path is relative to BasePath.
	Path string
	Body map[string]interface{}
}

// ScriptFunc runs a script registered with HandleScript. Element references
// in args are passed through as received.
type ScriptFunc func(args []interface{}) (interface{}, error)

// Server is an in-memory legacy JSON wire protocol server. It serves a small
// set of fixed pages and keeps per-session state (history, cookies, windows,
// frames, alerts) the way a Selenium 2 server does.
type Server struct {
	// RedirectNewSession makes new session requests answer with a 303 to the
	// session's URL, as Selenium 2 servers do.
	RedirectNewSession bool

	srv      *httptest.Server
	mu       sync.Mutex
	sessions map[string]*session
	requests []Request
	scripts  map[string]ScriptFunc
}

// NewServer starts a fake server. Close it when done.
func NewServer() *Server {
	s := &Server{
		sessions: make(map[string]*session),
		scripts:  make(map[string]ScriptFunc),
	}
	s.srv = httptest.NewServer(s)
	return s
}

// URL returns the URL to pass to remote.NewBridge.
func (s *Server) URL() string {
	return s.srv.URL + BasePath
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// HandleScript makes the server answer script with f.
func (s *Server) HandleScript(script string, f ScriptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[script] = f
}

// Requests returns the commands received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Sessions returns the ids of the live sessions, sorted.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type wireError struct {
	status int
	class  string
	msg    string
	// code is the HTTP status, 500 if zero.
	code int
}

func (e *wireError) Error() string {
	return e.msg
}

func (e *wireError) with(format string, args ...interface{}) *wireError {
	c := *e
	c.msg = fmt.Sprintf(format, args...)
	return &c
}

var (
	errNoSession     = &wireError{status: 6, class: "org.openqa.selenium.remote.SessionNotFoundException", code: http.StatusNotFound}
	errNoSuchElement = &wireError{status: 7, class: "org.openqa.selenium.NoSuchElementException"}
	errNoSuchFrame   = &wireError{status: 8, class: "org.openqa.selenium.NoSuchFrameException"}
	errUnknownCmd    = &wireError{status: 9, class: "org.openqa.selenium.UnsupportedCommandException", code: http.StatusNotFound}
	errStale         = &wireError{status: 10, class: "org.openqa.selenium.StaleElementReferenceException"}
	errNotVisible    = &wireError{status: 11, class: "org.openqa.selenium.ElementNotVisibleException"}
	errInvalidState  = &wireError{status: 12, class: "org.openqa.selenium.InvalidElementStateException"}
	errUnknown       = &wireError{status: 13, class: "org.openqa.selenium.WebDriverException"}
	errNotSelectable = &wireError{status: 15, class: "org.openqa.selenium.ElementNotSelectableException"}
	errJavascript    = &wireError{status: 17, class: "org.openqa.selenium.JavascriptException"}
	errNoSuchWindow  = &wireError{status: 23, class: "org.openqa.selenium.NoSuchWindowException"}
	errCookieDomain  = &wireError{status: 24, class: "org.openqa.selenium.InvalidCookieDomainException"}
	errNoAlert       = &wireError{status: 27, class: "org.openqa.selenium.NoAlertPresentException"}
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(code)
	w.Write(data)
}

func sessionValue(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

func writeValue(w http.ResponseWriter, id string, v interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionValue(id),
		"status":    remote.Success,
		"value":     v,
	})
}

func writeError(w http.ResponseWriter, id string, err error) {
	e, ok := err.(*wireError)
	if !ok {
		e = errUnknown.with("%v", err)
	}
	code := e.code
	if code == 0 {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, map[string]interface{}{
		"sessionId": sessionValue(id),
		"status":    e.status,
		"value": map[string]string{
			"message": e.msg,
			"class":   e.class,
		},
	})
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(strings.Trim(p, "/"), "/") {
		if s == "" {
			continue
		}
		if u, err := url.PathUnescape(s); err == nil {
			s = u
		}
		segs = append(segs, s)
	}
	return segs
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, BasePath) {
		http.NotFound(w, r)
		return
	}
	rel := strings.TrimPrefix(r.URL.EscapedPath(), BasePath)

	var body map[string]interface{}
	data, err := io.ReadAll(r.Body)
	if err == nil && len(bytes.TrimSpace(data)) > 0 {
		err = json.Unmarshal(data, &body)
	}
	if err != nil {
		writeError(w, "", errUnknown.with("bad request body: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: rel, Body: body})

	segs := splitPath(rel)
	switch {
	case r.Method == http.MethodGet && len(segs) == 1 && segs[0] == "status":
		writeValue(w, "", serverStatus())
	case r.Method == http.MethodPost && len(segs) == 1 && segs[0] == "session":
		s.newSession(w, body)
	case len(segs) >= 2 && segs[0] == "session":
		sess, ok := s.sessions[segs[1]]
		if !ok {
			writeError(w, segs[1], errNoSession.with("session %s does not exist", segs[1]))
			return
		}
		if r.Method == http.MethodDelete && len(segs) == 2 {
			delete(s.sessions, sess.id)
			writeValue(w, sess.id, nil)
			return
		}
		v, err := sess.dispatch(r.Method, segs[2:], body)
		switch {
		case err != nil:
			writeError(w, sess.id, err)
		case v == nil && r.Method != http.MethodGet:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeValue(w, sess.id, v)
		}
	default:
		writeError(w, "", errUnknownCmd.with("unrecognized command: %s %s", r.Method, rel))
	}
}

func serverStatus() interface{} {
	return map[string]interface{}{
		"java": map[string]string{"version": "1.8.0_92"},
		"build": map[string]string{
			"version":  "2.53.1",
			"revision": "a36b8b1",
			"time":     "2016-06-30 17:37:03",
		},
		"os": map[string]string{
			"arch":    runtime.GOARCH,
			"name":    runtime.GOOS,
			"version": "fake",
		},
	}
}

func (s *Server) newSession(w http.ResponseWriter, body map[string]interface{}) {
	raw, err := json.Marshal(body["desiredCapabilities"])
	if err != nil {
		writeError(w, "", err)
		return
	}
	desired, err := remote.ParseCapabilities(raw)
	if err != nil {
		writeError(w, "", errUnknown.with("bad desired capabilities: %v", err))
		return
	}

	sess := newSession(uuid.NewString(), desired, s.scripts)
	s.sessions[sess.id] = sess
	if s.RedirectNewSession {
		w.Header().Set("Location", BasePath+"/session/"+sess.id)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	writeValue(w, sess.id, sess.capabilities())
}

type session struct {
	id      string
	caps    remote.Capabilities
	scripts map[string]ScriptFunc

	history []string
	pos     int
	top     *page
	doc     *page
	nodes   map[string]*node
	nextID  int

	cookies      []remote.Cookie
	implicitWait float64
	scriptWait   float64
	speed        remote.Speed
	visible      bool
	windows      []string
	window       string

	logs map[log.Type][]log.Message
}

func newSession(id string, desired remote.Capabilities, scripts map[string]ScriptFunc) *session {
	caps := desired
	if caps.BrowserName == "" {
		caps.BrowserName = "firefox"
	}
	if caps.Version == "" {
		caps.Version = "45.0.2"
	}
	if caps.Platform == remote.PlatformAny {
		caps.Platform = remote.PlatformLinux
	}
	handle := uuid.NewString()
	sess := &session{
		id:      id,
		caps:    caps,
		scripts: scripts,
		speed:   remote.Fast,
		visible: true,
		windows: []string{handle},
		window:  handle,
		logs:    map[log.Type][]log.Message{log.Browser: nil, log.Server: nil},
	}
	sess.logf(log.Server, log.Info, "session %s created for %s", id, caps.BrowserName)
	sess.navigate(BlankURL)
	return sess
}

func (s *session) capabilities() interface{} {
	return map[string]interface{}{
		"browserName":                s.caps.BrowserName,
		"version":                    s.caps.Version,
		"platform":                   strings.ToUpper(s.caps.Platform.String()),
		"javascriptEnabled":          s.caps.JavascriptEnabled,
		"takesScreenshot":            true,
		"cssSelectorsEnabled":        true,
		"webdriver.remote.sessionid": s.id,
	}
}

func (s *session) newID() string {
	s.nextID++
	return fmt.Sprintf(":wdc:%d", s.nextID)
}

func (s *session) register(p *page) {
	add := func(n *node) {
		s.nodes[n.id] = n
		if n.frame != nil {
			s.register(n.frame)
		}
	}
	add(p.root)
	p.root.walk(add)
}

func (s *session) loadPage() {
	s.nodes = make(map[string]*node)
	s.top = load(s.history[s.pos], s.newID)
	s.register(s.top)
	s.doc = s.top
	if s.top.title == notFoundTitle {
		s.logf(log.Browser, log.Severe, "%s - Failed to load resource: the server responded with a status of 404 (Not Found)", s.top.url)
	} else {
		s.logf(log.Browser, log.Info, "loaded %s", s.top.url)
	}
}

func (s *session) logf(typ log.Type, level log.Level, format string, args ...interface{}) {
	s.logs[typ] = append(s.logs[typ], log.Message{
		Timestamp: time.Now(),
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (s *session) navigate(rawURL string) {
	if s.history != nil {
		s.history = s.history[:s.pos+1]
	}
	s.history = append(s.history, rawURL)
	s.pos = len(s.history) - 1
	s.loadPage()
}

func (s *session) resolve(ref string) string {
	base, err := url.Parse(s.history[s.pos])
	if err != nil || base.Opaque != "" {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

type route struct {
	method string
	path   []string
	handle func(s *session, params []string, body map[string]interface{}) (interface{}, error)
}

func r(method, path string, f func(*session, []string, map[string]interface{}) (interface{}, error)) route {
	return route{method: method, path: splitPath(path), handle: f}
}

var routes []route

func init() {
	routes = []route{
		r("GET", "", (*session).getCapabilities),
		r("GET", "url", (*session).currentURL),
		r("POST", "url", (*session).get),
		r("POST", "back", (*session).back),
		r("POST", "forward", (*session).forward),
		r("POST", "refresh", (*session).refresh),
		r("GET", "title", (*session).title),
		r("GET", "source", (*session).source),
		r("GET", "screenshot", (*session).screenshot),
		r("POST", "execute", (*session).execute),
		r("POST", "execute_async", (*session).execute),
		r("GET", "speed", (*session).getSpeed),
		r("POST", "speed", (*session).setSpeed),
		r("POST", "accept_alert", (*session).closeAlert),
		r("POST", "dismiss_alert", (*session).closeAlert),
		r("GET", "alert_text", (*session).alertText),
		r("POST", "alert_text", (*session).setAlertText),
		r("POST", "frame", (*session).switchToFrame),
		r("POST", "window", (*session).switchToWindow),
		r("DELETE", "window", (*session).closeWindow),
		r("GET", "window_handle", (*session).windowHandle),
		r("GET", "window_handles", (*session).windowHandles),
		r("GET", "visible", (*session).getVisible),
		r("POST", "visible", (*session).setVisible),
		r("GET", "timeouts/implicit_wait", (*session).getImplicitWait),
		r("POST", "timeouts/implicit_wait", (*session).setImplicitWait),
		r("POST", "timeouts/async_script", (*session).setScriptTimeout),
		r("GET", "cookie", (*session).getCookies),
		r("POST", "cookie", (*session).addCookie),
		r("DELETE", "cookie", (*session).deleteCookies),
		r("DELETE", "cookie/:name", (*session).deleteCookie),
		r("POST", "element", (*session).findElement),
		r("POST", "elements", (*session).findElements),
		r("POST", "element/active", (*session).activeElement),
		r("POST", "element/:id/element", (*session).findElement),
		r("POST", "element/:id/elements", (*session).findElements),
		r("POST", "element/:id/click", (*session).click),
		r("POST", "element/:id/clear", (*session).clear),
		r("POST", "element/:id/submit", (*session).submit),
		r("POST", "element/:id/toggle", (*session).toggle),
		r("GET", "element/:id/text", (*session).text),
		r("POST", "element/:id/value", (*session).sendKeys),
		r("GET", "element/:id/value", (*session).value),
		r("GET", "element/:id/name", (*session).tagName),
		r("GET", "element/:id/selected", (*session).isSelected),
		r("POST", "element/:id/selected", (*session).setSelected),
		r("GET", "element/:id/enabled", (*session).isEnabled),
		r("GET", "element/:id/displayed", (*session).isDisplayed),
		r("POST", "element/:id/hover", (*session).hover),
		r("POST", "element/:id/drag", (*session).drag),
		r("GET", "element/:id/location", (*session).location),
		r("GET", "element/:id/location_in_view", (*session).location),
		r("GET", "element/:id/size", (*session).size),
		r("GET", "element/:id/attribute/:name", (*session).attribute),
		r("GET", "element/:id/equals/:other", (*session).equals),
		r("GET", "element/:id/css/:name", (*session).cssProperty),
		r("POST", "element/:id/css/:name", (*session).setCSSProperty),
		r("POST", "log", (*session).getLog),
		r("GET", "log/types", (*session).logTypes),
	}
}

func (s *session) dispatch(method string, segs []string, body map[string]interface{}) (interface{}, error) {
	for _, rt := range routes {
		if rt.method != method || len(rt.path) != len(segs) {
			continue
		}
		var params []string
		ok := true
		for i, p := range rt.path {
			switch {
			case strings.HasPrefix(p, ":"):
				params = append(params, segs[i])
			case p != segs[i]:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return rt.handle(s, params, body)
		}
	}
	return nil, errUnknownCmd.with("unrecognized command: %s %s", method, strings.Join(segs, "/"))
}

func stringArg(body map[string]interface{}, key string) (string, error) {
	v, ok := body[key].(string)
	if !ok {
		return "", errUnknown.with("missing string parameter %q", key)
	}
	return v, nil
}

func numberArg(body map[string]interface{}, key string) (float64, error) {
	v, ok := body[key].(float64)
	if !ok {
		return 0, errUnknown.with("missing number parameter %q", key)
	}
	return v, nil
}

func ref(n *node) map[string]string {
	return map[string]string{"ELEMENT": n.id}
}

func (s *session) node(id string) (*node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, errStale.with("element %s is no longer attached to the DOM", id)
	}
	return n, nil
}

func refID(v interface{}) (string, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	if id, ok := m["ELEMENT"].(string); ok {
		return id, true
	}
	id, ok := m["element-6066-11e4-a52e-4f735466cecf"].(string)
	return id, ok
}

func (s *session) getCapabilities([]string, map[string]interface{}) (interface{}, error) {
	return s.capabilities(), nil
}

func (s *session) currentURL([]string, map[string]interface{}) (interface{}, error) {
	return s.history[s.pos], nil
}

func (s *session) get(_ []string, body map[string]interface{}) (interface{}, error) {
	u, err := stringArg(body, "url")
	if err != nil {
		return nil, err
	}
	s.navigate(u)
	return nil, nil
}

func (s *session) back([]string, map[string]interface{}) (interface{}, error) {
	if s.pos > 0 {
		s.pos--
		s.loadPage()
	}
	return nil, nil
}

func (s *session) forward([]string, map[string]interface{}) (interface{}, error) {
	if s.pos < len(s.history)-1 {
		s.pos++
		s.loadPage()
	}
	return nil, nil
}

func (s *session) refresh([]string, map[string]interface{}) (interface{}, error) {
	s.loadPage()
	return nil, nil
}

func (s *session) title([]string, map[string]interface{}) (interface{}, error) {
	return s.top.title, nil
}

func (s *session) source([]string, map[string]interface{}) (interface{}, error) {
	return s.doc.source(), nil
}

func (s *session) screenshot([]string, map[string]interface{}) (interface{}, error) {
	return base64.StdEncoding.EncodeToString([]byte(PNGHeader + s.top.title)), nil
}

func (s *session) execute(_ []string, body map[string]interface{}) (interface{}, error) {
	if !s.caps.JavascriptEnabled {
		return nil, errUnknown.with("JavaScript is not enabled")
	}
	script, err := stringArg(body, "script")
	if err != nil {
		return nil, err
	}
	args, _ := body["args"].([]interface{})
	for _, a := range args {
		if id, ok := refID(a); ok {
			if _, err := s.node(id); err != nil {
				return nil, err
			}
		}
	}

	switch script {
	case "return arguments[0];", "arguments[arguments.length - 1](arguments[0]);":
		if len(args) == 0 {
			return nil, nil
		}
		return args[0], nil
	case "return arguments;":
		return args, nil
	case "return document.title;":
		return s.top.title, nil
	case "return document.activeElement;":
		return ref(s.active()), nil
	case "return arguments[0].tagName;":
		if len(args) == 0 {
			return nil, errJavascript.with("arguments[0] is undefined")
		}
		id, ok := refID(args[0])
		if !ok {
			return nil, nil
		}
		n, _ := s.node(id)
		return strings.ToUpper(n.tag), nil
	case "return document.getElementsByTagName(arguments[0]);":
		return s.byTagName(args), nil
	case "return {title: document.title, elements: document.getElementsByTagName(arguments[0])};":
		return map[string]interface{}{
			"title":    s.top.title,
			"elements": s.byTagName(args),
		}, nil
	}
	if f, ok := s.scripts[script]; ok {
		return f(args)
	}
	return nil, errJavascript.with("unsupported script: %s", script)
}

func (s *session) byTagName(args []interface{}) []interface{} {
	var tag string
	if len(args) > 0 {
		tag, _ = args[0].(string)
	}
	refs := make([]interface{}, 0)
	s.doc.root.walk(func(n *node) {
		if n.tag == tag {
			refs = append(refs, ref(n))
		}
	})
	return refs
}

func (s *session) getSpeed([]string, map[string]interface{}) (interface{}, error) {
	return s.speed, nil
}

func (s *session) setSpeed(_ []string, body map[string]interface{}) (interface{}, error) {
	v, err := stringArg(body, "speed")
	if err != nil {
		return nil, err
	}
	switch speed := remote.Speed(v); speed {
	case remote.Slow, remote.Medium, remote.Fast:
		s.speed = speed
		return nil, nil
	}
	return nil, errUnknown.with("invalid speed %q", v)
}

func (s *session) closeAlert([]string, map[string]interface{}) (interface{}, error) {
	if s.top.alert == "" {
		return nil, errNoAlert.with("no alert is present")
	}
	s.top.alert = ""
	return nil, nil
}

func (s *session) alertText([]string, map[string]interface{}) (interface{}, error) {
	if s.top.alert == "" {
		return nil, errNoAlert.with("no alert is present")
	}
	return s.top.alert, nil
}

func (s *session) setAlertText(_ []string, body map[string]interface{}) (interface{}, error) {
	if s.top.alert == "" {
		return nil, errNoAlert.with("no alert is present")
	}
	if _, err := stringArg(body, "text"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *session) switchToFrame(_ []string, body map[string]interface{}) (interface{}, error) {
	id := body["id"]
	if id == nil {
		s.doc = s.top
		return nil, nil
	}

	var frames []*node
	s.doc.root.walk(func(n *node) {
		if n.tag == "iframe" && n.frame != nil {
			frames = append(frames, n)
		}
	})

	var target *node
	switch v := id.(type) {
	case string:
		for _, f := range frames {
			if f.attrs["id"] == v || f.attrs["name"] == v {
				target = f
				break
			}
		}
	case float64:
		if i := int(v); i >= 0 && i < len(frames) {
			target = frames[i]
		}
	default:
		if eid, ok := refID(v); ok {
			n, err := s.node(eid)
			if err != nil {
				return nil, err
			}
			if n.frame != nil {
				target = n
			}
		}
	}
	if target == nil {
		return nil, errNoSuchFrame.with("unable to locate frame: %v", id)
	}
	s.doc = target.frame
	return nil, nil
}

func (s *session) switchToWindow(_ []string, body map[string]interface{}) (interface{}, error) {
	name, err := stringArg(body, "name")
	if err != nil {
		return nil, err
	}
	for _, h := range s.windows {
		if h == name {
			s.window = h
			return nil, nil
		}
	}
	return nil, errNoSuchWindow.with("window %s not found", name)
}

func (s *session) closeWindow([]string, map[string]interface{}) (interface{}, error) {
	for i, h := range s.windows {
		if h == s.window {
			s.windows = append(s.windows[:i], s.windows[i+1:]...)
			s.window = ""
			if len(s.windows) > 0 {
				s.window = s.windows[0]
			}
			return nil, nil
		}
	}
	return nil, errNoSuchWindow.with("window already closed")
}

func (s *session) windowHandle([]string, map[string]interface{}) (interface{}, error) {
	if s.window == "" {
		return nil, errNoSuchWindow.with("window already closed")
	}
	return s.window, nil
}

func (s *session) windowHandles([]string, map[string]interface{}) (interface{}, error) {
	return append([]string(nil), s.windows...), nil
}

func (s *session) getVisible([]string, map[string]interface{}) (interface{}, error) {
	return s.visible, nil
}

func (s *session) setVisible(_ []string, body map[string]interface{}) (interface{}, error) {
	v, ok := body["visible"].(bool)
	if !ok {
		return nil, errUnknown.with("missing boolean parameter \"visible\"")
	}
	s.visible = v
	return nil, nil
}

func (s *session) getImplicitWait([]string, map[string]interface{}) (interface{}, error) {
	return s.implicitWait, nil
}

func (s *session) setImplicitWait(_ []string, body map[string]interface{}) (interface{}, error) {
	ms, err := numberArg(body, "ms")
	if err != nil {
		return nil, err
	}
	s.implicitWait = ms
	return nil, nil
}

func (s *session) setScriptTimeout(_ []string, body map[string]interface{}) (interface{}, error) {
	ms, err := numberArg(body, "ms")
	if err != nil {
		return nil, err
	}
	s.scriptWait = ms
	return nil, nil
}

func (s *session) getCookies([]string, map[string]interface{}) (interface{}, error) {
	return append(make([]remote.Cookie, 0, len(s.cookies)), s.cookies...), nil
}

func (s *session) addCookie(_ []string, body map[string]interface{}) (interface{}, error) {
	raw, err := json.Marshal(body["cookie"])
	if err != nil {
		return nil, err
	}
	var c remote.Cookie
	if err := json.Unmarshal(raw, &c); err != nil || c.Name == "" {
		return nil, errUnknown.with("invalid cookie: %s", raw)
	}
	if c.Domain != "" {
		u, err := url.Parse(s.history[s.pos])
		if err != nil || !strings.HasSuffix(u.Hostname(), strings.TrimPrefix(c.Domain, ".")) {
			return nil, errCookieDomain.with("cookie domain %q does not match the current page", c.Domain)
		}
	}
	for i := range s.cookies {
		if s.cookies[i].Name == c.Name {
			s.cookies[i] = c
			return nil, nil
		}
	}
	s.cookies = append(s.cookies, c)
	return nil, nil
}

func (s *session) deleteCookies([]string, map[string]interface{}) (interface{}, error) {
	s.cookies = nil
	return nil, nil
}

func (s *session) deleteCookie(params []string, _ map[string]interface{}) (interface{}, error) {
	for i := range s.cookies {
		if s.cookies[i].Name == params[0] {
			s.cookies = append(s.cookies[:i], s.cookies[i+1:]...)
			break
		}
	}
	return nil, nil
}

func (s *session) find(params []string, body map[string]interface{}) ([]*node, map[string]interface{}, error) {
	root := s.doc.root
	if len(params) > 0 {
		n, err := s.node(params[0])
		if err != nil {
			return nil, nil, err
		}
		root = n
	}
	using, _ := body["using"].(string)
	value, _ := body["value"].(string)
	match, err := matcher(remote.By(using), value)
	if err != nil {
		return nil, nil, err
	}
	var found []*node
	root.walk(func(n *node) {
		if match(n) {
			found = append(found, n)
		}
	})
	return found, map[string]interface{}{"method": using, "selector": value}, nil
}

func (s *session) findElement(params []string, body map[string]interface{}) (interface{}, error) {
	found, query, err := s.find(params, body)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		q, _ := json.Marshal(query)
		return nil, errNoSuchElement.with("Unable to locate element: %s", q)
	}
	return ref(found[0]), nil
}

func (s *session) findElements(params []string, body map[string]interface{}) (interface{}, error) {
	found, _, err := s.find(params, body)
	if err != nil {
		return nil, err
	}
	refs := make([]interface{}, 0, len(found))
	for _, n := range found {
		refs = append(refs, ref(n))
	}
	return refs, nil
}

func (s *session) active() *node {
	if s.doc.focus != nil {
		return s.doc.focus
	}
	return s.doc.root.children[0]
}

func (s *session) activeElement([]string, map[string]interface{}) (interface{}, error) {
	return ref(s.active()), nil
}

func (s *session) withNode(params []string, f func(n *node) (interface{}, error)) (interface{}, error) {
	n, err := s.node(params[0])
	if err != nil {
		return nil, err
	}
	return f(n)
}

func selectOption(n *node, selected bool) {
	sel := n.enclosing("select")
	if selected && sel != nil {
		if _, multi := sel.attrs["multiple"]; !multi {
			sel.walk(func(o *node) { o.selected = false })
		}
	}
	n.selected = selected
}

func isMultiOption(n *node) bool {
	if n.tag != "option" {
		return false
	}
	sel := n.enclosing("select")
	if sel == nil {
		return false
	}
	_, multi := sel.attrs["multiple"]
	return multi
}

func (s *session) click(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		if !n.displayed {
			return nil, errNotVisible.with("element is not currently visible and so may not be interacted with")
		}
		s.doc.focus = n
		switch {
		case isMultiOption(n):
			selectOption(n, !n.selected)
		case n.tag == "option":
			selectOption(n, true)
		case n.isCheckbox():
			n.selected = !n.selected
		case n.tag == "a" && n.attrs["href"] != "":
			if n.attrs["target"] == "_blank" {
				s.windows = append(s.windows, uuid.NewString())
				return nil, nil
			}
			s.navigate(s.resolve(n.attrs["href"]))
		case n.tag == "input" && n.attrs["type"] == "submit":
			return nil, s.submitForm(n)
		}
		return nil, nil
	})
}

func (s *session) submitForm(n *node) error {
	form := n
	if n.tag != "form" {
		form = n.enclosing("form")
	}
	if form == nil {
		return errNoSuchElement.with("element was not in a form, so could not submit")
	}
	q := url.Values{}
	form.walk(func(c *node) {
		name := c.attrs["name"]
		switch {
		case name == "" || c.attrs["type"] == "submit":
		case c.tag == "input":
			q.Add(name, c.value)
		case c.tag == "select":
			c.walk(func(o *node) {
				if o.selected {
					q.Add(name, o.value)
				}
			})
		}
	})
	s.navigate(s.resolve(form.attrs["action"] + "?" + q.Encode()))
	return nil
}

func (s *session) clear(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		if !n.enabled {
			return nil, errInvalidState.with("element is disabled")
		}
		n.value = ""
		return nil, nil
	})
}

func (s *session) submit(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return nil, s.submitForm(n)
	})
}

func (s *session) toggle(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		if !n.isCheckbox() && !isMultiOption(n) {
			return nil, errInvalidState.with("you may only toggle checkboxes or options in a multi-select")
		}
		selectOption(n, !n.selected)
		return n.selected, nil
	})
}

func (s *session) text(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.visibleText(), nil
	})
}

func (s *session) sendKeys(params []string, body map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		if !n.enabled {
			return nil, errInvalidState.with("element is disabled")
		}
		keys, _ := body["value"].([]interface{})
		var b strings.Builder
		submit := false
		for _, k := range keys {
			str, _ := k.(string)
			for _, c := range str {
				switch {
				case string(c) == remote.EnterKey || string(c) == remote.ReturnKey:
					submit = true
				case c >= '\ue000' && c <= '\uf8ff':
					// Other special keys have no effect on the value.
				default:
					b.WriteRune(c)
				}
			}
		}
		n.value += b.String()
		s.doc.focus = n
		if submit {
			return nil, s.submitForm(n)
		}
		return nil, nil
	})
}

func (s *session) value(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.value, nil
	})
}

func (s *session) tagName(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.tag, nil
	})
}

func (s *session) isSelected(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.selected, nil
	})
}

func (s *session) setSelected(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		if !n.isCheckbox() && n.tag != "option" {
			return nil, errNotSelectable.with("element is not selectable")
		}
		selectOption(n, true)
		return nil, nil
	})
}

func (s *session) isEnabled(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.enabled, nil
	})
}

func (s *session) isDisplayed(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.displayed, nil
	})
}

func (s *session) hover(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(*node) (interface{}, error) {
		return nil, nil
	})
}

func (s *session) drag(params []string, body map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		x, err := numberArg(body, "x")
		if err != nil {
			return nil, err
		}
		y, err := numberArg(body, "y")
		if err != nil {
			return nil, err
		}
		n.loc.X += int(x)
		n.loc.Y += int(y)
		return nil, nil
	})
}

func (s *session) location(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return map[string]int{"x": n.loc.X, "y": n.loc.Y}, nil
	})
}

func (s *session) size(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return map[string]int{"width": n.size.Width, "height": n.size.Height}, nil
	})
}

func (s *session) attribute(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.attribute(params[1]), nil
	})
}

func (s *session) equals(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		other, err := s.node(params[1])
		if err != nil {
			return nil, err
		}
		return n == other, nil
	})
}

func (s *session) cssProperty(params []string, _ map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		return n.css[params[1]], nil
	})
}

func (s *session) setCSSProperty(params []string, body map[string]interface{}) (interface{}, error) {
	return s.withNode(params, func(n *node) (interface{}, error) {
		v, err := stringArg(body, "value")
		if err != nil {
			return nil, err
		}
		n.css[params[1]] = v
		return nil, nil
	})
}

// getLog drains the requested buffer.
func (s *session) getLog(_ []string, body map[string]interface{}) (interface{}, error) {
	typ, err := stringArg(body, "type")
	if err != nil {
		return nil, err
	}
	msgs, ok := s.logs[log.Type(typ)]
	if !ok {
		return nil, errUnknown.with("unknown log type: %s", typ)
	}
	s.logs[log.Type(typ)] = nil
	if msgs == nil {
		msgs = []log.Message{}
	}
	return msgs, nil
}

func (s *session) logTypes([]string, map[string]interface{}) (interface{}, error) {
	types := make([]string, 0, len(s.logs))
	for t := range s.logs {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types, nil
}
