package remotetest

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wanmail/remote"
)

// node is an element of a fake page.
type node struct {
	id        string
	tag       string
	attrs     map[string]string
	text      string
	value     string
	css       map[string]string
	selected  bool
	displayed bool
	enabled   bool
	loc       remote.Point
	size      remote.Size
	parent    *node
	children  []*node

	// frame is the document loaded in an iframe.
	frame *page
}

func (n *node) add(children ...*node) *node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func el(tag string, attrs ...string) *node {
	n := &node{
		tag:       tag,
		attrs:     make(map[string]string),
		css:       map[string]string{"color": "rgba(0, 0, 0, 1)", "display": "block"},
		displayed: true,
		enabled:   true,
		size:      remote.Size{Width: 100, Height: 20},
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.attrs[attrs[i]] = attrs[i+1]
	}
	if v, ok := n.attrs["value"]; ok {
		n.value = v
	}
	return n
}

func withText(n *node, text string) *node {
	n.text = text
	return n
}

// walk visits the subtree below n in document order, n excluded.
func (n *node) walk(f func(*node)) {
	for _, c := range n.children {
		f(c)
		c.walk(f)
	}
}

func (n *node) visibleText() string {
	if !n.displayed {
		return ""
	}
	parts := make([]string, 0, 1+len(n.children))
	if n.text != "" {
		parts = append(parts, n.text)
	}
	for _, c := range n.children {
		if t := c.visibleText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (n *node) enclosing(tag string) *node {
	for p := n.parent; p != nil; p = p.parent {
		if p.tag == tag {
			return p
		}
	}
	return nil
}

func (n *node) isCheckbox() bool {
	return n.tag == "input" && (n.attrs["type"] == "checkbox" || n.attrs["type"] == "radio")
}

// attribute returns the value of an attribute or property the way the legacy
// server does. A nil return encodes as null.
func (n *node) attribute(name string) interface{} {
	switch name {
	case "value":
		return n.value
	case "selected", "checked":
		if n.selected {
			return "true"
		}
		return nil
	case "index":
		if n.tag != "option" || n.parent == nil {
			return nil
		}
		i := 0
		for _, sib := range n.parent.children {
			if sib == n {
				return strconv.Itoa(i)
			}
			if sib.tag == "option" {
				i++
			}
		}
	}
	if v, ok := n.attrs[name]; ok {
		return v
	}
	return nil
}

func (n *node) render(b *strings.Builder) {
	fmt.Fprintf(b, "<%s", n.tag)
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%q", k, html.EscapeString(n.attrs[k]))
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(n.text))
	for _, c := range n.children {
		c.render(b)
	}
	fmt.Fprintf(b, "</%s>", n.tag)
}

// page is a loaded document.
type page struct {
	url   string
	title string
	root  *node
	alert string
	focus *node
}

func (p *page) source() string {
	var b strings.Builder
	p.root.render(&b)
	return b.String()
}

// Pages served by the fake server, keyed by path.
const (
	BlankURL  = "about:blank"
	HomePath  = "/"
	OtherPath = "/other"
	FramePath = "/frame"
	AlertPath = "/alert"
)

// Titles of the fake pages.
const (
	HomeTitle  = "Go Selenium Test Suite"
	OtherTitle = "Go Selenium Test Suite - Other Page"
	FrameTitle = "Go Selenium Test Suite - Frame Page"
	AlertTitle = "Go Selenium Test Suite - Alert Appear Page"
	AlertText  = "Hello world"
)

const notFoundTitle = "404 Not Found"

func homePage() (string, *node, *node) {
	q := el("input", "name", "q", "id", "q", "autofocus", "true")
	disabled := el("input", "id", "disabled", "disabled", "true")
	disabled.enabled = false
	form := el("form", "id", "form", "action", "/search").add(
		q,
		el("input", "name", "submit", "type", "submit", "id", "submit"),
		el("input", "id", "chuk", "type", "checkbox"),
		el("select", "name", "s", "id", "s").add(
			withText(el("option", "value", "first_value"), "First Value"),
			withText(el("option", "id", "secondValue", "value", "second_value"), "Second Value"),
		),
		el("select", "name", "m", "id", "m", "multiple", "multiple").add(
			withText(el("option", "value", "a"), "Alpha"),
			withText(el("option", "value", "b"), "Bravo"),
			withText(el("option", "value", "c"), "Charlie Delta"),
		),
		disabled,
	)
	form.children[3].children[0].selected = true

	hidden := withText(el("div", "id", "hidden", "class", "note hidden"), "Hidden text.")
	hidden.displayed = false

	body := el("body").add(
		withText(el("p", "id", "intro", "class", "note"), "The home page."),
		form,
		withText(el("a", "id", "other", "href", OtherPath), "other page"),
		withText(el("a", "id", "popup", "href", OtherPath, "target", "_blank"), "popup window"),
		hidden,
	)
	return HomeTitle, el("html").add(body), q
}

func otherPage() (string, *node, *node) {
	return OtherTitle, el("html").add(el("body").add(withText(el("p", "id", "content"), "The other page."))), nil
}

func framePage() (string, *node, *node) {
	body := el("body").add(
		withText(el("p"), "This page contains a frame."),
		el("iframe", "id", "iframeID", "name", "iframeName", "src", HomePath),
		el("div", "id", "outsideOfFrame"),
	)
	return FrameTitle, el("html").add(body), nil
}

func alertPage() (string, *node, *node) {
	return AlertTitle, el("html").add(el("body").add(withText(el("p"), "An alert will popup."))), nil
}

func searchPage(q string) func() (string, *node, *node) {
	return func() (string, *node, *node) {
		body := el("body").add(withText(el("p", "id", "result"), fmt.Sprintf("You searched for %q.", q)))
		return "Go Selenium Test Suite - Search Page", el("html").add(body), nil
	}
}

func blankPage() (string, *node, *node) {
	return "", el("html").add(el("body")), nil
}

func notFoundPage() (string, *node, *node) {
	return notFoundTitle, el("html").add(el("body").add(withText(el("p"), "Page not found."))), nil
}

// load builds the document for rawURL. Every element of it, frames
// included, gets an id from newID.
func load(rawURL string, newID func() string) *page {
	path := HomePath
	query := url.Values{}
	if u, err := url.Parse(rawURL); err == nil {
		if u.Path != "" {
			path = u.Path
		}
		query = u.Query()
	}

	build := map[string]func() (string, *node, *node){
		HomePath:  homePage,
		OtherPath: otherPage,
		FramePath: framePage,
		AlertPath: alertPage,
		"/search": searchPage(query.Get("q")),
	}[path]
	switch {
	case rawURL == BlankURL:
		build = blankPage
	case build == nil:
		build = notFoundPage
	}
	title, root, focus := build()

	p := &page{url: rawURL, title: title, root: root, focus: focus}
	if path == AlertPath {
		p.alert = AlertText
	}

	y := 0
	assign := func(n *node) {
		n.id = newID()
		n.loc = remote.Point{X: 8, Y: y}
		y += 20
		if n.tag == "iframe" {
			src, _ := url.Parse(rawURL)
			if src != nil {
				if ref, err := src.Parse(n.attrs["src"]); err == nil {
					n.frame = load(ref.String(), newID)
				}
			}
		}
	}
	assign(root)
	root.walk(assign)
	return p
}

const literal = `"[^"]*"|'[^']*'`

var (
	cssRE        = regexp.MustCompile(`^([a-z]*)(?:#([\w-]+))?(?:\.([\w-]+))?$`)
	xpathRE      = regexp.MustCompile(`^(\.?)//([a-z*]+)(?:\[(.+)\])?$`)
	xpathTextRE  = regexp.MustCompile(`^normalize-space\(\.\)\s*=\s*(` + literal + `)$`)
	xpathContRE  = regexp.MustCompile(`^contains\(\.,\s*(` + literal + `)\)$`)
	xpathAttrRE  = regexp.MustCompile(`^@([\w-]+)\s*=\s*(` + literal + `)$`)
	errBadSelect = &wireError{status: 32, class: "org.openqa.selenium.InvalidSelectorException"}
)

func unquote(lit string) string {
	return lit[1 : len(lit)-1]
}

func hasClass(n *node, class string) bool {
	for _, c := range strings.Fields(n.attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// matcher compiles a locator into a predicate over nodes.
func matcher(by remote.By, value string) (func(*node) bool, error) {
	switch by {
	case remote.ByID:
		return func(n *node) bool { return n.attrs["id"] == value }, nil
	case remote.ByName:
		return func(n *node) bool { return n.attrs["name"] == value }, nil
	case remote.ByTagName:
		return func(n *node) bool { return n.tag == strings.ToLower(value) }, nil
	case remote.ByClassName:
		return func(n *node) bool { return hasClass(n, value) }, nil
	case remote.ByLinkText:
		return func(n *node) bool { return n.tag == "a" && n.visibleText() == value }, nil
	case remote.ByPartialLinkText:
		return func(n *node) bool { return n.tag == "a" && strings.Contains(n.visibleText(), value) }, nil
	case remote.ByCSSSelector:
		m := cssRE.FindStringSubmatch(value)
		if m == nil || value == "" {
			return nil, errBadSelect.with("unsupported css selector %q", value)
		}
		return func(n *node) bool {
			return (m[1] == "" || n.tag == m[1]) &&
				(m[2] == "" || n.attrs["id"] == m[2]) &&
				(m[3] == "" || hasClass(n, m[3]))
		}, nil
	case remote.ByXPATH:
		return xpathMatcher(value)
	}
	return nil, errBadSelect.with("unknown locator strategy %q", by)
}

func xpathMatcher(expr string) (func(*node) bool, error) {
	m := xpathRE.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return nil, errBadSelect.with("unsupported xpath %q", expr)
	}
	tag := m[2]
	tagOK := func(n *node) bool { return tag == "*" || n.tag == tag }
	pred := strings.TrimSpace(m[3])

	if pred == "" {
		return tagOK, nil
	}
	if p := xpathTextRE.FindStringSubmatch(pred); p != nil {
		want := unquote(p[1])
		return func(n *node) bool {
			return tagOK(n) && strings.Join(strings.Fields(n.visibleText()), " ") == want
		}, nil
	}
	if p := xpathContRE.FindStringSubmatch(pred); p != nil {
		want := unquote(p[1])
		return func(n *node) bool { return tagOK(n) && strings.Contains(n.visibleText(), want) }, nil
	}
	if p := xpathAttrRE.FindStringSubmatch(pred); p != nil {
		name, want := p[1], unquote(p[2])
		return func(n *node) bool {
			v, ok := n.attrs[name]
			if name == "value" {
				v, ok = n.value, true
			}
			return tagOK(n) && ok && v == want
		}, nil
	}
	return nil, errBadSelect.with("unsupported xpath predicate %q", pred)
}
