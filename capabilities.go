package remote

import (
	"strings"

	"github.com/blang/semver"
	"github.com/mailru/easyjson"
)

// Platform is the operating system a browser runs on.
type Platform int

// The known platforms. PlatformAny lets the server choose.
const (
	PlatformAny Platform = iota
	PlatformWindows
	PlatformXP
	PlatformVista
	PlatformMac
	PlatformLinux
	PlatformUnix
	PlatformAndroid
)

var platformNames = [...]string{
	PlatformAny:     "any",
	PlatformWindows: "windows",
	PlatformXP:      "xp",
	PlatformVista:   "vista",
	PlatformMac:     "mac",
	PlatformLinux:   "linux",
	PlatformUnix:    "unix",
	PlatformAndroid: "android",
}

// String returns the lower-case name of the platform.
func (p Platform) String() string {
	if p < 0 || int(p) >= len(platformNames) {
		return platformNames[PlatformAny]
	}
	return platformNames[p]
}

// ParsePlatform maps a platform name, in any case, to a Platform. Unknown
// and empty names map to PlatformAny.
func ParsePlatform(s string) Platform {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range platformNames {
		if name == s {
			return Platform(p)
		}
	}
	return PlatformAny
}

// Capabilities describes the browser a session is requested for or, once a
// session is started, the browser the server actually provided.
//
// Capabilities is a value type: the zero value requests any browser on any
// platform with JavaScript disabled.
type Capabilities struct {
	BrowserName       string
	Version           string
	Platform          Platform
	JavascriptEnabled bool
}

// BrowserVersion parses Version as a semantic version. Short versions like
// "3.6" are padded with zeros.
func (c Capabilities) BrowserVersion() (semver.Version, error) {
	return semver.ParseTolerant(c.Version)
}

// ParseCapabilities decodes capabilities in wire format.
func ParseCapabilities(data []byte) (Capabilities, error) {
	var c Capabilities
	if err := easyjson.Unmarshal(data, &c); err != nil {
		return Capabilities{}, err
	}
	return c, nil
}

// CapabilityOption overrides a field of a preset.
type CapabilityOption func(*Capabilities)

// WithBrowserName overrides the browser name.
func WithBrowserName(name string) CapabilityOption {
	return func(c *Capabilities) { c.BrowserName = name }
}

// WithVersion requests a specific browser version.
func WithVersion(version string) CapabilityOption {
	return func(c *Capabilities) { c.Version = version }
}

// WithPlatform requests a specific platform.
func WithPlatform(p Platform) CapabilityOption {
	return func(c *Capabilities) { c.Platform = p }
}

// WithJavascript enables or disables JavaScript.
func WithJavascript(enabled bool) CapabilityOption {
	return func(c *Capabilities) { c.JavascriptEnabled = enabled }
}

func preset(c Capabilities, opts []CapabilityOption) Capabilities {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Firefox returns capabilities requesting Firefox.
func Firefox(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "firefox", JavascriptEnabled: true}, opts)
}

// Chrome returns capabilities requesting Chrome.
func Chrome(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "chrome", JavascriptEnabled: true}, opts)
}

// InternetExplorer returns capabilities requesting Internet Explorer on
// Windows.
func InternetExplorer(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "internet explorer", Platform: PlatformWindows, JavascriptEnabled: true}, opts)
}

// Safari returns capabilities requesting Safari on a Mac.
func Safari(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "safari", Platform: PlatformMac, JavascriptEnabled: true}, opts)
}

// HTMLUnit returns capabilities requesting the HtmlUnit headless browser.
// JavaScript is disabled unless overridden.
func HTMLUnit(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "htmlunit"}, opts)
}

// IPhone returns capabilities requesting the iPhone driver.
func IPhone(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "iPhone", Platform: PlatformMac, JavascriptEnabled: true}, opts)
}

// Android returns capabilities requesting the Android driver.
func Android(opts ...CapabilityOption) Capabilities {
	return preset(Capabilities{BrowserName: "android", Platform: PlatformAndroid, JavascriptEnabled: true}, opts)
}

var presets = map[string]func(...CapabilityOption) Capabilities{
	"firefox":           Firefox,
	"chrome":            Chrome,
	"internet_explorer": InternetExplorer,
	"ie":                InternetExplorer,
	"safari":            Safari,
	"htmlunit":          HTMLUnit,
	"iphone":            IPhone,
	"android":           Android,
}

// Preset returns the named preset. Names are those of the preset
// constructors in snake case, e.g. "firefox" or "internet_explorer".
func Preset(name string, opts ...CapabilityOption) (Capabilities, error) {
	f, ok := presets[strings.ToLower(name)]
	if !ok {
		return Capabilities{}, configError("unknown browser preset %q", name)
	}
	return f(opts...), nil
}
