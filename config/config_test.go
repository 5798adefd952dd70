package config

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/remote"
	"github.com/wanmail/remote/internal/remotetest"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(Prefix+"_"+k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	want := Config{
		RemoteURL: remote.DefaultURL,
		Browser:   "firefox",
		Transport: TransportHTTP,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Load() returned diff (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	setEnv(t, map[string]string{
		"REMOTE_URL": "http://grid:4444/wd/hub",
		"BROWSER":    "internet_explorer",
		"VERSION":    "11",
		"PLATFORM":   "vista",
		"TRANSPORT":  "fasthttp",
		"TIMEOUT":    "30s",
		"PROXY":      "socks5://127.0.0.1:1080",
		"DEBUG":      "true",
	})
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	want := Config{
		RemoteURL: "http://grid:4444/wd/hub",
		Browser:   "internet_explorer",
		Version:   "11",
		Platform:  "vista",
		Transport: TransportFastHTTP,
		Timeout:   30 * time.Second,
		Proxy:     "socks5://127.0.0.1:1080",
		Debug:     true,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Load() returned diff (-want +got):\n%s", diff)
	}

	caps, err := c.Capabilities()
	if err != nil {
		t.Fatalf("c.Capabilities() returned error: %v", err)
	}
	wantCaps := remote.InternetExplorer(remote.WithVersion("11"), remote.WithPlatform(remote.PlatformVista))
	if diff := cmp.Diff(wantCaps, caps); diff != "" {
		t.Errorf("c.Capabilities() returned diff (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"bad duration": {"TIMEOUT": "soon"},
		"bad bool":     {"DEBUG": "maybe"},
	} {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			_, err := Load()
			var ce *remote.ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("Load() returned %v, want *remote.ConfigurationError", err)
			}
		})
	}
}

func TestNewBridge(t *testing.T) {
	for _, transport := range []string{TransportHTTP, TransportFastHTTP, "HTTP"} {
		t.Run(transport, func(t *testing.T) {
			srv := remotetest.NewServer()
			defer srv.Close()

			c := Config{
				RemoteURL: srv.URL(),
				Browser:   "chrome",
				Transport: transport,
				Timeout:   10 * time.Second,
			}
			b, err := c.NewBridge()
			if err != nil {
				t.Fatalf("c.NewBridge() returned error: %v", err)
			}
			if got := b.Capabilities().BrowserName; got != "chrome" {
				t.Errorf("b.Capabilities().BrowserName = %q, want 'chrome'", got)
			}
			if err := b.Quit(); err != nil {
				t.Errorf("b.Quit() returned error: %v", err)
			}
		})
	}
}

func TestNewBridgeFromEnvironment(t *testing.T) {
	srv := remotetest.NewServer()
	defer srv.Close()
	setEnv(t, map[string]string{
		"REMOTE_URL": srv.URL(),
		"BROWSER":    "htmlunit",
	})

	b, err := NewBridge()
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	defer b.Quit()
	if got := b.Capabilities().JavascriptEnabled; got {
		t.Error("b.Capabilities().JavascriptEnabled = true, want false for htmlunit")
	}
}

func TestNewBridgeConfigurationErrors(t *testing.T) {
	srv := remotetest.NewServer()
	defer srv.Close()

	for _, tc := range []struct {
		desc string
		c    Config
	}{
		{"unknown transport", Config{RemoteURL: srv.URL(), Browser: "firefox", Transport: "carrier-pigeon"}},
		{"unknown browser", Config{RemoteURL: srv.URL(), Browser: "lynx"}},
		{"negative timeout", Config{RemoteURL: srv.URL(), Browser: "firefox", Timeout: -time.Second}},
		{"bad proxy", Config{RemoteURL: srv.URL(), Browser: "firefox", Transport: TransportFastHTTP, Proxy: "gopher://x:70"}},
		{"relative URL", Config{RemoteURL: "/wd/hub", Browser: "firefox"}},
	} {
		_, err := tc.c.NewBridge()
		var ce *remote.ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%s: NewBridge() returned %v, want *remote.ConfigurationError", tc.desc, err)
		}
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("server saw %d requests, want none", n)
	}
}
