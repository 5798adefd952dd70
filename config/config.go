// Package config builds a remote.Bridge from SELENIUM_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/kelseyhightower/envconfig"

	"github.com/wanmail/remote"
	"github.com/wanmail/remote/fasttransport"
)

// Prefix is the prefix of every variable Load reads.
const Prefix = "SELENIUM"

// Transport names.
const (
	TransportHTTP     = "http"
	TransportFastHTTP = "fasthttp"
)

// Config describes how to reach the server and which browser to ask for.
type Config struct {
	RemoteURL string `split_words:"true" default:"http://127.0.0.1:4444/wd/hub"`
	Browser   string `default:"firefox"`
	Version   string
	Platform  string
	Transport string `default:"http"`
	Timeout   time.Duration
	Proxy     string
	Debug     bool
}

// Load reads the configuration from the environment, e.g.
// SELENIUM_REMOTE_URL or SELENIUM_TIMEOUT=30s.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, &remote.ConfigurationError{Msg: err.Error()}
	}
	glog.V(1).Infof("config: %+v", c)
	return c, nil
}

// Capabilities returns the desired capabilities: the Browser preset with
// Version and Platform, if set, applied.
func (c Config) Capabilities() (remote.Capabilities, error) {
	var opts []remote.CapabilityOption
	if c.Version != "" {
		opts = append(opts, remote.WithVersion(c.Version))
	}
	if c.Platform != "" {
		opts = append(opts, remote.WithPlatform(remote.ParsePlatform(c.Platform)))
	}
	return remote.Preset(c.Browser, opts...)
}

// TransportFactory returns the factory for the configured transport.
func (c Config) TransportFactory() (remote.TransportFactory, error) {
	if c.Timeout < 0 {
		return nil, &remote.ConfigurationError{Msg: fmt.Sprintf("negative timeout %s", c.Timeout)}
	}
	switch strings.ToLower(c.Transport) {
	case TransportHTTP, "":
		var opts []remote.HTTPOption
		if c.Timeout > 0 {
			opts = append(opts, remote.WithTimeout(c.Timeout))
		}
		if c.Proxy != "" {
			opts = append(opts, remote.WithProxy(c.Proxy))
		}
		return remote.HTTPTransportFactory(opts...), nil
	case TransportFastHTTP:
		var opts []fasttransport.Option
		if c.Timeout > 0 {
			opts = append(opts, fasttransport.WithTimeout(c.Timeout))
		}
		if c.Proxy != "" {
			opts = append(opts, fasttransport.WithProxy(c.Proxy))
		}
		return fasttransport.Factory(opts...), nil
	}
	return nil, &remote.ConfigurationError{Msg: fmt.Sprintf("unknown transport %q", c.Transport)}
}

// NewBridge starts a session as configured. Configuration errors are
// reported before any request is made.
func (c Config) NewBridge() (*remote.Bridge, error) {
	remote.SetDebug(c.Debug)
	caps, err := c.Capabilities()
	if err != nil {
		return nil, err
	}
	factory, err := c.TransportFactory()
	if err != nil {
		return nil, err
	}
	return remote.NewBridge(c.RemoteURL, caps, remote.WithTransport(factory))
}

// NewBridge is a shorthand for Load followed by Config.NewBridge.
func NewBridge() (*remote.Bridge, error) {
	c, err := Load()
	if err != nil {
		return nil, err
	}
	return c.NewBridge()
}
