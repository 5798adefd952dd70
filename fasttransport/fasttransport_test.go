package fasttransport_test

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/armon/go-socks5"

	"github.com/wanmail/remote"
	"github.com/wanmail/remote/fasttransport"
	"github.com/wanmail/remote/internal/remotetest"
)

func TestFastTransport(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		remotetest.RunCommonTests(t, remotetest.Config{Transport: fasttransport.Factory()})
	})
	t.Run("RedirectNewSession", func(t *testing.T) {
		remotetest.RunCommonTests(t, remotetest.Config{
			Transport:          fasttransport.Factory(),
			RedirectNewSession: true,
		})
	})
	t.Run("Timeout", func(t *testing.T) {
		remotetest.RunCommonTests(t, remotetest.Config{
			Transport: fasttransport.Factory(fasttransport.WithTimeout(10 * time.Second)),
		})
	})
}

func TestNewErrors(t *testing.T) {
	good, _ := url.Parse(remote.DefaultURL)
	relative, _ := url.Parse("/wd/hub")
	for _, tc := range []struct {
		desc string
		u    *url.URL
		opts []fasttransport.Option
	}{
		{"nil URL", nil, nil},
		{"relative URL", relative, nil},
		{"negative timeout", good, []fasttransport.Option{fasttransport.WithTimeout(-time.Second)}},
		{"proxy without host", good, []fasttransport.Option{fasttransport.WithProxy("socks5://")}},
		{"unsupported proxy", good, []fasttransport.Option{fasttransport.WithProxy("ftp://127.0.0.1:21")}},
	} {
		_, err := fasttransport.New(tc.u, tc.opts...)
		var ce *remote.ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%s: New() returned %v, want *remote.ConfigurationError", tc.desc, err)
		}
	}
}

func TestUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() returned error: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	_, err = remote.NewBridge("http://"+addr+"/wd/hub", remote.Firefox(), remote.WithTransport(fasttransport.Factory()))
	var te *remote.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("NewBridge() returned %v, want *remote.TransportError", err)
	}
	if te.Op != "POST" {
		t.Errorf("te.Op = %q, want POST", te.Op)
	}
}

// addrRewriter sends every SOCKS connection to u.
type addrRewriter struct{ u *url.URL }

func (a *addrRewriter) Rewrite(ctx context.Context, _ *socks5.Request) (context.Context, *socks5.AddrSpec) {
	port, err := strconv.Atoi(a.u.Port())
	if err != nil {
		panic(err)
	}
	return ctx, &socks5.AddrSpec{FQDN: a.u.Hostname(), Port: port}
}

func TestSOCKSProxy(t *testing.T) {
	srv := remotetest.NewServer()
	defer srv.Close()
	u, err := url.Parse(srv.URL())
	if err != nil {
		t.Fatalf("url.Parse(%q) returned error: %v", srv.URL(), err)
	}

	socks, err := socks5.New(&socks5.Config{Rewriter: &addrRewriter{u}})
	if err != nil {
		t.Fatalf("socks5.New(_) returned error: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen(_, _) returned error: %v", err)
	}
	defer l.Close()
	go socks.Serve(l)

	// Nothing listens on port 1: the request only succeeds through the proxy.
	b, err := remote.NewBridge("http://localhost:1/wd/hub", remote.Firefox(),
		remote.WithTransport(fasttransport.Factory(fasttransport.WithProxy("socks5://"+l.Addr().String()))))
	if err != nil {
		t.Fatalf("NewBridge() returned error: %v", err)
	}
	if got := srv.Sessions(); len(got) != 1 || got[0] != b.SessionID() {
		t.Errorf("srv.Sessions() = %v, want [%s]", got, b.SessionID())
	}
	if err := b.Quit(); err != nil {
		t.Errorf("b.Quit() returned error: %v", err)
	}
}
