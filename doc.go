/*
Package remote is a client for the Selenium JSON wire protocol.

A Bridge drives one browser session on a remote WebDriver server, such as a
standalone Selenium server or grid:

	java -jar selenium-server-standalone-2.53.1.jar

Each Bridge method performs a single blocking HTTP exchange:

	b, err := remote.NewBridge(remote.DefaultURL, remote.Firefox())
	if err != nil {
		// ...
	}
	defer b.Quit()

	if err := b.Get("http://play.golang.org/?simple=1"); err != nil {
		// ...
	}
	elem, err := b.FindElement(remote.ByCSSSelector, "#code")
	if err != nil {
		// ...
	}
	err = elem.SendKeys("package main")

Failures reported by the server are returned as *Error, whose Kind can be
tested with errors.Is:

	if errors.Is(err, remote.ErrNoSuchElement) {
		// ...
	}

Requests go through a Transport. HTTPTransport, built on net/http, is the
default; package fasttransport provides one built on fasthttp, and package
config builds a Bridge from SELENIUM_* environment variables.

Wire traffic is logged through glog at verbosity 1, or always after
SetDebug(true).
*/
package remote
