package remote_test

import (
	"errors"
	"fmt"

	"github.com/wanmail/remote"
	"github.com/wanmail/remote/internal/remotetest"
)

// This example starts a session, fills in a search box and reads the result.
// It runs against an in-process fake server; point NewBridge at a real
// Selenium server, e.g. remote.DefaultURL, to drive a browser.
func Example() {
	srv := remotetest.NewServer()
	defer srv.Close()

	b, err := remote.NewBridge(srv.URL(), remote.Firefox())
	if err != nil {
		panic(err) // panic is used only as an example and is not otherwise recommended.
	}
	defer b.Quit()

	if err := b.Get(remotetest.PageURL(remotetest.HomePath)); err != nil {
		panic(err)
	}
	title, err := b.Title()
	if err != nil {
		panic(err)
	}
	fmt.Println(title)

	// Typing Enter submits the form.
	q, err := b.FindElement(remote.ByName, "q")
	if err != nil {
		panic(err)
	}
	if err := q.SendKeys("golang" + remote.EnterKey); err != nil {
		panic(err)
	}

	result, err := b.FindElement(remote.ByID, "result")
	if err != nil {
		panic(err)
	}
	text, err := result.Text()
	if err != nil {
		panic(err)
	}
	fmt.Println(text)

	// Output:
	// Go Selenium Test Suite
	// You searched for "golang".
}

func ExampleNewSelect() {
	srv := remotetest.NewServer()
	defer srv.Close()

	b, err := remote.NewBridge(srv.URL(), remote.Firefox())
	if err != nil {
		panic(err)
	}
	defer b.Quit()
	if err := b.Get(remotetest.PageURL(remotetest.HomePath)); err != nil {
		panic(err)
	}

	el, err := b.FindElement(remote.ByID, "m")
	if err != nil {
		panic(err)
	}
	s, err := remote.NewSelect(el)
	if err != nil {
		panic(err)
	}
	if err := s.SelectByVisibleText("Charlie Delta"); err != nil {
		panic(err)
	}
	if err := s.SelectByValue("a"); err != nil {
		panic(err)
	}

	opts, err := s.SelectedOptions()
	if err != nil {
		panic(err)
	}
	for _, o := range opts {
		text, err := o.Text()
		if err != nil {
			panic(err)
		}
		fmt.Println(text)
	}

	// Output:
	// Alpha
	// Charlie Delta
}

func ExampleError() {
	srv := remotetest.NewServer()
	defer srv.Close()

	b, err := remote.NewBridge(srv.URL(), remote.Firefox())
	if err != nil {
		panic(err)
	}
	defer b.Quit()

	_, err = b.FindElement(remote.ByID, "no-such-id")
	fmt.Println(errors.Is(err, remote.ErrNoSuchElement))

	var e *remote.Error
	if errors.As(err, &e) {
		fmt.Println(e.LegacyCode, e.HTTPCode)
	}

	// Output:
	// true
	// 7 500
}
