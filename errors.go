package remote

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the class of failure reported by the remote end. The
// values are the W3C error names, which the legacy protocol's status codes and
// exception classes map onto.
type ErrorKind string

func (k ErrorKind) Error() string {
	return string(k)
}

// Error kinds reported by the remote end.
const (
	ErrNoSuchElement             ErrorKind = "no such element"
	ErrNoSuchFrame               ErrorKind = "no such frame"
	ErrNoSuchWindow              ErrorKind = "no such window"
	ErrUnknownCommand            ErrorKind = "unknown command"
	ErrStaleElementReference     ErrorKind = "stale element reference"
	ErrElementNotVisible         ErrorKind = "element not visible"
	ErrInvalidElementState       ErrorKind = "invalid element state"
	ErrUnknown                   ErrorKind = "unknown error"
	ErrElementNotSelectable      ErrorKind = "element is not selectable"
	ErrJavascript                ErrorKind = "javascript error"
	ErrXPathLookup               ErrorKind = "xpath lookup error"
	ErrTimeout                   ErrorKind = "timeout"
	ErrInvalidCookieDomain       ErrorKind = "invalid cookie domain"
	ErrUnableToSetCookie         ErrorKind = "unable to set cookie"
	ErrUnexpectedAlertOpen       ErrorKind = "unexpected alert open"
	ErrNoAlertOpen               ErrorKind = "no alert open"
	ErrScriptTimeout             ErrorKind = "script timeout"
	ErrInvalidElementCoordinates ErrorKind = "invalid element coordinates"
	ErrInvalidSelector           ErrorKind = "invalid selector"

	// ErrServer is used for any failure whose class or code is not known.
	ErrServer ErrorKind = "server error"
)

// Errors returned by Selenium server, keyed by legacy status code.
var remoteErrors = map[int]ErrorKind{
	7:  ErrNoSuchElement,
	8:  ErrNoSuchFrame,
	9:  ErrUnknownCommand,
	10: ErrStaleElementReference,
	11: ErrElementNotVisible,
	12: ErrInvalidElementState,
	13: ErrUnknown,
	15: ErrElementNotSelectable,
	17: ErrJavascript,
	19: ErrXPathLookup,
	21: ErrTimeout,
	23: ErrNoSuchWindow,
	24: ErrInvalidCookieDomain,
	25: ErrUnableToSetCookie,
	26: ErrUnexpectedAlertOpen,
	27: ErrNoAlertOpen,
	28: ErrScriptTimeout,
	29: ErrInvalidElementCoordinates,
	32: ErrInvalidSelector,
}

// Errors returned by Selenium server, keyed by the server-side exception
// class.
var remoteClasses = map[string]ErrorKind{
	"org.openqa.selenium.NoSuchElementException":         ErrNoSuchElement,
	"org.openqa.selenium.NoSuchFrameException":           ErrNoSuchFrame,
	"org.openqa.selenium.NoSuchWindowException":          ErrNoSuchWindow,
	"org.openqa.selenium.UnsupportedCommandException":    ErrUnknownCommand,
	"org.openqa.selenium.StaleElementReferenceException": ErrStaleElementReference,
	"org.openqa.selenium.ElementNotVisibleException":     ErrElementNotVisible,
	"org.openqa.selenium.InvalidElementStateException":   ErrInvalidElementState,
	"org.openqa.selenium.ElementNotSelectableException":  ErrElementNotSelectable,
	"org.openqa.selenium.JavascriptException":            ErrJavascript,
	"org.openqa.selenium.XPathLookupException":           ErrXPathLookup,
	"org.openqa.selenium.TimeoutException":               ErrTimeout,
	"org.openqa.selenium.InvalidCookieDomainException":   ErrInvalidCookieDomain,
	"org.openqa.selenium.UnableToSetCookieException":     ErrUnableToSetCookie,
	"org.openqa.selenium.UnhandledAlertException":        ErrUnexpectedAlertOpen,
	"org.openqa.selenium.NoAlertPresentException":        ErrNoAlertOpen,
	"org.openqa.selenium.InvalidSelectorException":       ErrInvalidSelector,
}

var knownKinds = func() map[ErrorKind]bool {
	m := map[ErrorKind]bool{ErrServer: true}
	for _, k := range remoteErrors {
		m[k] = true
	}
	return m
}()

// KindForClass returns the error kind for a fully-qualified server exception
// class name. Unknown classes map to ErrServer.
func KindForClass(class string) ErrorKind {
	if k, ok := remoteClasses[class]; ok {
		return k
	}
	return ErrServer
}

// KindForStatus returns the error kind for a legacy wire protocol status
// code. Unknown codes map to ErrServer.
func KindForStatus(status int) ErrorKind {
	if k, ok := remoteErrors[status]; ok {
		return k
	}
	return ErrServer
}

// Error contains information about a failure of a command reported by the
// remote end.
type Error struct {
	// Kind is the category of the failure.
	Kind ErrorKind
	// Class is the fully-qualified server exception class, if provided.
	Class string
	// Message is a human-readable description of the error.
	Message string
	// HTTPCode is the HTTP status code returned by the server.
	HTTPCode int
	// LegacyCode is the legacy wire protocol status code, if provided.
	LegacyCode int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is the ErrorKind of e, so that callers may write
// errors.Is(err, remote.ErrNoSuchElement).
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// ConfigurationError is returned when a Bridge or Capabilities cannot be
// constructed from the supplied arguments. It is always returned before any
// network traffic.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// ArgumentError is returned when a command is unknown or a parameter it
// requires was not supplied.
type ArgumentError struct {
	Command CommandName
	Msg     string
}

func (e *ArgumentError) Error() string {
	if e.Command == "" {
		return "argument error: " + e.Msg
	}
	return fmt.Sprintf("argument error: %s: %s", e.Command, e.Msg)
}

// TransportError is returned when the HTTP exchange itself failed: the
// server was unreachable, or it answered with something that is not a wire
// protocol response.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

var (
	// ErrUnsupportedOperation is returned for operations the negotiated
	// capabilities rule out, such as executing a script when JavaScript is
	// disabled.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrSessionClosed is returned by every command issued after Quit.
	ErrSessionClosed = errors.New("session closed")
)

func argumentError(cmd CommandName, format string, args ...interface{}) error {
	return &ArgumentError{Command: cmd, Msg: fmt.Sprintf(format, args...)}
}

func configError(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
