package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Success is the legacy status code that indicates the command succeeded.
const Success = 0

// Response is the decoded reply to a single command. A Response only exists
// for successful calls: NewResponse returns an error instead of a Response
// whenever the remote end reported a failure.
type Response struct {
	// Code is the HTTP status code of the reply.
	Code int
	// SessionID is the top-level session identifier, if the server sent one.
	SessionID string
	// Status is the legacy status code, Success for W3C servers.
	Status int
	// Payload is the decoded JSON object. It is nil for replies without a
	// body, such as 204 No Content.
	Payload map[string]interface{}

	value json.RawMessage
}

type serverReply struct {
	SessionID *string         `json:"sessionId"` // SessionID can be nil.
	Status    int             `json:"status"`
	Value     json.RawMessage `json:"value"`
}

// NewResponse builds a Response from an HTTP status code and a JSON body. A
// code of 0 stands for "no status" and is treated as a failure, as are codes
// above 400, a true "error" flag and a non-zero legacy status. Failures are
// returned as an *Error.
func NewResponse(code int, body []byte) (*Response, error) {
	r := &Response{Code: code}
	body = bytes.TrimSpace(body)
	if len(body) > 0 {
		cleanNils(body)
		reply := new(serverReply)
		if err := json.Unmarshal(body, reply); err != nil {
			return nil, &TransportError{Op: "decode", Err: fmt.Errorf("bad server reply (HTTP %d): %v", code, err)}
		}
		if err := json.Unmarshal(body, &r.Payload); err != nil {
			return nil, &TransportError{Op: "decode", Err: err}
		}
		if reply.SessionID != nil {
			r.SessionID = *reply.SessionID
		}
		r.Status = reply.Status
		r.value = reply.Value
	}

	if err := replyError(code, body); err != nil {
		return nil, err
	}
	return r, nil
}

// Value returns the decoded "value" field of the payload.
func (r *Response) Value() interface{} {
	if r.Payload == nil {
		return nil
	}
	return r.Payload["value"]
}

// DecodeValue unmarshals the "value" field of the payload into v. A missing
// or null value leaves v untouched.
func (r *Response) DecodeValue(v interface{}) error {
	if len(r.value) == 0 || bytes.Equal(r.value, []byte("null")) {
		return nil
	}
	return json.Unmarshal(r.value, v)
}

func replyError(code int, body []byte) error {
	status := int(gjson.GetBytes(body, "status").Int())
	failed := code == 0 || code > 400 ||
		status != Success ||
		gjson.GetBytes(body, "error").Bool()
	if !failed {
		return nil
	}

	// A W3C "error" string only names the kind of a failure; on its own it may
	// be part of a script result.
	w3c := gjson.GetBytes(body, "value.error")

	e := &Error{
		Kind:       ErrServer,
		HTTPCode:   code,
		LegacyCode: status,
		Class:      gjson.GetBytes(body, "value.class").String(),
		Message:    extractMessage(body),
	}
	switch {
	case e.Class != "" && KindForClass(e.Class) != ErrServer:
		e.Kind = KindForClass(e.Class)
	case w3c.Type == gjson.String && knownKinds[ErrorKind(w3c.String())]:
		e.Kind = ErrorKind(w3c.String())
	case status != Success:
		e.Kind = KindForStatus(status)
	}
	if e.Message == "" && e.Kind == ErrServer {
		e.Message = fmt.Sprintf("HTTP status %d", code)
	}
	return e
}

func extractMessage(body []byte) string {
	v := gjson.GetBytes(body, "value")
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Get("message").String()
}

// Some bug(?) in Selenium gets us nil values in output, json.Unmarshal is
// not happy about that.
func cleanNils(buf []byte) {
	for i, b := range buf {
		if b == 0 {
			buf[i] = ' '
		}
	}
}
