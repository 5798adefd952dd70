package remote

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewResponseSuccess(t *testing.T) {
	for _, tc := range []struct {
		desc      string
		code      int
		body      string
		sessionID string
		value     interface{}
	}{
		{
			desc:      "legacy",
			code:      200,
			body:      `{"sessionId": "abc123", "status": 0, "value": "http://example.com/"}`,
			sessionID: "abc123",
			value:     "http://example.com/",
		},
		{
			desc:  "W3C",
			code:  200,
			body:  `{"value": {"ELEMENT": "0"}}`,
			value: map[string]interface{}{"ELEMENT": "0"},
		},
		{
			desc: "no content",
			code: 204,
		},
		{
			desc: "400 is not above the failure threshold",
			code: 400,
			body: `{"status": 0, "value": null}`,
		},
		{
			desc:  "stray NUL bytes",
			code:  200,
			body:  "{\"status\": 0,\x00 \"value\": true}",
			value: true,
		},
		{
			desc:  "script result with an error key",
			code:  200,
			body:  `{"status": 0, "value": {"error": "validation failed", "ok": false}}`,
			value: map[string]interface{}{"error": "validation failed", "ok": false},
		},
		{
			desc:  "error flag false",
			code:  200,
			body:  `{"error": false, "value": 1}`,
			value: 1.0,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			r, err := NewResponse(tc.code, []byte(tc.body))
			if err != nil {
				t.Fatalf("NewResponse(%d, %q) returned error: %v", tc.code, tc.body, err)
			}
			if r.Code != tc.code {
				t.Errorf("r.Code = %d, want %d", r.Code, tc.code)
			}
			if r.SessionID != tc.sessionID {
				t.Errorf("r.SessionID = %q, want %q", r.SessionID, tc.sessionID)
			}
			if diff := cmp.Diff(tc.value, r.Value()); diff != "" {
				t.Errorf("r.Value() returned diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewResponseFailure(t *testing.T) {
	for _, tc := range []struct {
		desc string
		code int
		body string
		want *Error
	}{
		{
			desc: "no HTTP status",
			code: 0,
			body: `{"status": 0, "value": "ok"}`,
			want: &Error{Kind: ErrServer, Message: "ok"},
		},
		{
			desc: "HTTP status above 400",
			code: 404,
			body: `{"status": 0, "value": null}`,
			want: &Error{Kind: ErrServer, HTTPCode: 404, Message: "HTTP status 404"},
		},
		{
			desc: "error flag",
			code: 200,
			body: `{"error": true, "value": "boom"}`,
			want: &Error{Kind: ErrServer, HTTPCode: 200, Message: "boom"},
		},
		{
			desc: "legacy status",
			code: 500,
			body: `{"sessionId": "abc123", "status": 7, "value": {"message": "Unable to locate element"}}`,
			want: &Error{Kind: ErrNoSuchElement, HTTPCode: 500, LegacyCode: 7, Message: "Unable to locate element"},
		},
		{
			desc: "legacy status with HTTP 200",
			code: 200,
			body: `{"status": 27, "value": {"message": "No alert is present"}}`,
			want: &Error{Kind: ErrNoAlertOpen, HTTPCode: 200, LegacyCode: 27, Message: "No alert is present"},
		},
		{
			desc: "class takes precedence over status",
			code: 500,
			body: `{"status": 13, "value": {"message": "stale", "class": "org.openqa.selenium.StaleElementReferenceException"}}`,
			want: &Error{
				Kind:       ErrStaleElementReference,
				Class:      "org.openqa.selenium.StaleElementReferenceException",
				HTTPCode:   500,
				LegacyCode: 13,
				Message:    "stale",
			},
		},
		{
			desc: "unknown class falls back to status",
			code: 500,
			body: `{"status": 17, "value": {"message": "bad script", "class": "com.example.Whatever"}}`,
			want: &Error{Kind: ErrJavascript, Class: "com.example.Whatever", HTTPCode: 500, LegacyCode: 17, Message: "bad script"},
		},
		{
			desc: "W3C error",
			code: 404,
			body: `{"value": {"error": "no such window", "message": "window gone"}}`,
			want: &Error{Kind: ErrNoSuchWindow, HTTPCode: 404, Message: "window gone"},
		},
		{
			desc: "unknown W3C error",
			code: 500,
			body: `{"value": {"error": "something new", "message": "huh"}}`,
			want: &Error{Kind: ErrServer, HTTPCode: 500, Message: "huh"},
		},
		{
			desc: "unknown legacy status",
			code: 500,
			body: `{"status": 99, "value": {}}`,
			want: &Error{Kind: ErrServer, HTTPCode: 500, LegacyCode: 99, Message: "HTTP status 500"},
		},
		{
			desc: "empty body",
			code: 500,
			want: &Error{Kind: ErrServer, HTTPCode: 500, Message: "HTTP status 500"},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			r, err := NewResponse(tc.code, []byte(tc.body))
			if err == nil {
				t.Fatalf("NewResponse(%d, %q) = %+v, want error", tc.code, tc.body, r)
			}
			if r != nil {
				t.Errorf("NewResponse(%d, %q) returned a Response alongside error %v", tc.code, tc.body, err)
			}
			var got *Error
			if !errors.As(err, &got) {
				t.Fatalf("NewResponse(%d, %q) returned %T, want *Error", tc.code, tc.body, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("NewResponse(%d, %q) returned diff (-want +got):\n%s", tc.code, tc.body, diff)
			}
			if !errors.Is(err, tc.want.Kind) {
				t.Errorf("errors.Is(err, %q) = false", tc.want.Kind)
			}
		})
	}
}

func TestNewResponseBadJSON(t *testing.T) {
	_, err := NewResponse(200, []byte(`{"status": 0, "value": `))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("NewResponse(bad JSON) returned %v, want *TransportError", err)
	}
}

func TestDecodeValue(t *testing.T) {
	r, err := NewResponse(200, []byte(`{"status": 0, "value": {"x": 3, "y": 4}}`))
	if err != nil {
		t.Fatalf("NewResponse() returned error: %v", err)
	}
	var p Point
	if err := r.DecodeValue(&p); err != nil {
		t.Fatalf("DecodeValue() returned error: %v", err)
	}
	if want := (Point{X: 3, Y: 4}); p != want {
		t.Errorf("DecodeValue() = %+v, want %+v", p, want)
	}

	r, err = NewResponse(200, []byte(`{"status": 0, "value": null}`))
	if err != nil {
		t.Fatalf("NewResponse() returned error: %v", err)
	}
	s := "untouched"
	if err := r.DecodeValue(&s); err != nil {
		t.Fatalf("DecodeValue(null) returned error: %v", err)
	}
	if s != "untouched" {
		t.Errorf("DecodeValue(null) changed the target to %q", s)
	}
}
