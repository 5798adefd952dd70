package remote

import (
	"strconv"
	"strings"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// MarshalEasyJSON writes the capabilities in wire format. The keys are always
// emitted, in a fixed order, and the platform is upper-cased.
func (c Capabilities) MarshalEasyJSON(out *jwriter.Writer) {
	out.RawString(`{"browserName":`)
	out.String(c.BrowserName)
	out.RawString(`,"version":`)
	out.String(c.Version)
	out.RawString(`,"platform":`)
	out.String(strings.ToUpper(c.Platform.String()))
	out.RawString(`,"javascriptEnabled":`)
	out.Bool(c.JavascriptEnabled)
	out.RawByte('}')
}

// MarshalJSON supports json.Marshaler interface.
func (c Capabilities) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	c.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// UnmarshalEasyJSON reads capabilities as returned by a server. Unknown keys
// are skipped and missing ones keep their zero value.
func (c *Capabilities) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	*c = Capabilities{}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeString()
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "browserName":
			c.BrowserName = in.String()
		case "version":
			c.Version = versionString(in.Interface())
		case "platform":
			c.Platform = ParsePlatform(in.String())
		case "javascriptEnabled":
			c.JavascriptEnabled = in.Bool()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

// UnmarshalJSON supports json.Unmarshaler interface.
func (c *Capabilities) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	c.UnmarshalEasyJSON(&r)
	return r.Error()
}

// Some servers report the version as a number.
func versionString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
