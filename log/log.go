// Package log holds the types of the server-side logs a session can read
// back, such as the browser console.
package log

import (
	"encoding/json"
	"strings"
	"time"
)

// Type names a log buffer kept by the server.
type Type string

// Log types known to Selenium servers. Which ones are available depends on
// the driver.
const (
	Server      Type = "server"
	Browser     Type = "browser"
	Client      Type = "client"
	Driver      Type = "driver"
	Performance Type = "performance"
	Profiler    Type = "profiler"
)

// Level is the severity of a log entry.
type Level string

// The valid log levels, from the most to the least severe. Off and All are
// only meaningful as thresholds.
const (
	Off     Level = "OFF"
	Severe  Level = "SEVERE"
	Warning Level = "WARNING"
	Info    Level = "INFO"
	Debug   Level = "DEBUG"
	All     Level = "ALL"
)

var severity = map[Level]int{
	All:     0,
	Debug:   1,
	Info:    2,
	Warning: 3,
	Severe:  4,
	Off:     5,
}

// AtLeast reports whether l is at least as severe as min. Unknown levels
// rank with Info.
func (l Level) AtLeast(min Level) bool {
	rank := func(l Level) int {
		if r, ok := severity[Level(strings.ToUpper(string(l)))]; ok {
			return r
		}
		return severity[Info]
	}
	return rank(l) >= rank(min)
}

// Message is one log entry.
type Message struct {
	Timestamp time.Time
	Level     Level
	Message   string
}

type wireMessage struct {
	Timestamp int64  `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
}

// MarshalJSON encodes m in wire format, with the timestamp in milliseconds
// since the epoch.
func (m Message) MarshalJSON() ([]byte, error) {
	var ts int64
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.UnixNano() / int64(time.Millisecond)
	}
	return json.Marshal(wireMessage{Timestamp: ts, Level: m.Level, Message: m.Message})
}

// UnmarshalJSON decodes a wire format entry.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{Level: w.Level, Message: w.Message}
	if w.Timestamp != 0 {
		m.Timestamp = time.Unix(0, w.Timestamp*int64(time.Millisecond))
	}
	return nil
}

// Filter returns the messages at least as severe as min.
func Filter(msgs []Message, min Level) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Level.AtLeast(min) {
			out = append(out, m)
		}
	}
	return out
}
