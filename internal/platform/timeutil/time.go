// Package timeutil fixes the timestamp formats used in API payloads and logs.
package timeutil

import "time"

// RFC3339Millis is RFC 3339 UTC with fixed millisecond precision, used in API payloads.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision, used in log timestamps.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// Time marshals as RFC3339Millis. JSON null leaves the value untouched.
type Time struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(RFC3339Millis) + `"`), nil
}

// UnmarshalJSON accepts any RFC 3339 variant.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
