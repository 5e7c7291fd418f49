package article

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp is an ISO-8601 instant. It reads both zoned timestamps and the
// naive local timestamps written by older versions of the agent.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, dropping the monotonic clock reading.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Round(0)}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses a zoned or naive ISO-8601 timestamp. Naive values
// are read in the local time zone.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if strings.Contains(layout, "Z07") {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unable to parse timestamp: %s", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler. An empty string or null leaves
// the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
