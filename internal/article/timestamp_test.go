package article

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-05-01T10:20:30Z", want: time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{in: "2024-05-01T10:20:30.5+02:00", want: time.Date(2024, 5, 1, 8, 20, 30, 500000000, time.UTC)},
		{in: "2024-05-01T10:20:30.123456", want: time.Date(2024, 5, 1, 10, 20, 30, 123456000, time.Local)},
		{in: "2024-05-01 10:20:30", want: time.Date(2024, 5, 1, 10, 20, 30, 0, time.Local)},
		{in: "last tuesday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_UnmarshalEmpty(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}
