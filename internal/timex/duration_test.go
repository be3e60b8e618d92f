package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"10m","b":1000000000}`), &v))
	assert.Equal(t, 10*time.Minute, v.A.Duration)
	assert.Equal(t, time.Second, v.B.Duration)
}

func TestDuration_UnmarshalJSON_Errors(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"ten minutes"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 168 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, `"168h0m0s"`, string(b))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1h30m", 90 * time.Minute},
		{"0", 0},
		{"7d", 7 * 24 * time.Hour},
		{"2 days", 48 * time.Hour},
		{"10h", 10 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"2.5 hrs", 150 * time.Minute},
		{"90S", 90 * time.Second},
		{"120", 120 * time.Millisecond},
		{"1y", time.Duration(365.25 * 24 * float64(time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration_Errors(t *testing.T) {
	for _, in := range []string{"", "forever", "7 fortnights", "1d2h", "9999999999y"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestDuration_UnmarshalJSON_Days(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"7d"`), &d))
	assert.Equal(t, 7*24*time.Hour, d.Duration)
}
