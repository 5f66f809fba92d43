package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2030-03-01":                "2030-03-01",
		" 2030-03-01 ":              "2030-03-01",
		"2030-03-01T22:30:00Z":      "2030-03-01",
		"2030-03-01T23:30:00-05:00": "2030-03-02", // UTC day
		"2030-03-01 00:00:00+00:00": "2030-03-01",
	}
	for in, want := range cases {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.String(), in)
		assert.Equal(t, time.UTC, d.Location())
	}

	_, err := ParseDate("03/01/2030")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(MustDate("2030-03-01"), MustDate("2030-03-04")))
	assert.Equal(t, 0, Nights(MustDate("2030-03-01"), MustDate("2030-03-01")))
	// crosses the March DST change in most zones; dates are UTC so still whole days
	assert.Equal(t, 31, Nights(MustDate("2030-03-01"), MustDate("2030-04-01")))
}

func TestOverlapsIsInclusive(t *testing.T) {
	in, out := MustDate("2030-03-10"), MustDate("2030-03-15")

	tests := []struct {
		name      string
		bIn, bOut string
		want      bool
	}{
		{"inside", "2030-03-11", "2030-03-12", true},
		{"covers", "2030-03-01", "2030-03-20", true},
		{"starts on check-out day", "2030-03-15", "2030-03-18", true},
		{"ends on check-in day", "2030-03-05", "2030-03-10", true},
		{"before", "2030-03-01", "2030-03-09", false},
		{"after", "2030-03-16", "2030-03-20", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(in, out, MustDate(tt.bIn), MustDate(tt.bOut))
			assert.Equal(t, tt.want, got)
			// symmetric
			assert.Equal(t, tt.want, Overlaps(MustDate(tt.bIn), MustDate(tt.bOut), in, out))
		})
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		In  Date `json:"in"`
		Out Date `json:"out"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"in":"2030-03-01","out":null}`), &v))
	assert.Equal(t, "2030-03-01", v.In.String())
	assert.True(t, v.Out.IsZero())

	b, err := json.Marshal(v.In)
	require.NoError(t, err)
	assert.JSONEq(t, `"2030-03-01"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`{"in":"tomorrow"}`), &v))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2030-03-01", d.String())

	require.NoError(t, d.Scan([]byte("2030-04-02")))
	assert.Equal(t, "2030-04-02", d.String())

	require.NoError(t, d.Scan("2030-05-03 00:00:00"))
	assert.Equal(t, "2030-05-03", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := MustDate("2030-03-01").Value()
	require.NoError(t, err)
	assert.Equal(t, "2030-03-01", v)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(BookingPending, BookingConfirmed))
	assert.True(t, CanTransition(BookingPending, BookingCancelled))
	assert.True(t, CanTransition(BookingConfirmed, BookingCancelled))

	assert.False(t, CanTransition(BookingConfirmed, BookingPending))
	assert.False(t, CanTransition(BookingCancelled, BookingConfirmed))
	assert.False(t, CanTransition(BookingCancelled, BookingPending))
	assert.False(t, CanTransition(BookingPending, BookingPending))
	assert.False(t, CanTransition(BookingPending, "archived"))
}

func TestStringListAndJSONMap(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["pool","wifi"]`))
	assert.Equal(t, StringList{"pool", "wifi"}, l)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var m JSONMap
	require.NoError(t, m.Scan([]byte(`{"processor":"mock"}`)))
	assert.Equal(t, "mock", m["processor"])
}
