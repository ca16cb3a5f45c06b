package localday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	cases := []struct {
		name string
		utc  string
		want string
	}{
		{"utc afternoon is next local day", "2024-03-09T15:00:00Z", "2024-03-10"},
		{"last second of local day", "2024-03-10T14:59:59Z", "2024-03-10"},
		{"utc morning same local day", "2024-03-10T01:00:00Z", "2024-03-10"},
		{"utc midnight", "2024-03-10T00:00:00Z", "2024-03-10"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts, err := time.Parse(time.RFC3339, c.utc)
			require.NoError(t, err)
			assert.Equal(t, c.want, DateOf(ts))
		})
	}
}

func TestWindowBoundaries(t *testing.T) {
	from, until, err := Window("2024-05-01", "2024-05-31")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 4, 30, 15, 0, 0, 0, time.UTC), from.UTC())
	assert.Equal(t, time.Date(2024, 5, 31, 15, 0, 0, 0, time.UTC), until.UTC())

	lastSecond := time.Date(2024, 5, 31, 23, 59, 59, 0, Location)
	assert.True(t, lastSecond.Before(until))

	nextMidnight := lastSecond.Add(time.Second)
	assert.False(t, nextMidnight.Before(until))
}

func TestWindowSingleDay(t *testing.T) {
	from, until, err := Window("2024-05-01", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, until.Sub(from))
}

func TestWindowRejectsInvertedRange(t *testing.T) {
	_, _, err := Window("2024-05-02", "2024-05-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestStartOfInvalid(t *testing.T) {
	_, err := StartOf("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.False(t, Valid("yesterday"))
	assert.True(t, Valid("2024-02-29"))
}
