package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBackendName(t *testing.T) {
	cases := map[string]string{
		"ortools":   "cpsat",
		"cpsat":     "cpsat",
		"minizinc":  "findomain",
		"findomain": "findomain",
	}
	for flagValue, want := range cases {
		got, err := resolveBackendName(flagValue)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResolveBackendNameRejectsUnknown(t *testing.T) {
	_, err := resolveBackendName("gecode")
	assert.Error(t, err)
}

func TestResolveWeekStartParsesExplicitDate(t *testing.T) {
	got, err := resolveWeekStart("2026-08-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), got)
}

func TestResolveWeekStartRejectsMalformedDate(t *testing.T) {
	_, err := resolveWeekStart("08/03/2026")
	assert.Error(t, err)
}

func TestResolveWeekStartDefaultsToNextMondayMidnightUTC(t *testing.T) {
	got, err := resolveWeekStart("")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, got.Weekday())
	assert.True(t, got.After(time.Now()))
	assert.Equal(t, time.UTC, got.Location())
}

func TestDefaultHintOutPath(t *testing.T) {
	assert.Equal(t, "schedule.json.hints.json", defaultHintOutPath("schedule.json"))
}

func TestDurationFlagAcceptsBareSeconds(t *testing.T) {
	var d durationFlag
	require.NoError(t, d.Set("600"))
	assert.Equal(t, 600*time.Second, time.Duration(d))
}

func TestDurationFlagAcceptsDurationString(t *testing.T) {
	var d durationFlag
	require.NoError(t, d.Set("10m"))
	assert.Equal(t, 10*time.Minute, time.Duration(d))
}

func TestDurationFlagRejectsGarbage(t *testing.T) {
	var d durationFlag
	assert.Error(t, d.Set("not-a-duration"))
}

func TestDurationFlagStringRoundTrips(t *testing.T) {
	d := durationFlag(90 * time.Second)
	assert.Equal(t, "1m30s", d.String())
}
