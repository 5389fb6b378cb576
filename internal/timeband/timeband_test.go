package timeband

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandsCoverWholeDay(t *testing.T) {
	for s := 0; s < SlotsPerDay; s++ {
		assert.NotPanics(t, func() { BandForSlot(s) }, "slot %d should be covered", s)
	}
}

func TestBandsAreContiguous(t *testing.T) {
	require.Equal(t, 0, Bands[0].StartSlot)
	for i := 1; i < len(Bands); i++ {
		assert.Equal(t, Bands[i-1].EndSlot, Bands[i].StartSlot, "gap between band %d and %d", i-1, i)
	}
	assert.Equal(t, SlotsPerDay, Bands[len(Bands)-1].EndSlot)
}

func TestNuitStartSlotDerivedFromBandWidths(t *testing.T) {
	// Matin 36 + Matinée 36 + Midi 24 + Après-midi 48 + Access Prime 24 +
	// Prime Time 30 + Deuxième partie 24 = 222 slots before Nuit.
	assert.Equal(t, 222, NuitStartSlot)
}

func TestSlotFromTimeRoundTrip(t *testing.T) {
	tests := []struct {
		hour, minute, wantSlot int
	}{
		{6, 0, 0},
		{12, 0, 72},
		{20, 0, 168},
		{24, 30, 222},
	}
	for _, tt := range tests {
		slot, err := SlotFromTime(tt.hour, tt.minute)
		require.NoError(t, err)
		assert.Equal(t, tt.wantSlot, slot)

		gotHour, gotMinute := TimeFromSlot(slot)
		assert.Equal(t, tt.hour, gotHour)
		assert.Equal(t, tt.minute, gotMinute)
	}
}

func TestSlotFromTimeOutOfRange(t *testing.T) {
	_, err := SlotFromTime(5, 0)
	assert.Error(t, err)
}

func TestHHMMFromSlotWrapsPastMidnight(t *testing.T) {
	slot, err := SlotFromTime(24, 30)
	require.NoError(t, err)
	assert.Equal(t, "00:30", HHMMFromSlot(slot))
}

func TestDayCoefficient(t *testing.T) {
	assert.Equal(t, 1.0, DayCoefficient(0))
	assert.Equal(t, 1.1, DayCoefficient(5))
	assert.Equal(t, 1.2, DayCoefficient(6))
}

func TestDurationSlotsRoundsUp(t *testing.T) {
	assert.Equal(t, 6, DurationSlots(26))
	assert.Equal(t, 6, DurationSlots(30))
	assert.Equal(t, 7, DurationSlots(31))
}

func TestAdBreaksForProgram(t *testing.T) {
	assert.Equal(t, 0, AdBreaksForProgram("Film", 20))
	assert.Equal(t, 2, AdBreaksForProgram("Film", 120))
	assert.Equal(t, 3, AdBreaksForProgram("Série", 90))
}

func TestAdRateMilli(t *testing.T) {
	assert.Equal(t, 0, AdRateMilli("Film", 0))
	rate := AdRateMilli("Série", 90)
	assert.Greater(t, rate, 0)
}
