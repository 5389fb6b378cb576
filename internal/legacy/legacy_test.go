package legacy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/legacy"
	"github.com/airtime/gridplanner/internal/timeband"
)

var monday = time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

func basicProgram(id string, durationMinutes, baseAudience int) catalog.Program {
	return catalog.Program{
		ID:              id,
		Title:           id,
		Genre:           gridmodel.GenreFilm,
		DurationMinutes: durationMinutes,
		Cost:            1000,
		BaseAudience:    baseAudience,
		Origin:          "France",
	}
}

func TestComputeAudienceAppliesHeritageBoost(t *testing.T) {
	p := basicProgram("p1", 60, 1_000_000)
	withoutHeritage := legacy.ComputeAudience(p, 0, 0, 0, 0)
	withStrongLeadIn := legacy.ComputeAudience(p, 0, 0, 2_000_000, 0)
	assert.Greater(t, withStrongLeadIn, withoutHeritage)
}

func TestComputeAudienceAppliesWeakLeadInPenalty(t *testing.T) {
	p := basicProgram("p1", 60, 1_000_000)
	base := legacy.ComputeAudience(p, 0, 0, 0, 0)
	withWeakLeadIn := legacy.ComputeAudience(p, 0, 0, 100_000, 0)
	assert.Less(t, withWeakLeadIn, base)
}

func TestComputeAudienceAppliesPreferredSlotBonus(t *testing.T) {
	slot, err := timeband.SlotFromTime(21, 0)
	require.NoError(t, err)
	p := basicProgram("p1", 60, 1_000_000)
	p.PreferredSlots = []string{"21:00"}

	withBonus := legacy.ComputeAudience(p, 0, slot, 0, 0)
	p.PreferredSlots = nil
	withoutBonus := legacy.ComputeAudience(p, 0, slot, 0, 0)
	assert.Greater(t, withBonus, withoutBonus)
}

func TestCheckRerunAllowedWithoutHistory(t *testing.T) {
	p := basicProgram("p1", 60, 1_000_000)
	assert.True(t, legacy.CheckRerunAllowed(p, monday))
}

func TestCheckRerunAllowedRespectsMinGap(t *testing.T) {
	last := monday.AddDate(0, 0, -5)
	gap := 10
	p := basicProgram("p1", 60, 1_000_000)
	p.LastBroadcastDate = &last
	p.MinRerunDays = &gap
	assert.False(t, legacy.CheckRerunAllowed(p, monday))

	longAgo := monday.AddDate(0, 0, -30)
	p.LastBroadcastDate = &longAgo
	assert.True(t, legacy.CheckRerunAllowed(p, monday))
}

func TestCheckSlotFits(t *testing.T) {
	p := basicProgram("p1", 60, 1_000_000) // 1 hour = 12 slots at 5 minutes each
	assert.True(t, legacy.CheckSlotFits(p, timeband.SlotsPerDay-12))
	assert.False(t, legacy.CheckSlotFits(p, timeband.SlotsPerDay-11))
}

func TestCheckFixedDay(t *testing.T) {
	p := basicProgram("p1", 60, 1_000_000)
	assert.True(t, legacy.CheckFixedDay(p, 3), "no fixed_days means every day is allowed")

	p.FixedDays = []int{1, 3}
	assert.True(t, legacy.CheckFixedDay(p, 1))
	assert.False(t, legacy.CheckFixedDay(p, 2))
}

func TestCheckSeriesMaxPerWeek(t *testing.T) {
	p := basicProgram("s1", 45, 500_000)
	assert.True(t, legacy.CheckSeriesMaxPerWeek(p, 0), "default cap of 1 allows the first episode")
	assert.False(t, legacy.CheckSeriesMaxPerWeek(p, 1))

	maxEpisodes := 3
	p.MaxEpisodesPerWeek = &maxEpisodes
	assert.True(t, legacy.CheckSeriesMaxPerWeek(p, 2))
	assert.False(t, legacy.CheckSeriesMaxPerWeek(p, 3))
}

func TestIsEligibleRejectsAlreadyUsedProgram(t *testing.T) {
	p := basicProgram("p1", 60, 1_000_000)
	used := map[string]bool{"p1": true}
	assert.False(t, legacy.IsEligible(p, monday, 0, 0, used, map[string]int{}))
}

func TestIsEligibleAllowsSeriesRepeatsUpToCap(t *testing.T) {
	p := basicProgram("s1", 45, 500_000)
	p.Genre = gridmodel.GenreSerie
	used := map[string]bool{}
	seriesCount := map[string]int{}
	assert.True(t, legacy.IsEligible(p, monday, 0, 0, used, seriesCount))
}

func TestGreedyScheduleHasNoOverlap(t *testing.T) {
	programs := []catalog.Program{
		basicProgram("p1", 30, 2_000_000),
		basicProgram("p2", 60, 1_500_000),
		basicProgram("p3", 90, 1_000_000),
	}
	sched := legacy.GreedySchedule(programs, monday)

	for d := 0; d < timeband.Days; d++ {
		occupied := map[int]bool{}
		for _, item := range sched.Days[d] {
			dur := timeband.DurationSlots(item.Program.DurationMinutes)
			for s := item.StartSlot; s < item.StartSlot+dur; s++ {
				assert.False(t, occupied[s], "day %d slot %d double-booked", d, s)
				occupied[s] = true
			}
		}
	}
}

func TestGreedyScheduleNeverReusesNonSeriesProgramInWeek(t *testing.T) {
	programs := []catalog.Program{basicProgram("p1", 240, 2_000_000)}
	sched := legacy.GreedySchedule(programs, monday)

	uses := 0
	for d := 0; d < timeband.Days; d++ {
		for _, item := range sched.Days[d] {
			if item.Program.ID == "p1" {
				uses++
			}
		}
	}
	assert.LessOrEqual(t, uses, 1)
}

func TestLocalSearchNeverDecreasesTotalProfit(t *testing.T) {
	programs := []catalog.Program{
		basicProgram("p1", 30, 2_000_000),
		basicProgram("p2", 30, 1_500_000),
		basicProgram("p3", 30, 1_000_000),
	}
	sched := legacy.GreedySchedule(programs, monday)
	before := sched.TotalProfit()

	improved := legacy.LocalSearch(sched, programs, 200, 1)
	assert.GreaterOrEqual(t, improved.TotalProfit(), before)
}

func TestTotalProfitSumsAllDays(t *testing.T) {
	var sched legacy.Schedule
	sched.Days[0] = []legacy.ScheduledItem{
		{Day: 0, StartSlot: 0, Program: basicProgram("p1", 60, 1_000_000), Audience: 1_000_000},
	}
	assert.NotZero(t, sched.TotalProfit())
}
