package solver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/observability"
	"github.com/airtime/gridplanner/internal/timeband"
)

var monday = time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

func buildSmallInstance(t *testing.T) (*gridmodel.Precomputed, *Instance) {
	t.Helper()
	p := catalog.Program{
		ID:              "p1",
		Title:           "p1",
		Genre:           gridmodel.GenreFilm,
		DurationMinutes: 90,
		Cost:            1000,
		BaseAudience:    1_000_000,
		Origin:          "France",
	}
	pre, err := gridmodel.Build([]catalog.Program{p}, monday, observability.NewNoOpRegistry())
	require.NoError(t, err)
	return pre, BuildInstance(pre)
}

func TestBuildInstanceVariableCount(t *testing.T) {
	pre, inst := buildSmallInstance(t)
	total := 0
	for cell, candidates := range pre.AllowedStarts {
		for _, p := range candidates {
			if !crossesFixedCell(pre, cell.Day, cell.Slot, pre.DurationSlots[p]) {
				total++
			}
		}
	}
	assert.Equal(t, total, inst.VariableCount())
}

// fixtureWithCrossingCandidate builds a two-program Precomputed where
// "news" is pinned at (day 0, slot 40) and "long" is a non-fixed candidate
// allowed to start a few slots earlier with a duration that runs straight
// through slot 40 without landing on it — the case a long Access Prime
// program silently burying the 20:00 JT block.
func fixtureWithCrossingCandidate(t *testing.T) (*gridmodel.Precomputed, int, int) {
	t.Helper()
	const fixedSlot = 40
	news := catalog.Program{ID: "news", Title: "news", Genre: gridmodel.GenreActualites, DurationMinutes: 5, Cost: 0, BaseAudience: 1, Origin: "France"}
	long := catalog.Program{ID: "long", Title: "long", Genre: gridmodel.GenreFilm, DurationMinutes: 25, Cost: 0, BaseAudience: 1, Origin: "France"}

	pre := &gridmodel.Precomputed{
		Programs:      []catalog.Program{news, long},
		ProgIndex:     map[string]int{"news": 0, "long": 1},
		DurationSlots: []int{1, 5},
		IsEuropean:    []bool{true, true},
		IsFrench:      []bool{true, true},
		GenreName:     []string{gridmodel.GenreActualites, gridmodel.GenreFilm},
		GenreID:       []int{0, 1},
		IsFiction:     []bool{false, true},
		AdRateMilli:   []int{0, 0},
		GenreIDs:      map[string]int{gridmodel.GenreActualites: 0, gridmodel.GenreFilm: 1},
		FixedStart:    map[gridmodel.DS]int{{Day: 0, Slot: fixedSlot}: 0},
		AllowedStarts: map[gridmodel.DS][]int{},
		Audience:      map[gridmodel.DSP]int{},
		Profit:        map[gridmodel.DSP]int{},
		Revenue:       map[gridmodel.DSP]int{},
	}
	pre.AllowedStarts[gridmodel.DS{Day: 0, Slot: fixedSlot}] = []int{0}
	pre.AllowedStarts[gridmodel.DS{Day: 0, Slot: fixedSlot - 3}] = []int{1}
	return pre, 0, 1
}

func TestCrossesFixedCellRejectsSpanOverAPinnedSlot(t *testing.T) {
	pre, _, longIdx := fixtureWithCrossingCandidate(t)
	assert.True(t, crossesFixedCell(pre, 0, 37, pre.DurationSlots[longIdx]),
		"a 5-slot program starting at 37 covers the fixed slot at 40 without landing on it")
}

func TestBuildInstanceExcludesCandidateThatCrossesFixedCell(t *testing.T) {
	pre, newsIdx, longIdx := fixtureWithCrossingCandidate(t)
	inst := BuildInstance(pre)

	for _, st := range inst.StartsByDay[0] {
		assert.NotEqual(t, longIdx, st.Program, "crossing candidate must not survive into StartsByDay")
	}
	cell := gridmodel.DS{Day: 0, Slot: 37}
	assert.NotContains(t, inst.CandidatesByCell[cell], longIdx)

	// The fixed cell itself still resolves to the pinned program.
	p, ok := inst.FixedStart(0, 40)
	require.True(t, ok)
	assert.Equal(t, newsIdx, p)
}

func TestInstanceFixedStart(t *testing.T) {
	_, inst := buildSmallInstance(t)
	slot, err := timeband.SlotFromTime(13, 0)
	require.NoError(t, err)
	p, ok := inst.FixedStart(0, slot)
	require.True(t, ok)
	assert.Equal(t, "jt-1300", inst.Pre.Programs[p].ID)
}

func TestCoversIndexIncludesFullSpan(t *testing.T) {
	_, inst := buildSmallInstance(t)
	slot, err := timeband.SlotFromTime(13, 0)
	require.NoError(t, err)
	dur := timeband.DurationSlots(40) // jt blocks run 40 minutes
	for t2 := slot; t2 < slot+dur; t2++ {
		covering := inst.Covers[gridmodel.DS{Day: 0, Slot: t2}]
		found := false
		for _, st := range covering {
			if st.Slot == slot {
				found = true
			}
		}
		assert.True(t, found, "slot %d should be covered by the 13:00 start", t2)
	}
}

func TestHintsRoundTrip(t *testing.T) {
	pre, inst := buildSmallInstance(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "hints.json")

	starts := inst.StartsByDay[0]
	require.NotEmpty(t, starts)

	require.NoError(t, WriteHints(path, pre, starts))
	loaded, err := LoadHints(path, pre)
	require.NoError(t, err)
	assert.ElementsMatch(t, starts, loaded)
}

func TestLoadHintsMissingFileIsNotAnError(t *testing.T) {
	pre, _ := buildSmallInstance(t)
	hints, err := LoadHints(filepath.Join(t.TempDir(), "missing.json"), pre)
	assert.NoError(t, err)
	assert.Nil(t, hints)
}

func TestLoadHintsEmptyPath(t *testing.T) {
	hints, err := LoadHints("", nil)
	assert.NoError(t, err)
	assert.Nil(t, hints)
}

func TestEvaluateAndPenaltyOnTrivialWeek(t *testing.T) {
	pre, inst := buildSmallInstance(t)

	week := make([][]Start, timeband.Days)
	for d := 0; d < timeband.Days; d++ {
		week[d] = inst.StartsByDay[d]
	}

	m := Evaluate(inst, week)
	assert.GreaterOrEqual(t, m.TotalCost, 0)

	penalty := Penalty(pre, m)
	assert.GreaterOrEqual(t, penalty, 0.0)
}

func TestSeriesFrequencyViolations(t *testing.T) {
	serie := catalog.Program{
		ID:              "s1",
		Title:           "s1",
		Genre:           gridmodel.GenreSerie,
		DurationMinutes: 45,
		Cost:            500,
		BaseAudience:    500_000,
		Origin:          "France",
	}
	pre, err := gridmodel.Build([]catalog.Program{serie}, monday, observability.NewNoOpRegistry())
	require.NoError(t, err)
	idx := pre.ProgIndex["s1"]

	m := Metrics{ProgramUses: map[int]int{idx: 2}}
	bad := SeriesFrequencyViolations(pre, m)
	assert.Contains(t, bad, idx)

	m2 := Metrics{ProgramUses: map[int]int{idx: 1}}
	assert.Empty(t, SeriesFrequencyViolations(pre, m2))
}

func TestFixedCellViolationMakesMetricsInfeasible(t *testing.T) {
	pre := &gridmodel.Precomputed{
		Programs:      []catalog.Program{{ID: "news", Genre: gridmodel.GenreActualites}},
		DurationSlots: []int{1},
		IsEuropean:    []bool{true},
		IsFrench:      []bool{true},
		GenreName:     []string{gridmodel.GenreActualites},
		GenreID:       []int{0},
		IsFiction:     []bool{false},
		AdRateMilli:   []int{0},
		GenreIDs:      map[string]int{gridmodel.GenreActualites: 0},
		FixedStart:    map[gridmodel.DS]int{{Day: 0, Slot: 40}: 0},
	}
	week := make([][]Start, timeband.Days)
	// Day 0 has no start at slot 40 at all: the pinned block was dropped.
	week[0] = []Start{{Day: 0, Slot: 0, Program: 0}}

	m := Evaluate(&Instance{Pre: pre}, week)
	assert.Equal(t, 1, m.FixedViolations)
	assert.False(t, m.Feasible(pre))
	assert.Greater(t, Penalty(pre, m), 0.0)
}

func TestFixedCellSatisfiedWhenPinnedProgramIsChosenAtItsSlot(t *testing.T) {
	pre := &gridmodel.Precomputed{
		Programs:      []catalog.Program{{ID: "news", Genre: gridmodel.GenreActualites}},
		DurationSlots: []int{1},
		IsEuropean:    []bool{true},
		IsFrench:      []bool{true},
		GenreName:     []string{gridmodel.GenreActualites},
		GenreID:       []int{0},
		IsFiction:     []bool{false},
		AdRateMilli:   []int{0},
		GenreIDs:      map[string]int{gridmodel.GenreActualites: 0},
		FixedStart:    map[gridmodel.DS]int{{Day: 0, Slot: 40}: 0},
	}
	week := make([][]Start, timeband.Days)
	week[0] = []Start{{Day: 0, Slot: 40, Program: 0}}

	m := Evaluate(&Instance{Pre: pre}, week)
	assert.Equal(t, 0, m.FixedViolations)
}

func TestModelBuildErrorMessage(t *testing.T) {
	err := &ModelBuildError{Day: 1, Slot: 20, ProgramID: "p1", LikelyRule: "duration does not fit"}
	assert.Contains(t, err.Error(), "p1")
	assert.Contains(t, err.Error(), "duration does not fit")
}
