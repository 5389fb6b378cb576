package solver

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/airtime/gridplanner/internal/gridmodel"
)

// hintTriple mirrors the on-disk warm-start hint format of spec.md §4.2.
type hintTriple struct {
	DayIndex  int    `json:"day_index"`
	StartSlot int    `json:"start_slot"`
	ProgramID string `json:"program_id"`
}

// LoadHints reads a prior-solution hint file. A missing file is not an
// error: it is silently skipped per spec.md §4.2, returning a nil slice.
func LoadHints(path string, pre *gridmodel.Precomputed) ([]Start, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("solver: read hint file: %w", err)
	}

	var triples []hintTriple
	if err := json.Unmarshal(raw, &triples); err != nil {
		return nil, fmt.Errorf("solver: parse hint file: %w", err)
	}

	starts := make([]Start, 0, len(triples))
	for _, t := range triples {
		p, ok := pre.ProgIndex[t.ProgramID]
		if !ok {
			continue
		}
		starts = append(starts, Start{Day: t.DayIndex, Slot: t.StartSlot, Program: p})
	}
	return starts, nil
}

// WriteHints serializes starts to path in the warm-start hint format, for
// feeding a subsequent run (including the round-trip test in spec.md §8).
func WriteHints(path string, pre *gridmodel.Precomputed, starts []Start) error {
	triples := make([]hintTriple, 0, len(starts))
	for _, s := range starts {
		triples = append(triples, hintTriple{
			DayIndex:  s.Day,
			StartSlot: s.Slot,
			ProgramID: pre.Programs[s.Program].ID,
		})
	}
	raw, err := json.MarshalIndent(triples, "", "  ")
	if err != nil {
		return fmt.Errorf("solver: marshal hints: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
