// Package cache provides a Redis-backed store for warm-start hints, so a
// solve can be seeded from the most recent successful run without reading
// the hint file back off disk every time.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/solver"
)

// defaultTTL bounds how long a cached hint set is considered fresh enough
// to bias a new solve.
const defaultTTL = 7 * 24 * time.Hour

// HintStore wraps a Redis client holding the most recent warm-start hints
// per week key.
type HintStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewHintStore connects to addr and instruments the client with OTel
// tracing, the same way the teacher's RedisStore does.
func NewHintStore(addr string) (*HintStore, error) {
	hs := &HintStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}
	if err := redisotel.InstrumentTracing(hs.Client); err != nil {
		return nil, fmt.Errorf("cache: instrument redis tracing: %w", err)
	}
	if err := hs.Client.Ping(hs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}
	zap.L().Info("connected to redis hint store", zap.String("addr", addr))
	return hs, nil
}

// storeEntry is the JSON-serialized form of a cached hint set.
type storeEntry struct {
	Day     int    `json:"day"`
	Slot    int    `json:"slot"`
	Program string `json:"program"`
}

func keyFor(weekStart string) string {
	return fmt.Sprintf("gridplanner:hints:%s", weekStart)
}

// Save persists starts, resolving program indices to ids via programID, under a
// TTL so stale hints don't bias unrelated future weeks indefinitely.
func (h *HintStore) Save(weekStart string, starts []solver.Start, programID func(int) string) error {
	entries := make([]storeEntry, 0, len(starts))
	for _, s := range starts {
		entries = append(entries, storeEntry{Day: s.Day, Slot: s.Slot, Program: programID(s.Program)})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cache: marshal hints: %w", err)
	}
	return h.Client.Set(h.Ctx, keyFor(weekStart), raw, defaultTTL).Err()
}

// Load retrieves the cached hints for weekStart, resolving program ids via
// progIndex. Returns nil, nil on a cache miss.
func (h *HintStore) Load(weekStart string, progIndex map[string]int) ([]solver.Start, error) {
	raw, err := h.Client.Get(h.Ctx, keyFor(weekStart)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get hints: %w", err)
	}

	var entries []storeEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("cache: unmarshal hints: %w", err)
	}

	starts := make([]solver.Start, 0, len(entries))
	for _, e := range entries {
		p, ok := progIndex[e.Program]
		if !ok {
			continue
		}
		starts = append(starts, solver.Start{Day: e.Day, Slot: e.Slot, Program: p})
	}
	return starts, nil
}

// Close shuts down the Redis client.
func (h *HintStore) Close() {
	if h != nil && h.Client != nil {
		if err := h.Client.Close(); err != nil {
			zap.L().Error("cache: redis close", zap.Error(err))
		}
	}
}
