// Package catalog defines the Program data model and the providers that
// yield a program list and target week for a planning run.
package catalog

import "time"

// Program is a single catalog entry: a piece of content that can be
// scheduled into the grid. Field names mirror the catalog's JSON schema.
type Program struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Genre    string `json:"genre"`
	Subgenre string `json:"subgenre"`

	DurationMinutes int     `json:"duration_minutes"`
	Cost            int     `json:"cost"`
	BaseAudience    int     `json:"base_audience"`
	Origin          string  `json:"origin"`
	Year            int     `json:"year"`
	AgeRating       string  `json:"age_rating"`

	Independent  bool `json:"independent"`
	InProduction bool `json:"in_production"`

	// Rights envelope. Pointers so "not set" is distinguishable from the
	// zero date, matching the catalog's optional-field semantics.
	RightsStart *time.Time `json:"rights_start,omitempty"`
	RightsEnd   *time.Time `json:"rights_end,omitempty"`

	// Rerun policy.
	LastBroadcastDate *time.Time `json:"last_broadcast_date,omitempty"`
	MinRerunDays      *int       `json:"min_rerun_days,omitempty"`

	// Series metadata.
	Season              *int    `json:"season,omitempty"`
	Episode             *int    `json:"episode,omitempty"`
	TotalEpisodes       *int    `json:"total_episodes,omitempty"`
	MaxEpisodesPerWeek  *int    `json:"max_episodes_per_week,omitempty"`
	UsualDay            *int    `json:"usual_day,omitempty"` // 0=Monday..6=Sunday
	UsualTime           *string `json:"usual_time,omitempty"` // "HH:MM"
	PreviousEpisode     *string `json:"previous_episode,omitempty"`

	// Editorial tags.
	IsNew           bool `json:"is_new"`
	IsExclusive     bool `json:"is_exclusive"`
	FirstBroadcast  bool `json:"first_broadcast"`
	HealthMagazine  bool `json:"health_magazine"`

	// Slot hints.
	PreferredSlots     []string `json:"preferred_slots,omitempty"`
	ForbiddenSlots     []string `json:"forbidden_slots,omitempty"`
	CompatibleGenres   []string `json:"compatible_genres,omitempty"`
	IncompatibleGenres []string `json:"incompatible_genres,omitempty"`

	// Hard pinning.
	FixedTime *string `json:"fixed_time,omitempty"` // "HH:MM"
	FixedDays []int   `json:"fixed_days,omitempty"` // subset of 0..6

	TargetAudience []string `json:"target_audience,omitempty"`
}

// Provider yields the catalog and the target planning week.
type Provider interface {
	Load() (programs []Program, weekStart time.Time, err error)
}
