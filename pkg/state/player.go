// Package state defines the per-session game state and the outcome
// payloads produced by the game engine. PlayerState is a plain record
// with every field always present; it is mutated only by the engine's
// action handlers and persisted as a JSON blob between requests.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/grand-tour/pkg/geo"
)

// PlayerState is the full state of one player's run.
type PlayerState struct {
	ID          uuid.UUID `json:"id"`
	PlayerName  string    `json:"player_name"`
	CharacterID string    `json:"character_id"` // immutable after start

	Position     *geo.Point `json:"position,omitempty"` // nil until the game starts
	CurrentCity  string     `json:"current_city,omitempty"`
	InCity       bool       `json:"in_city"`
	ActiveRiddle string     `json:"active_riddle,omitempty"`

	SolvedCities    []string       `json:"solved_cities"` // append-only
	WrongAnswers    map[string]int `json:"wrong_answers"` // city → incorrect attempts
	Companions      []string       `json:"companions"`    // append-only
	MoveCount       int            `json:"move_count"`
	Stamina         float64        `json:"stamina"` // clamped to [0,100]
	TotalDistanceKm float64        `json:"total_distance_km"`
	Score           Score          `json:"score"`

	// Achievement bookkeeping.
	Achievements     map[string]bool `json:"achievements"`      // id → achieved
	LastSolveMoves   int             `json:"last_solve_moves"`  // moves spent on the most recent solve
	SolveMoveMark    int             `json:"solve_move_mark"`   // move count at the previous solve
	SuccessfulEvents int             `json:"successful_events"` // resolved event count

	// One-way reveal progression.
	HiddenLocationRevealed bool `json:"hidden_location_revealed"`
	SecretSiteRevealed     bool `json:"secret_site_revealed"`
	AtSecretSite           bool `json:"at_secret_site"`

	ActiveEventID  string `json:"active_event_id,omitempty"` // pending event awaiting a choice
	NextRiddleHint bool   `json:"next_riddle_hint"`

	HasDied      bool   `json:"has_died"`
	DeathMessage string `json:"death_message,omitempty"`
	Completed    bool   `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPlayerState creates a fresh state positioned at the given start
// coordinates, with full stamina and zero score.
func NewPlayerState(playerName, characterID string, start geo.Point) *PlayerState {
	now := time.Now()
	return &PlayerState{
		ID:           uuid.New(),
		PlayerName:   playerName,
		CharacterID:  characterID,
		Position:     &start,
		SolvedCities: make([]string, 0),
		WrongAnswers: make(map[string]int),
		Companions:   make([]string, 0),
		Achievements: make(map[string]bool),
		Stamina:      100.0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasSolved reports whether the city's riddle gate has been passed.
func (ps *PlayerState) HasSolved(cityID string) bool {
	for _, id := range ps.SolvedCities {
		if id == cityID {
			return true
		}
	}
	return false
}

// HasCompanion reports whether the companion has already been earned.
func (ps *PlayerState) HasCompanion(name string) bool {
	for _, c := range ps.Companions {
		if c == name {
			return true
		}
	}
	return false
}

// IsOver reports whether the run has ended, by death or completion.
func (ps *PlayerState) IsOver() bool {
	return ps.HasDied || ps.Completed
}
