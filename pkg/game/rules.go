package game

import "github.com/jwebster45206/grand-tour/pkg/geo"

// Rules holds every tunable constant of the state machine. Tests
// override individual fields to pin down probabilistic branches.
type Rules struct {
	// Movement.
	MoveSpeedDeg   float64 // degrees per move before multipliers
	FatigueStamina float64 // below this, movement speed is halved

	// Stamina.
	MaxStamina   float64
	StaminaCost  float64 // base cost per move, scaled by (1 - staminaBonus)
	RegenChance  float64 // per-move probability of regeneration
	RegenAmount  float64 // base regen, scaled by (1 + staminaBonus)
	RestMoves    int     // move penalty when an event empties stamina
	RestRecovery float64 // stamina after a forced rest

	// City entry and endpoint reveal share a default radius. Both are
	// named so either historical behavior can be reproduced.
	CityEntryThresholdKm float64
	RevealThresholdKm    float64

	// Two-stage endpoint.
	HiddenLocation geo.Point
	SecretSite     geo.Point

	// Scoring.
	RiddlePoints       int
	WrongAnswerPenalty int
	MoveTarget         int // completion bonus: max(0, target - moves) / scale
	MoveScale          int

	// Random encounters.
	EventChance float64 // per-move trigger probability when none is pending
}

// DefaultRules returns the standard tuning.
func DefaultRules() Rules {
	return Rules{
		MoveSpeedDeg:   0.1,
		FatigueStamina: 20,

		MaxStamina:   100,
		StaminaCost:  0.2,
		RegenChance:  0.15,
		RegenAmount:  10,
		RestMoves:    20,
		RestRecovery: 30,

		CityEntryThresholdKm: 25.0,
		RevealThresholdKm:    25.0,

		HiddenLocation: geo.Point{Lat: 46.8566, Lon: 2.3522},   // center of France
		SecretSite:     geo.Point{Lat: 44.114833, Lon: 0.925222}, // Château de Goudourville

		RiddlePoints:       100,
		WrongAnswerPenalty: 10,
		MoveTarget:         1000,
		MoveScale:          10,

		EventChance: 0.08,
	}
}
