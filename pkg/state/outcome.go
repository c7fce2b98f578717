package state

import (
	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/geo"
)

// MoveOutcome describes what a single directional move produced.
type MoveOutcome struct {
	Position         geo.Point `json:"position"`
	NearestCity      string    `json:"nearest_city"`
	DistanceToCityKm float64   `json:"distance_to_city_km"`
	Stamina          float64   `json:"stamina"`
	Score            int       `json:"score"`
	Moves            int       `json:"moves"`
	CitiesVisited    int       `json:"cities_visited"`
	TotalCities      int       `json:"total_cities"`
	Companions       []string  `json:"companions"`

	CurrentCity   string `json:"current_city,omitempty"`
	InCity        bool   `json:"in_city"`
	CurrentRiddle string `json:"current_riddle,omitempty"`
	EnteredCity   bool   `json:"entered_city"` // this move crossed into the city radius

	HiddenLocationRevealed bool       `json:"hidden_location_revealed"`
	HiddenLocation         *geo.Point `json:"hidden_location,omitempty"`
	SecretSiteRevealed     bool       `json:"secret_site_revealed"`
	SecretSite             *geo.Point `json:"secret_site,omitempty"`
	AtSecretSite           bool       `json:"at_secret_site"`

	// Event is set when this move triggered a random encounter.
	Event *content.RandomEvent `json:"event,omitempty"`

	GameOver bool   `json:"game_over"`
	Message  string `json:"message,omitempty"`
}

// SolveOutcome describes the result of a riddle attempt.
type SolveOutcome struct {
	Correct                bool                  `json:"correct"`
	Message                string                `json:"message"`
	Score                  int                   `json:"score"`
	CitiesVisited          int                   `json:"cities_visited"`
	TotalCities            int                   `json:"total_cities"`
	Companions             []string              `json:"companions"`
	HiddenLocationRevealed bool                  `json:"hidden_location_revealed"`
	HiddenLocation         *geo.Point            `json:"hidden_location,omitempty"`
	NewAchievements        []content.Achievement `json:"new_achievements,omitempty"`
}

// EventOutcome describes the applied effect of an event choice.
type EventOutcome struct {
	Moves      int       `json:"moves"`
	Stamina    float64   `json:"stamina"`
	Score      int       `json:"score"`
	Position   geo.Point `json:"position"`
	ForcedRest bool      `json:"forced_rest"` // stamina bottomed out and the player had to rest
	RiddleHint bool      `json:"riddle_hint"`

	NewAchievements []content.Achievement `json:"new_achievements,omitempty"`
}

// LocationCheck is the reveal-flag snapshot returned by the
// check-location query.
type LocationCheck struct {
	ShowHidden     bool       `json:"show_hidden"`
	HiddenLocation *geo.Point `json:"hidden_location,omitempty"`
	ShowSecretSite bool       `json:"show_secret_site"`
	SecretSite     *geo.Point `json:"secret_site,omitempty"`
	AtSecretSite   bool       `json:"at_secret_site"`
	Message        string     `json:"message,omitempty"`
}
