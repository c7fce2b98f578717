// Package content holds the game's immutable registries: cities with
// their riddle gates, playable characters, random travel events, and
// achievements. Tables are parsed once from embedded YAML and never
// mutated afterward.
package content

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/grand-tour/pkg/geo"
)

//go:embed data/*.yaml
var dataFS embed.FS

// City is a fixed point of interest with an associated riddle gate.
type City struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Lat         float64  `yaml:"lat" json:"lat"`
	Lon         float64  `yaml:"lon" json:"lon"`
	Description string   `yaml:"description" json:"description"`
	Riddle      string   `yaml:"riddle" json:"riddle"`
	Answer      string   `yaml:"answer" json:"-"`
	Synonyms    []string `yaml:"synonyms" json:"-"`
	Difficulty  int      `yaml:"difficulty" json:"difficulty"` // 1-5

	// Companion, if set, is granted to the player the first time this
	// city's riddle is solved.
	Companion        string `yaml:"companion" json:"-"`
	CompanionMessage string `yaml:"companion_message" json:"-"`
}

// Position returns the city's coordinates as a geo.Point.
func (c City) Position() geo.Point {
	return geo.Point{Lat: c.Lat, Lon: c.Lon}
}

// Character is a playable character with movement, stamina and risk
// modifiers.
type Character struct {
	ID               string  `yaml:"id" json:"id"`
	Name             string  `yaml:"name" json:"name"`
	Icon             string  `yaml:"icon" json:"icon"`
	BonusDescription string  `yaml:"bonus_description" json:"bonus_description"`
	MoveMultiplier   float64 `yaml:"move_multiplier" json:"move_multiplier"`
	RiddleHintChance float64 `yaml:"riddle_hint_chance" json:"-"`
	EventBonusChance float64 `yaml:"event_bonus_chance" json:"-"`
	StaminaBonus     float64 `yaml:"stamina_bonus" json:"stamina_bonus"`
	DeadlyEventChance float64 `yaml:"deadly_event_chance" json:"-"`
	DeadlyEvent       string  `yaml:"deadly_event" json:"-"`
}

// EventEffect is the state delta applied when a choice is taken.
// A zero field means no change.
type EventEffect struct {
	Moves      int        `yaml:"moves" json:"moves,omitempty"`
	Stamina    float64    `yaml:"stamina" json:"stamina,omitempty"`
	Score      int        `yaml:"score" json:"score,omitempty"`
	Position   *[2]float64 `yaml:"position" json:"position,omitempty"` // lat/lon delta
	RiddleHint bool       `yaml:"riddle_hint" json:"riddle_hint,omitempty"`
}

// EventChoice is one option presented by a random event.
type EventChoice struct {
	Text        string      `yaml:"text" json:"text"`
	Consequence string      `yaml:"consequence" json:"consequence"`
	Effect      EventEffect `yaml:"effect" json:"-"`
}

// RandomEvent is a narrative encounter that can occur during travel.
type RandomEvent struct {
	ID          string        `yaml:"id" json:"id"`
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description" json:"description"`
	Choices     []EventChoice `yaml:"choices" json:"choices"`
}

// Achievement is a milestone the score evaluator can unlock.
type Achievement struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Points      int    `yaml:"points" json:"points"`
}

// Registry is the loaded set of content tables. It is read-only after
// Load and safe for concurrent use.
type Registry struct {
	cities       map[string]City
	cityOrder    []string
	characters   map[string]Character
	charOrder    []string
	events       []RandomEvent
	achievements map[string]Achievement
	achOrder     []string
}

// Load parses the embedded content tables and validates them.
func Load() (*Registry, error) {
	r := &Registry{
		cities:       make(map[string]City),
		characters:   make(map[string]Character),
		achievements: make(map[string]Achievement),
	}

	var cityDoc struct {
		Cities []City `yaml:"cities"`
	}
	if err := parseFile("data/cities.yaml", &cityDoc); err != nil {
		return nil, err
	}
	for _, c := range cityDoc.Cities {
		if c.ID == "" || c.Riddle == "" || c.Answer == "" {
			return nil, fmt.Errorf("city %q: missing id, riddle or answer", c.Name)
		}
		if c.Difficulty < 1 || c.Difficulty > 5 {
			return nil, fmt.Errorf("city %q: difficulty %d out of range 1-5", c.Name, c.Difficulty)
		}
		if _, dup := r.cities[c.ID]; dup {
			return nil, fmt.Errorf("duplicate city id %q", c.ID)
		}
		r.cities[c.ID] = c
		r.cityOrder = append(r.cityOrder, c.ID)
	}

	var charDoc struct {
		Characters []Character `yaml:"characters"`
	}
	if err := parseFile("data/characters.yaml", &charDoc); err != nil {
		return nil, err
	}
	for _, ch := range charDoc.Characters {
		if ch.ID == "" {
			return nil, fmt.Errorf("character %q: missing id", ch.Name)
		}
		if ch.MoveMultiplier == 0 {
			ch.MoveMultiplier = 1.0
		}
		if _, dup := r.characters[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate character id %q", ch.ID)
		}
		r.characters[ch.ID] = ch
		r.charOrder = append(r.charOrder, ch.ID)
	}

	var eventDoc struct {
		Events []RandomEvent `yaml:"events"`
	}
	if err := parseFile("data/events.yaml", &eventDoc); err != nil {
		return nil, err
	}
	for _, ev := range eventDoc.Events {
		if len(ev.Choices) == 0 {
			return nil, fmt.Errorf("event %q: no choices", ev.ID)
		}
	}
	r.events = eventDoc.Events

	var achDoc struct {
		Achievements []Achievement `yaml:"achievements"`
	}
	if err := parseFile("data/achievements.yaml", &achDoc); err != nil {
		return nil, err
	}
	for _, a := range achDoc.Achievements {
		r.achievements[a.ID] = a
		r.achOrder = append(r.achOrder, a.ID)
	}

	return r, nil
}

func parseFile(name string, out interface{}) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// City returns the city with the given ID.
func (r *Registry) City(id string) (City, bool) {
	c, ok := r.cities[id]
	return c, ok
}

// Cities returns all cities in table order.
func (r *Registry) Cities() []City {
	out := make([]City, 0, len(r.cityOrder))
	for _, id := range r.cityOrder {
		out = append(out, r.cities[id])
	}
	return out
}

// CityCount returns the total number of cities on the map.
func (r *Registry) CityCount() int {
	return len(r.cities)
}

// Character returns the character with the given ID.
func (r *Registry) Character(id string) (Character, bool) {
	c, ok := r.characters[id]
	return c, ok
}

// Characters returns all characters in table order.
func (r *Registry) Characters() []Character {
	out := make([]Character, 0, len(r.charOrder))
	for _, id := range r.charOrder {
		out = append(out, r.characters[id])
	}
	return out
}

// Events returns all random events.
func (r *Registry) Events() []RandomEvent {
	return r.events
}

// Event returns the event with the given ID.
func (r *Registry) Event(id string) (RandomEvent, bool) {
	for _, ev := range r.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return RandomEvent{}, false
}

// Achievement returns the achievement with the given ID.
func (r *Registry) Achievement(id string) (Achievement, bool) {
	a, ok := r.achievements[id]
	return a, ok
}

// Achievements returns all achievements in table order.
func (r *Registry) Achievements() []Achievement {
	out := make([]Achievement, 0, len(r.achOrder))
	for _, id := range r.achOrder {
		out = append(out, r.achievements[id])
	}
	return out
}

// NearestCity returns the city closest to p and its distance in km.
func (r *Registry) NearestCity(p geo.Point) (City, float64) {
	var nearest City
	minDist := -1.0
	for _, id := range r.cityOrder {
		c := r.cities[id]
		d := geo.DistanceKm(p, c.Position())
		if minDist < 0 || d < minDist {
			minDist = d
			nearest = c
		}
	}
	return nearest, minDist
}
