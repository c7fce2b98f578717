// Package game implements the state machine at the heart of the grand
// tour: directional movement with stamina and deadly-event draws,
// riddle gates, random travel events, the two-stage endpoint reveal,
// and run completion. All randomness flows through an injected Rand so
// tests can script every draw.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/geo"
	"github.com/jwebster45206/grand-tour/pkg/leaderboard"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

// Rand is the engine's source of probability draws. *rand.Rand
// satisfies it, as does the locked wrapper returned by NewLockedRand.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// lockedRand guards a rand.Rand for use across sessions.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

// NewLockedRand returns a seedable Rand safe for concurrent sessions.
func NewLockedRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

// Direction is a cardinal move direction.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ParseDirection validates a direction string from a request.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case North:
		return North, nil
	case South:
		return South, nil
	case East:
		return East, nil
	case West:
		return West, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

var answerCaser = cases.Fold()

// normalizeAnswer trims and case-folds a riddle answer for comparison.
func normalizeAnswer(s string) string {
	return answerCaser.String(strings.TrimSpace(s))
}

// Engine applies player actions to a PlayerState and reports what
// happened. It holds no per-session state; one Engine serves every
// session.
type Engine struct {
	content *content.Registry
	rules   Rules
	rng     Rand
	logger  *slog.Logger
}

// NewEngine creates an engine over the given content tables.
func NewEngine(reg *content.Registry, rules Rules, rng Rand, logger *slog.Logger) *Engine {
	return &Engine{
		content: reg,
		rules:   rules,
		rng:     rng,
		logger:  logger,
	}
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Content returns the engine's content tables.
func (e *Engine) Content() *content.Registry {
	return e.content
}

// StartGame validates the selections and produces a fresh PlayerState
// positioned at the chosen city with full stamina and zero score.
func (e *Engine) StartGame(cityID, characterID, playerName string) (*state.PlayerState, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, fmt.Errorf("player name is empty: %w", ErrInvalidSelection)
	}
	city, ok := e.content.City(cityID)
	if !ok {
		return nil, fmt.Errorf("unknown city %q: %w", cityID, ErrInvalidSelection)
	}
	if _, ok := e.content.Character(characterID); !ok {
		return nil, fmt.Errorf("unknown character %q: %w", characterID, ErrInvalidSelection)
	}

	ps := state.NewPlayerState(strings.TrimSpace(playerName), characterID, city.Position())
	ps.CurrentCity = city.ID
	ps.InCity = true
	ps.ActiveRiddle = city.Riddle

	e.logger.Info("game started",
		"session", ps.ID,
		"player", ps.PlayerName,
		"city", city.ID,
		"character", characterID)
	return ps, nil
}

// Move applies one directional move. Draw order is fixed: deadly-event
// draw, stamina regeneration draw, then the event-trigger draw.
func (e *Engine) Move(ps *state.PlayerState, dir Direction) (*state.MoveOutcome, error) {
	if ps == nil || ps.Position == nil {
		return nil, ErrNotStarted
	}
	if ps.IsOver() {
		return nil, ErrGameOver
	}
	char, ok := e.content.Character(ps.CharacterID)
	if !ok {
		return nil, fmt.Errorf("unknown character %q: %w", ps.CharacterID, ErrInvalidSelection)
	}

	speed := e.rules.MoveSpeedDeg * char.MoveMultiplier
	if ps.Stamina < e.rules.FatigueStamina {
		speed *= 0.5
	}

	old := *ps.Position
	pos := old
	switch dir {
	case North:
		pos.Lat += speed
	case South:
		pos.Lat -= speed
	case East:
		pos.Lon += speed
	case West:
		pos.Lon -= speed
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}
	ps.Position = &pos
	ps.MoveCount++

	// Deadly event pre-empts everything else on this move.
	if e.rng.Float64() < char.DeadlyEventChance {
		ps.HasDied = true
		ps.DeathMessage = char.DeadlyEvent
		e.logger.Info("player died", "session", ps.ID, "cause", char.DeadlyEvent)
		out := e.moveOutcome(ps)
		out.GameOver = true
		out.Message = "Oh no! " + char.DeadlyEvent
		return out, nil
	}

	if ps.Stamina > 0 {
		cost := e.rules.StaminaCost * (1.0 - char.StaminaBonus)
		ps.Stamina = max(0, ps.Stamina-cost)
	}
	if e.rng.Float64() < e.rules.RegenChance {
		regen := e.rules.RegenAmount * (1.0 + char.StaminaBonus)
		ps.Stamina = min(e.rules.MaxStamina, ps.Stamina+regen)
	}

	ps.TotalDistanceKm += geo.DistanceKm(old, pos)

	nearest, distKm := e.content.NearestCity(pos)
	inCity := distKm < e.rules.CityEntryThresholdKm
	entered := false
	switch {
	case inCity && !ps.InCity:
		ps.InCity = true
		ps.CurrentCity = nearest.ID
		entered = true
		if !ps.HasSolved(nearest.ID) {
			ps.ActiveRiddle = nearest.Riddle
		} else {
			ps.ActiveRiddle = ""
		}
	case !inCity && ps.InCity:
		ps.InCity = false
		ps.CurrentCity = ""
		ps.ActiveRiddle = ""
	}

	e.updateReveals(ps, pos)

	out := e.moveOutcome(ps)
	out.NearestCity = nearest.ID
	out.DistanceToCityKm = distKm
	out.EnteredCity = entered

	// Random encounter, only while nothing is pending.
	if ps.ActiveEventID == "" && e.rules.EventChance > 0 &&
		e.rng.Float64() < e.rules.EventChance {
		events := e.content.Events()
		ev := events[e.rng.Intn(len(events))]
		ps.ActiveEventID = ev.ID
		out.Event = &ev
		e.logger.Debug("event triggered", "session", ps.ID, "event", ev.ID)
	}

	return out, nil
}

// updateReveals applies the one-way endpoint reveal progression for
// the player's current position.
func (e *Engine) updateReveals(ps *state.PlayerState, pos geo.Point) {
	if len(ps.SolvedCities) < e.content.CityCount() {
		return
	}
	ps.HiddenLocationRevealed = true
	if geo.DistanceKm(pos, e.rules.HiddenLocation) < e.rules.RevealThresholdKm {
		ps.SecretSiteRevealed = true
	}
	if ps.SecretSiteRevealed &&
		geo.DistanceKm(pos, e.rules.SecretSite) < e.rules.RevealThresholdKm {
		ps.AtSecretSite = true
	}
}

func (e *Engine) moveOutcome(ps *state.PlayerState) *state.MoveOutcome {
	out := &state.MoveOutcome{
		Position:               *ps.Position,
		Stamina:                ps.Stamina,
		Score:                  ps.Score.Total(),
		Moves:                  ps.MoveCount,
		CitiesVisited:          len(ps.SolvedCities),
		TotalCities:            e.content.CityCount(),
		Companions:             ps.Companions,
		CurrentCity:            ps.CurrentCity,
		InCity:                 ps.InCity,
		CurrentRiddle:          ps.ActiveRiddle,
		HiddenLocationRevealed: ps.HiddenLocationRevealed,
		SecretSiteRevealed:     ps.SecretSiteRevealed,
		AtSecretSite:           ps.AtSecretSite,
	}
	if ps.HiddenLocationRevealed {
		loc := e.rules.HiddenLocation
		out.HiddenLocation = &loc
	}
	if ps.SecretSiteRevealed {
		site := e.rules.SecretSite
		out.SecretSite = &site
	}
	return out
}

// SolveRiddle checks an answer against the current city's riddle gate.
// Wrong answers cost points but never clear the riddle.
func (e *Engine) SolveRiddle(ps *state.PlayerState, answer string) (*state.SolveOutcome, error) {
	if ps == nil || ps.Position == nil {
		return nil, ErrNotStarted
	}
	if ps.IsOver() {
		return nil, ErrGameOver
	}
	if ps.CurrentCity == "" {
		return nil, ErrNoActiveRiddle
	}
	city, ok := e.content.City(ps.CurrentCity)
	if !ok {
		return nil, ErrNoActiveRiddle
	}
	if ps.HasSolved(city.ID) {
		return nil, ErrAlreadySolved
	}

	if !answerMatches(city, answer) {
		ps.WrongAnswers[city.ID]++
		ps.Score.WrongAnswerPenalty += e.rules.WrongAnswerPenalty
		return &state.SolveOutcome{
			Correct:     false,
			Message:     "Incorrect answer. Try again!",
			Score:       ps.Score.Total(),
			TotalCities: e.content.CityCount(),
		}, nil
	}

	ps.SolvedCities = append(ps.SolvedCities, city.ID)
	ps.ActiveRiddle = ""
	ps.NextRiddleHint = false
	ps.Score.BasePoints += e.rules.RiddlePoints
	ps.LastSolveMoves = ps.MoveCount - ps.SolveMoveMark
	ps.SolveMoveMark = ps.MoveCount

	message := ""
	if city.Companion != "" && !ps.HasCompanion(city.Companion) {
		ps.Companions = append(ps.Companions, city.Companion)
		message = city.CompanionMessage
	}

	out := &state.SolveOutcome{
		Correct:       true,
		Score:         ps.Score.Total(),
		CitiesVisited: len(ps.SolvedCities),
		TotalCities:   e.content.CityCount(),
		Companions:    ps.Companions,
	}

	if len(ps.SolvedCities) >= e.content.CityCount() {
		ps.HiddenLocationRevealed = true
		if message == "" {
			message = "All cities completed! A mysterious location has appeared in the center of France..."
		}
	}
	if message == "" {
		message = fmt.Sprintf("Correct! You've solved the riddle of %s!", city.Name)
	}
	if ps.HiddenLocationRevealed {
		loc := e.rules.HiddenLocation
		out.HiddenLocation = &loc
		out.HiddenLocationRevealed = true
	}
	out.Message = message
	out.NewAchievements = e.CheckAchievements(ps)

	e.logger.Info("riddle solved",
		"session", ps.ID,
		"city", city.ID,
		"solved", len(ps.SolvedCities),
		"total", e.content.CityCount())
	return out, nil
}

// answerMatches compares a normalized answer against the canonical
// answer and the city's synonym allow-list.
func answerMatches(city content.City, answer string) bool {
	norm := normalizeAnswer(answer)
	if norm == normalizeAnswer(city.Answer) {
		return true
	}
	for _, syn := range city.Synonyms {
		if norm == normalizeAnswer(syn) {
			return true
		}
	}
	return false
}

// ResolveEvent applies the chosen effect of the pending event. The
// pending event is cleared once a valid choice has been applied.
func (e *Engine) ResolveEvent(ps *state.PlayerState, choiceText string) (*state.EventOutcome, error) {
	if ps == nil || ps.Position == nil {
		return nil, ErrNotStarted
	}
	if ps.IsOver() {
		return nil, ErrGameOver
	}
	if ps.ActiveEventID == "" {
		return nil, ErrNoActiveEvent
	}
	ev, ok := e.content.Event(ps.ActiveEventID)
	if !ok {
		// Stale reference to an event no longer in the tables.
		ps.ActiveEventID = ""
		return nil, ErrNoActiveEvent
	}

	var effect *content.EventEffect
	for i := range ev.Choices {
		if ev.Choices[i].Text == choiceText {
			effect = &ev.Choices[i].Effect
			break
		}
	}
	if effect == nil {
		return nil, fmt.Errorf("choice %q not offered by event %q: %w", choiceText, ev.ID, ErrInvalidChoice)
	}

	out := &state.EventOutcome{}

	ps.MoveCount += effect.Moves

	if effect.Stamina != 0 {
		ps.Stamina = max(0, min(e.rules.MaxStamina, ps.Stamina+effect.Stamina))
		if ps.Stamina <= 0 {
			// Forced rest: the journey halts until stamina recovers.
			ps.MoveCount += e.rules.RestMoves
			ps.Stamina = e.rules.RestRecovery
			out.ForcedRest = true
		}
	}

	if effect.Score != 0 {
		ps.Score.EventBonus += effect.Score
	}

	if effect.Position != nil {
		pos := *ps.Position
		pos.Lat += effect.Position[0]
		pos.Lon += effect.Position[1]
		ps.Position = &pos
	}

	if effect.RiddleHint {
		ps.NextRiddleHint = true
		out.RiddleHint = true
	}

	ps.SuccessfulEvents++
	ps.ActiveEventID = ""

	out.Moves = ps.MoveCount
	out.Stamina = ps.Stamina
	out.Score = ps.Score.Total()
	out.Position = *ps.Position
	out.NewAchievements = e.CheckAchievements(ps)

	e.logger.Debug("event resolved", "session", ps.ID, "event", ev.ID, "choice", choiceText)
	return out, nil
}

// CompleteGame finalizes a run: a diminishing efficiency bonus for low
// move counts is folded into the score, and a leaderboard snapshot is
// produced. The returned bool is false when the run was already
// completed, in which case no new entry may be recorded.
func (e *Engine) CompleteGame(ps *state.PlayerState) (*leaderboard.Entry, bool, error) {
	if ps == nil || ps.Position == nil {
		return nil, false, ErrNotStarted
	}
	if ps.HasDied {
		return nil, false, ErrGameOver
	}
	if ps.Completed {
		entry := e.snapshotEntry(ps)
		return &entry, false, nil
	}

	moveBonus := 0
	if e.rules.MoveTarget > ps.MoveCount {
		moveBonus = (e.rules.MoveTarget - ps.MoveCount) / e.rules.MoveScale
	}
	ps.Score.TimeBonus += moveBonus
	ps.Completed = true

	entry := e.snapshotEntry(ps)
	e.logger.Info("game completed",
		"session", ps.ID,
		"player", ps.PlayerName,
		"score", entry.Score,
		"moves", entry.Moves)
	return &entry, true, nil
}

func (e *Engine) snapshotEntry(ps *state.PlayerState) leaderboard.Entry {
	return leaderboard.Entry{
		PlayerName:    ps.PlayerName,
		CharacterID:   ps.CharacterID,
		Score:         ps.Score.Total(),
		Moves:         ps.MoveCount,
		CitiesVisited: len(ps.SolvedCities),
		DistanceKm:    ps.TotalDistanceKm,
		RecordedAt:    time.Now(),
	}
}

// CheckLocation answers the reveal-flag query for arbitrary
// coordinates. Reveal flags it sets on the state are one-way.
func (e *Engine) CheckLocation(ps *state.PlayerState, p geo.Point) (*state.LocationCheck, error) {
	if ps == nil || ps.Position == nil {
		return nil, ErrNotStarted
	}

	out := &state.LocationCheck{}
	if len(ps.SolvedCities) < e.content.CityCount() {
		return out, nil
	}

	ps.HiddenLocationRevealed = true
	if geo.DistanceKm(p, e.rules.HiddenLocation) <= e.rules.RevealThresholdKm {
		ps.SecretSiteRevealed = true
	}
	if ps.SecretSiteRevealed &&
		geo.DistanceKm(p, e.rules.SecretSite) <= e.rules.RevealThresholdKm {
		ps.AtSecretSite = true
	}

	if ps.SecretSiteRevealed {
		site := e.rules.SecretSite
		out.ShowSecretSite = true
		out.SecretSite = &site
		out.Message = "A new location has been revealed on the map..."
		if ps.AtSecretSite {
			out.AtSecretSite = true
			out.Message = "You've discovered the hidden Château!"
		}
	} else {
		loc := e.rules.HiddenLocation
		out.ShowHidden = true
		out.HiddenLocation = &loc
	}
	return out, nil
}
