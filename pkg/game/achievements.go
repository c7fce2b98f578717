package game

import (
	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

// Achievement thresholds.
const (
	speedSolverMoves    = 10  // solve within this many moves of the previous solve
	efficientRouteMoves = 100 // stay under this move count with at least one solve
	eventMasterCount    = 3   // resolved events
)

// CheckAchievements evaluates every achievement condition against the
// state and returns the ones unlocked by the latest transition. Each
// achievement is reported once; the achieved flags live on the state.
func (e *Engine) CheckAchievements(ps *state.PlayerState) []content.Achievement {
	var unlocked []content.Achievement
	award := func(id string, met bool) {
		if !met || ps.Achievements[id] {
			return
		}
		a, ok := e.content.Achievement(id)
		if !ok {
			return
		}
		ps.Achievements[id] = true
		unlocked = append(unlocked, a)
	}

	award("first_riddle", len(ps.SolvedCities) >= 1)
	award("speed_solver", len(ps.SolvedCities) >= 1 && ps.LastSolveMoves < speedSolverMoves)
	award("all_cities", len(ps.SolvedCities) >= e.content.CityCount())
	award("efficient_route", len(ps.SolvedCities) > 0 && ps.MoveCount < efficientRouteMoves)
	award("event_master", ps.SuccessfulEvents >= eventMasterCount)

	return unlocked
}
