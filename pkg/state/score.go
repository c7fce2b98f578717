package state

// Score is the structured score for a run. The total is derived from
// the components; base, time and efficiency only ever grow, and the
// penalty only ever grows.
type Score struct {
	BasePoints         int `json:"base_points"`
	TimeBonus          int `json:"time_bonus"`
	EfficiencyBonus    int `json:"efficiency_bonus"`
	EventBonus         int `json:"event_bonus"`
	WrongAnswerPenalty int `json:"wrong_answer_penalty"`
}

// Total returns the derived score total.
func (s Score) Total() int {
	return s.BasePoints + s.TimeBonus + s.EfficiencyBonus + s.EventBonus - s.WrongAnswerPenalty
}
