package models

import "strings"

// TideState is the phase of the tide for a forecast day
type TideState string

const (
	TideLow     TideState = "low"
	TideRising  TideState = "rising"
	TideHigh    TideState = "high"
	TideFalling TideState = "falling"
)

// TideStates lists the tide cycle in order
var TideStates = []TideState{TideLow, TideRising, TideHigh, TideFalling}

// ParseTideState maps provider wording onto a TideState
func ParseTideState(s string) (TideState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "low tide", "l":
		return TideLow, true
	case "rising", "incoming", "flood", "mid rising":
		return TideRising, true
	case "high", "high tide", "h":
		return TideHigh, true
	case "falling", "outgoing", "ebb", "mid falling":
		return TideFalling, true
	}
	return "", false
}

// Quality returns the spot's quality for the given tide state, falling back to
// the rising entry when the state is missing from the mapping.
func (tb TideBehavior) Quality(state TideState) float64 {
	if q, ok := tb[state]; ok {
		return q
	}
	return tb[TideRising]
}
