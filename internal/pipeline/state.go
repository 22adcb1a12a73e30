package pipeline

// State is a step of a recommendation request
type State int

const (
	StateInit State = iota
	StateOriginResolved
	StateRoutesComputed
	StateForecastsResolved
	StateRated
	StateFiltered
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateOriginResolved:
		return "origin_resolved"
	case StateRoutesComputed:
		return "routes_computed"
	case StateForecastsResolved:
		return "forecasts_resolved"
	case StateRated:
		return "rated"
	case StateFiltered:
		return "filtered"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}
