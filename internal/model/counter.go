package model

// CounterKind names a player counter adjustable during a turn
type CounterKind string

const (
	CounterMorale CounterKind = "morale"
	CounterEnergy CounterKind = "energy"
)

// ParseCounterKind validates a wire-format counter name
func ParseCounterKind(s string) (CounterKind, error) {
	switch CounterKind(s) {
	case CounterMorale, CounterEnergy:
		return CounterKind(s), nil
	}
	return "", ErrUnknownCounter
}
