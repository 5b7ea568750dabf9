/*
Package fill defines the shared FillStrategy enum every node executor
consults when an input series has no usable samples (spec §4.5). Lifted out
of the individual executors into a standalone type the way the teacher lifts
shared enums into internal/model/enum/*.go.
*/
package fill

// Strategy is the policy for handling a missing input sample.
type Strategy uint8

const (
	// ForwardFill propagates the last known output value. If there is no
	// prior value, no output is emitted for the tick.
	ForwardFill Strategy = iota
	// ZeroFill emits 0 as the output value.
	ZeroFill
	// Skip emits no output for the tick.
	Skip
)

// String renders the strategy name, used by YAML round-tripping and logs.
func (s Strategy) String() string {
	switch s {
	case ForwardFill:
		return "forward_fill"
	case ZeroFill:
		return "zero_fill"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseStrategy parses the YAML/string spelling of a fill strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "forward_fill", "":
		return ForwardFill, true
	case "zero_fill":
		return ZeroFill, true
	case "skip":
		return Skip, true
	default:
		return ForwardFill, false
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so Strategy can be used directly
// in YAML-tagged config structs.
func (s *Strategy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, ok := ParseStrategy(raw)
	if !ok {
		return &unknownFillStrategyError{raw: raw}
	}
	*s = parsed
	return nil
}

type unknownFillStrategyError struct{ raw string }

func (e *unknownFillStrategyError) Error() string {
	return "unknown fill strategy: " + e.raw
}
