package value

import "fmt"

// Interval carries a point-type tag and optional low/high endpoints with
// independent closure flags. Endpoints are stored as Option<Value> (nil =
// unbounded) plus two closure bits -- never as sentinel infinity values --
// so every operator can share the isBelowLow/isAboveHigh/touchesLow/
// touchesHigh helpers in internal/engine/interval.go.
type Interval struct {
	PointType string // e.g. "Integer", "Date" -- matches types.Type.String()
	Low       Value  // nil = unbounded below
	LowClosed bool
	High      Value // nil = unbounded above
	HighClosed bool
}

func (Interval) Kind() Kind { return KindInterval }

func (iv Interval) String() string {
	open, close := "[", "]"
	if !iv.LowClosed {
		open = "("
	}
	if !iv.HighClosed {
		close = ")"
	}
	lo := "null"
	if iv.Low != nil {
		lo = iv.Low.String()
	}
	hi := "null"
	if iv.High != nil {
		hi = iv.High.String()
	}
	return fmt.Sprintf("Interval%s%s, %s%s", open, lo, hi, close)
}

// IsUniversal reports whether both endpoints are unbounded.
func (iv Interval) IsUniversal() bool {
	return iv.Low == nil && iv.High == nil
}
