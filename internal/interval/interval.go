package interval

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var ErrEmptyRange = errors.New("range is empty")

// Endpoint is one bound of a Range. Unbounded sides use ±Inf and are never
// inclusive.
type Endpoint struct {
	Value     float64 `json:"value"`
	Inclusive bool    `json:"inclusive"`
}

func Inclusive(v float64) Endpoint { return Endpoint{Value: v, Inclusive: true} }

func Exclusive(v float64) Endpoint { return Endpoint{Value: v} }

func (e Endpoint) unbounded() bool { return math.IsInf(e.Value, 0) }

// Range is a contiguous span between two endpoints.
type Range struct {
	Lower Endpoint `json:"lower"`
	Upper Endpoint `json:"upper"`
}

func NewRange(lower, upper Endpoint) (Range, error) {
	if math.IsNaN(lower.Value) || math.IsNaN(upper.Value) {
		return Range{}, fmt.Errorf("range bound is NaN")
	}
	if lower.unbounded() {
		lower.Inclusive = false
	}
	if upper.unbounded() {
		upper.Inclusive = false
	}
	if lower.Value > upper.Value {
		return Range{}, fmt.Errorf("lower bound %v exceeds upper bound %v", lower.Value, upper.Value)
	}
	if lower.Value == upper.Value && !(lower.Inclusive && upper.Inclusive) {
		return Range{}, ErrEmptyRange
	}
	return Range{Lower: lower, Upper: upper}, nil
}

// MustRange is NewRange for statically known bounds.
func MustRange(lower, upper Endpoint) Range {
	r, err := NewRange(lower, upper)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Range) Contains(x float64) bool {
	if x < r.Lower.Value || x > r.Upper.Value {
		return false
	}
	if x == r.Lower.Value && !r.Lower.Inclusive {
		return false
	}
	if x == r.Upper.Value && !r.Upper.Inclusive {
		return false
	}
	return true
}

func (r Range) String() string {
	open, close := "(", ")"
	if r.Lower.Inclusive {
		open = "["
	}
	if r.Upper.Inclusive {
		close = "]"
	}
	return open + formatBound(r.Lower.Value) + ", " + formatBound(r.Upper.Value) + close
}

func formatBound(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%g", v)
	}
}

// joinable reports whether b (which does not start before a) overlaps or
// touches a so that their union is a single range.
func joinable(a, b Range) bool {
	if b.Lower.Value < a.Upper.Value {
		return true
	}
	if b.Lower.Value == a.Upper.Value {
		return a.Upper.Inclusive || b.Lower.Inclusive
	}
	return false
}

// Interval is an immutable union of disjoint ranges in ascending order.
type Interval struct {
	ranges []Range
}

var (
	All   = New(Range{Lower: Exclusive(math.Inf(-1)), Upper: Exclusive(math.Inf(1))})
	Empty = Interval{}
)

// New normalizes ranges into an Interval: ranges are sorted by lower bound
// and overlapping or touching ranges are merged.
func New(ranges ...Range) Interval {
	if len(ranges) == 0 {
		return Empty
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lower.Value != sorted[j].Lower.Value {
			return sorted[i].Lower.Value < sorted[j].Lower.Value
		}
		return sorted[i].Lower.Inclusive && !sorted[j].Lower.Inclusive
	})

	merged := make([]Range, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if !joinable(current, next) {
			merged = append(merged, current)
			current = next
			continue
		}
		if next.Upper.Value > current.Upper.Value {
			current.Upper = next.Upper
		} else if next.Upper.Value == current.Upper.Value && next.Upper.Inclusive {
			current.Upper.Inclusive = true
		}
	}
	merged = append(merged, current)
	return Interval{ranges: merged}
}

func Closed(lower, upper float64) Interval {
	return New(MustRange(Inclusive(lower), Inclusive(upper)))
}

func Open(lower, upper float64) Interval {
	return New(MustRange(Exclusive(lower), Exclusive(upper)))
}

func Point(v float64) Interval {
	return Closed(v, v)
}

func (iv Interval) Ranges() []Range {
	out := make([]Range, len(iv.ranges))
	copy(out, iv.ranges)
	return out
}

func (iv Interval) IsEmpty() bool { return len(iv.ranges) == 0 }

func (iv Interval) Contains(x float64) bool {
	i := sort.Search(len(iv.ranges), func(i int) bool {
		return iv.ranges[i].Upper.Value >= x
	})
	for ; i < len(iv.ranges) && iv.ranges[i].Lower.Value <= x; i++ {
		if iv.ranges[i].Contains(x) {
			return true
		}
	}
	return false
}

func (iv Interval) Union(other Interval) Interval {
	all := make([]Range, 0, len(iv.ranges)+len(other.ranges))
	all = append(all, iv.ranges...)
	all = append(all, other.ranges...)
	return New(all...)
}

func (iv Interval) Equal(other Interval) bool {
	if len(iv.ranges) != len(other.ranges) {
		return false
	}
	for i := range iv.ranges {
		if iv.ranges[i] != other.ranges[i] {
			return false
		}
	}
	return true
}

func (iv Interval) String() string {
	if iv.IsEmpty() {
		return "{}"
	}
	parts := make([]string, len(iv.ranges))
	for i, r := range iv.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ∪ ")
}
