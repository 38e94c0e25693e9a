package board

import "fmt"

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// Interval is the day/hour/minute form of a recurring interval.
type Interval struct {
	Days    int
	Hours   int
	Minutes int
}

// Normalize clamps each component independently: days >= 0, hours 0-23,
// minutes 0-59. Overflow is not carried into the next unit.
func (i Interval) Normalize() Interval {
	return Interval{
		Days:    clamp(i.Days, 0, -1),
		Hours:   clamp(i.Hours, 0, 23),
		Minutes: clamp(i.Minutes, 0, 59),
	}
}

// TotalMinutes flattens the normalized interval.
func (i Interval) TotalMinutes() int {
	n := i.Normalize()
	return n.Days*minutesPerDay + n.Hours*minutesPerHour + n.Minutes
}

func (i Interval) String() string {
	n := i.Normalize()
	switch {
	case n.Days > 0:
		return fmt.Sprintf("%dd %dh %dm", n.Days, n.Hours, n.Minutes)
	case n.Hours > 0:
		return fmt.Sprintf("%dh %dm", n.Hours, n.Minutes)
	}
	return fmt.Sprintf("%dm", n.Minutes)
}

// SplitInterval decomposes a minute count back into its components.
func SplitInterval(total int) Interval {
	if total < 0 {
		total = 0
	}
	return Interval{
		Days:    total / minutesPerDay,
		Hours:   (total % minutesPerDay) / minutesPerHour,
		Minutes: total % minutesPerHour,
	}
}

// clamp bounds v to [lo, hi]; hi < 0 means unbounded above.
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= 0 && v > hi {
		return hi
	}
	return v
}
