package booking

import "time"

// Overlaps reports whether two half-open [start, end) intervals share
// any instant. Back-to-back ranges (a ends the day b starts) do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
