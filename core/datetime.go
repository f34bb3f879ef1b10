// Package core holds small value types shared across the protocol:
// bucket identifiers and the protocol's epoch-relative timestamp.
package core

import "time"

// epoch is the Plabble epoch: 2025-01-01T00:00:00Z.
var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateTime is a point in time represented on the wire as a u32 count of
// seconds since epoch. Values beyond 2161-02-07T06:28:15Z cannot be
// represented and are the caller's responsibility to avoid.
type DateTime struct {
	t time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{t: t.UTC()}
}

// FromSeconds builds a DateTime from a seconds-since-epoch count.
func FromSeconds(seconds uint32) DateTime {
	return DateTime{t: epoch.Add(time.Duration(seconds) * time.Second)}
}

// Now returns the current time as a DateTime.
func Now() DateTime {
	return NewDateTime(time.Now())
}

// Seconds returns the wire representation: seconds since epoch,
// truncated to u32. Times before the epoch clamp to 0.
func (d DateTime) Seconds() uint32 {
	delta := d.t.Sub(epoch)
	if delta < 0 {
		return 0
	}
	return uint32(delta / time.Second)
}

func (d DateTime) Time() time.Time {
	return d.t
}

func (d DateTime) Equal(other DateTime) bool {
	return d.t.Equal(other.t)
}
