// Package postdate holds the canonical publish instant of a post and its
// display rendering.
package postdate

import "time"

// DisplayLayout is the human-readable rendering used on pages and the index.
const DisplayLayout = "02 Jan 2006 at 03:04 PM"

// PostDate is an instant normalised to UTC.
type PostDate struct {
	t time.Time
}

// New normalises t to UTC.
func New(t time.Time) PostDate {
	return PostDate{t: t.UTC()}
}

// Time returns the stored UTC instant.
func (d PostDate) Time() time.Time { return d.t }

// IsZero reports whether no instant has been set.
func (d PostDate) IsZero() bool { return d.t.IsZero() }

// String renders DisplayLayout.
func (d PostDate) String() string { return d.t.Format(DisplayLayout) }

// ISO renders RFC 3339, suitable for <time datetime="...">.
func (d PostDate) ISO() string { return d.t.Format(time.RFC3339) }

// After reports whether d is strictly later than o.
func (d PostDate) After(o PostDate) bool { return d.t.After(o.t) }

// Equal reports whether d and o denote the same instant.
func (d PostDate) Equal(o PostDate) bool { return d.t.Equal(o.t) }
