package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyPost       = "post"
	KeySlug       = "slug"
	KeyStrategy   = "strategy"
	KeyTemplate   = "template"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Post(title string) slog.Attr     { return slog.String(KeyPost, title) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Strategy(name string) slog.Attr  { return slog.String(KeyStrategy, name) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Duration converts d to a millisecond duration attribute.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d) / float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
