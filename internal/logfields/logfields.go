package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyLocale     = "locale"
	KeyFormat     = "format"
	KeyPart       = "part"
	KeyChapter    = "chapter"
	KeyAppendix   = "appendix"
	KeyAttempt    = "attempt"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Locale(l string) slog.Attr       { return slog.String(KeyLocale, l) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Part(n int) slog.Attr            { return slog.Int(KeyPart, n) }
func Chapter(n int) slog.Attr         { return slog.Int(KeyChapter, n) }
func Appendix(id string) slog.Attr    { return slog.String(KeyAppendix, id) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
