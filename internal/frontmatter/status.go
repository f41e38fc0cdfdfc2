package frontmatter

import "strings"

// Status is the closed editorial-status enum carried by every document.
type Status string

const (
	StatusPlanned  Status = "planned"
	StatusDraft    Status = "draft"
	StatusRevised  Status = "revised"
	StatusComplete Status = "complete"
)

// KnownStatuses lists the closed enum in editorial progression order.
var KnownStatuses = []Status{StatusPlanned, StatusDraft, StatusRevised, StatusComplete}

// NormalizeStatus maps a raw status value onto the closed enum.
//
// Unknown values fall back to planned with known=false; a typo in one file
// must not abort the whole document set, so callers surface a warning instead
// of failing.
func NormalizeStatus(raw string) (status Status, known bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range KnownStatuses {
		if s == k {
			return k, true
		}
	}
	return StatusPlanned, false
}

// CompletionWeight returns the completion contribution of a status when
// aggregating book progress.
func (s Status) CompletionWeight() float64 {
	switch s {
	case StatusComplete:
		return 1.0
	case StatusRevised:
		return 0.66
	case StatusDraft:
		return 0.33
	default:
		return 0
	}
}
