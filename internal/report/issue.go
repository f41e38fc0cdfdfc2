package report

// IssueCode is a stable machine-parsable identifier for a class of build finding.
type IssueCode string

const (
	IssueMalformedFrontmatter IssueCode = "malformed_frontmatter"
	IssueMissingRequiredField IssueCode = "missing_required_field"
	IssueUnknownStatus        IssueCode = "unknown_status"
	IssueInvalidPosition      IssueCode = "invalid_position"
	IssueDuplicateChapter     IssueCode = "duplicate_chapter"
	IssueDuplicateAppendix    IssueCode = "duplicate_appendix"
	IssueChapterGap           IssueCode = "chapter_gap"
	IssueUnresolvedReference  IssueCode = "unresolved_reference"
	IssueInvalidLocale        IssueCode = "invalid_locale"
	IssueStaleTranslation     IssueCode = "stale_translation"
	IssueOrphanTranslation    IssueCode = "orphan_translation"
	IssueMissingTranslation   IssueCode = "missing_translation"
	IssueDuplicateTranslation IssueCode = "duplicate_translation"
	IssueRenderFailed         IssueCode = "render_failed"
	IssueRenderEnvironment    IssueCode = "render_environment"
	IssueHTMLVerification     IssueCode = "html_verification"
	IssueEnvironment          IssueCode = "environment_error"
	IssueCanceled             IssueCode = "canceled"
)

// Severity indicates the impact of an issue on the build.
//
// Error-level issues are structural: they fail the build before render
// dispatch. Warning-level issues are surfaced but never block output.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single structured finding attached to the build report.
type Issue struct {
	Code     IssueCode `json:"code"`
	Severity Severity  `json:"severity"`
	Stage    string    `json:"stage,omitempty"`
	Path     string    `json:"path,omitempty"`
	Message  string    `json:"message"`
}
