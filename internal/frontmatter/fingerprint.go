package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint computes the canonical content fingerprint of a document from
// its raw frontmatter block and Markdown body.
//
// Translations may record the fingerprint of the canonical source they were
// translated from (sourceFingerprint); comparing it against the source's
// current fingerprint is a stronger freshness signal than date comparison.
func Fingerprint(rawFrontmatter, body []byte) string {
	fm := strings.TrimRight(string(rawFrontmatter), "\r\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body))
}
