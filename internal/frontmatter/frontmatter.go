// Package frontmatter extracts and validates the YAML metadata block that
// prefixes every content file. The recognized key set is closed for
// validation purposes, but unknown keys are preserved opaquely so newer
// authoring conventions do not break older builds.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for the two hard failure modes of the parser. Callers match
// with errors.Is; the pipeline wraps them into classified errors.
var (
	// ErrMalformedFrontmatter indicates the metadata block is absent,
	// unterminated, or contains a value that cannot be coerced to its
	// declared type.
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")

	// ErrMissingRequiredField indicates a required key (title, status) is absent.
	ErrMissingRequiredField = errors.New("missing required frontmatter field")
)

// Split separates a YAML frontmatter block (`---` delimited) from the
// Markdown body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input. An opening delimiter without a closing one is
// ErrMalformedFrontmatter.
func Split(content []byte) (raw []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)

	// Empty block: opening delimiter immediately followed by closing one.
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line with no trailing newline
		// still terminates the block; the body is then empty.
		closeAtEOF := []byte(nl + "---")
		if bytes.HasSuffix(content, closeAtEOF) {
			return content[start : len(content)-len(closeAtEOF)+len(nl)], nil, true, nil
		}
		return nil, nil, false, errors.Join(ErrMalformedFrontmatter, errors.New("closing delimiter not found"))
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Join(ErrMalformedFrontmatter, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
