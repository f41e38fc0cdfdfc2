package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recognized frontmatter keys. Anything else is preserved in Metadata.Extra.
const (
	KeyTitle             = "title"
	KeyDescription       = "description"
	KeyAuthor            = "author"
	KeyDate              = "date"
	KeyStatus            = "status"
	KeyPart              = "part"
	KeyChapter           = "chapter"
	KeyAppendix          = "appendix"
	KeyLocale            = "locale"
	KeyReviewer          = "reviewer"
	KeyTranslator        = "translator"
	KeyEstimatedReadTime = "estimatedReadTime"
	KeySourceFingerprint = "sourceFingerprint"
)

// Metadata is the typed view of a document's frontmatter. Optional integers
// are pointers so "absent" and "zero" stay distinguishable; the structural
// position may also be inferred from the file path by the loader.
type Metadata struct {
	Title             string
	Description       string
	Status            Status
	Part              *int
	Chapter           *int
	Appendix          string
	Locale            string
	Author            string
	Reviewer          string
	Translator        string
	LastUpdated       time.Time
	EstimatedReadTime int
	SourceFingerprint string

	// Extra holds unrecognized keys verbatim for forward compatibility.
	Extra map[string]any
}

// Warning is a non-fatal finding produced while decoding frontmatter.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Parse splits a content file into typed metadata and Markdown body.
//
// A missing or unterminated metadata block, or a field value that cannot be
// coerced to its declared type, is ErrMalformedFrontmatter. A missing title
// or status is ErrMissingRequiredField. Unknown status values normalize to
// planned with a warning rather than failing.
func Parse(content []byte) (Metadata, []byte, []Warning, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Metadata{}, nil, nil, err
	}
	if !had {
		return Metadata{}, nil, nil, fmt.Errorf("%w: metadata block is absent", ErrMalformedFrontmatter)
	}

	fields, err := ParseYAML(raw)
	if err != nil {
		return Metadata{}, nil, nil, err
	}

	meta, warnings, err := Decode(fields)
	if err != nil {
		return Metadata{}, nil, nil, err
	}
	return meta, body, warnings, nil
}

// Decode coerces a parsed frontmatter map into typed Metadata.
func Decode(fields map[string]any) (Metadata, []Warning, error) {
	meta := Metadata{Extra: map[string]any{}}
	var warnings []Warning

	for key, value := range fields {
		var err error
		switch key {
		case KeyTitle:
			meta.Title, err = coerceString(key, value)
		case KeyDescription:
			meta.Description, err = coerceString(key, value)
		case KeyAuthor:
			meta.Author, err = coerceString(key, value)
		case KeyReviewer:
			meta.Reviewer, err = coerceString(key, value)
		case KeyTranslator:
			meta.Translator, err = coerceString(key, value)
		case KeyLocale:
			meta.Locale, err = coerceString(key, value)
		case KeySourceFingerprint:
			meta.SourceFingerprint, err = coerceString(key, value)
		case KeyStatus:
			var rawStatus string
			rawStatus, err = coerceString(key, value)
			if err == nil {
				status, known := NormalizeStatus(rawStatus)
				meta.Status = status
				if !known {
					warnings = append(warnings, Warning{
						Field:   key,
						Message: fmt.Sprintf("unknown status %q normalized to %q", rawStatus, StatusPlanned),
					})
				}
			}
		case KeyPart:
			meta.Part, err = coerceIntPtr(key, value)
		case KeyChapter:
			meta.Chapter, err = coerceIntPtr(key, value)
		case KeyAppendix:
			meta.Appendix, err = coerceAppendix(key, value)
		case KeyDate:
			meta.LastUpdated, err = coerceDate(key, value)
		case KeyEstimatedReadTime:
			var n *int
			n, err = coerceIntPtr(key, value)
			if err == nil {
				if *n <= 0 {
					err = fmt.Errorf("%w: %s must be a positive integer, got %d", ErrMalformedFrontmatter, key, *n)
				} else {
					meta.EstimatedReadTime = *n
				}
			}
		default:
			meta.Extra[key] = value
		}
		if err != nil {
			return Metadata{}, nil, err
		}
	}

	if strings.TrimSpace(meta.Title) == "" {
		return Metadata{}, nil, fmt.Errorf("%w: title", ErrMissingRequiredField)
	}
	if _, ok := fields[KeyStatus]; !ok {
		return Metadata{}, nil, fmt.Errorf("%w: status", ErrMissingRequiredField)
	}

	return meta, warnings, nil
}

func coerceString(key string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int, int64, float64, bool:
		// YAML scalars that read naturally as text (e.g. description: 42)
		// are stringified rather than rejected.
		return fmt.Sprintf("%v", v), nil
	default:
		return "", fmt.Errorf("%w: %s must be a scalar, got %T", ErrMalformedFrontmatter, key, value)
	}
}

func coerceIntPtr(key string, value any) (*int, error) {
	switch v := value.(type) {
	case int:
		return &v, nil
	case int64:
		n := int(v)
		return &n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not an integer", ErrMalformedFrontmatter, key, v)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("%w: %s value %v (%T) is not an integer", ErrMalformedFrontmatter, key, value, value)
	}
}

func coerceAppendix(key string, value any) (string, error) {
	s, err := coerceString(key, value)
	if err != nil {
		return "", err
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return "", fmt.Errorf("%w: %s must be a single letter, got %q", ErrMalformedFrontmatter, key, s)
	}
	return s, nil
}

// dateLayouts are tried in order when the date field arrives as a string.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func coerceDate(key string, value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %s value %q is not a date (want YYYY-MM-DD or RFC3339)", ErrMalformedFrontmatter, key, v)
	default:
		return time.Time{}, fmt.Errorf("%w: %s value %v (%T) is not a date", ErrMalformedFrontmatter, key, value, value)
	}
}
