package document

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// PathInfo carries the structural hints inferred from a file's location in
// the layout contract:
//
//	content/chapters/part<N>/chapter-<NN>.md
//	content/appendices/appendix-<letter>.md
//	translations/<locale>/chapters/part<N>/chapter-<NN>.md
//	translations/<locale>/appendices/appendix-<letter>.md
//
// Explicit frontmatter values always take precedence over inferred ones.
type PathInfo struct {
	Locale   string
	Part     *int
	Chapter  *int
	Appendix string
}

var (
	partDirRe      = regexp.MustCompile(`^part(\d+)$`)
	chapterFileRe  = regexp.MustCompile(`^chapter-(\d+)\.(?:md|markdown)$`)
	appendixFileRe = regexp.MustCompile(`^appendix-([A-Za-z])\.(?:md|markdown)$`)
)

// InferFromPath derives locale and structural position from a slash-separated
// path relative to the book root.
func InferFromPath(relPath string) PathInfo {
	info := PathInfo{Locale: DefaultLocale}

	parts := strings.Split(path.Clean(relPath), "/")
	if len(parts) > 1 && parts[0] == "translations" {
		info.Locale = parts[1]
		parts = parts[2:]
	}

	for _, segment := range parts {
		if m := partDirRe.FindStringSubmatch(segment); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				info.Part = &n
			}
		}
	}

	base := parts[len(parts)-1]
	if m := chapterFileRe.FindStringSubmatch(base); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			info.Chapter = &n
		}
	} else if m := appendixFileRe.FindStringSubmatch(base); m != nil {
		info.Appendix = strings.ToUpper(m[1])
	}

	return info
}

// IsContentFile reports whether the path looks like a Markdown content file.
func IsContentFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".md" || ext == ".markdown"
}
