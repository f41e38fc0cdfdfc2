// Package render dispatches the assembled book to external format renderers.
//
// Each format is an opaque external collaborator behind the Renderer
// interface, so pipeline logic is testable without a PDF or EPUB toolchain
// on the machine. Formats render independently: one failing never prevents
// the others from completing, and output directories are disjoint per format
// so concurrent renders cannot race on the same file.
package render

// Format identifies one output target.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
)

// DispatchOrder lists formats cheapest-first so the fastest feedback starts
// first.
var DispatchOrder = []Format{FormatHTML, FormatPDF, FormatEPUB}

// Valid reports whether the format is a known target.
func (f Format) Valid() bool {
	switch f {
	case FormatHTML, FormatPDF, FormatEPUB:
		return true
	}
	return false
}

// Extension returns the artifact file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatPDF:
		return ".pdf"
	case FormatEPUB:
		return ".epub"
	}
	return ""
}
