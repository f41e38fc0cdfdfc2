package render

import (
	"fmt"
	"os"
	"strings"

	xhtml "golang.org/x/net/html"

	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// VerifyHTML parses a finished HTML artifact and reports structural problems
// as warnings. A renderer exiting zero does not guarantee a usable document,
// so the artifact itself gets a quick sanity pass: it must parse, carry a
// non-empty <title>, and contain some body text.
func VerifyHTML(path string) []report.Issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []report.Issue{verifyIssue(path, fmt.Sprintf("read artifact: %v", err))}
	}

	doc, err := xhtml.Parse(strings.NewReader(string(data)))
	if err != nil {
		return []report.Issue{verifyIssue(path, fmt.Sprintf("parse artifact: %v", err))}
	}

	var issues []report.Issue
	if strings.TrimSpace(findTitle(doc)) == "" {
		issues = append(issues, verifyIssue(path, "document has no title"))
	}
	if strings.TrimSpace(bodyText(doc)) == "" {
		issues = append(issues, verifyIssue(path, "document body is empty"))
	}
	return issues
}

func verifyIssue(path, msg string) report.Issue {
	return report.Issue{
		Code:     report.IssueHTMLVerification,
		Severity: report.SeverityWarning,
		Path:     path,
		Stage:    stageName,
		Message:  msg,
	}
}

func findTitle(n *xhtml.Node) string {
	if n.Type == xhtml.ElementNode && n.Data == "title" {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xhtml.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return sb.String()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func bodyText(n *xhtml.Node) string {
	if n.Type == xhtml.ElementNode && n.Data == "body" {
		var sb strings.Builder
		collectText(n, &sb)
		return sb.String()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := bodyText(c); text != "" {
			return text
		}
	}
	return ""
}

func collectText(n *xhtml.Node, sb *strings.Builder) {
	if n.Type == xhtml.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
