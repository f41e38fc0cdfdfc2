package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, raw)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\n---\n# Title\n")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), raw)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsMalformed(t *testing.T) {
	input := []byte("---\ntitle: Hello\n# Title\n")

	_, _, had, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMalformedFrontmatter))
}

func TestSplit_ClosingDelimiterAtEOF_Terminated(t *testing.T) {
	input := []byte("---\ntitle: Hello\nstatus: planned\n---")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\nstatus: planned\n"), raw)
	require.Empty(t, body)
}

func TestSplit_ClosingDelimiterAtEOF_CRLF(t *testing.T) {
	input := []byte("---\r\ntitle: Hello\r\n---")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\r\n"), raw)
	require.Empty(t, body)
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Hello\r\n---\r\n# Title\r\n")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\r\n"), raw)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestParse_TypedFields_Decoded(t *testing.T) {
	input := []byte(`---
title: The Boot Process
description: How the kernel comes up
status: draft
part: 1
chapter: 3
author: jane
reviewer: bob
date: 2026-02-11
estimatedReadTime: 25
---
body text
`)

	meta, body, warnings, err := Parse(input)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "The Boot Process", meta.Title)
	require.Equal(t, StatusDraft, meta.Status)
	require.NotNil(t, meta.Part)
	require.Equal(t, 1, *meta.Part)
	require.NotNil(t, meta.Chapter)
	require.Equal(t, 3, *meta.Chapter)
	require.Equal(t, "jane", meta.Author)
	require.Equal(t, "bob", meta.Reviewer)
	require.Equal(t, 25, meta.EstimatedReadTime)
	require.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), meta.LastUpdated)
	require.Equal(t, "body text\n", string(body))
}

func TestParse_NoFrontmatterBlock_Malformed(t *testing.T) {
	_, _, _, err := Parse([]byte("# Just a heading\n"))
	require.True(t, errors.Is(err, ErrMalformedFrontmatter))
}

func TestParse_NonNumericChapter_Malformed(t *testing.T) {
	input := []byte("---\ntitle: X\nstatus: draft\nchapter: seven\n---\n")

	_, _, _, err := Parse(input)
	require.True(t, errors.Is(err, ErrMalformedFrontmatter))
	require.Contains(t, err.Error(), "chapter")
}

func TestParse_QuotedNumericChapter_Coerced(t *testing.T) {
	input := []byte("---\ntitle: X\nstatus: draft\npart: 1\nchapter: \"7\"\n---\n")

	meta, _, _, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, 7, *meta.Chapter)
}

func TestParse_MissingTitle_MissingRequiredField(t *testing.T) {
	input := []byte("---\nstatus: draft\n---\nbody\n")

	_, _, _, err := Parse(input)
	require.True(t, errors.Is(err, ErrMissingRequiredField))
	require.Contains(t, err.Error(), "title")
}

func TestParse_MissingStatus_MissingRequiredField(t *testing.T) {
	input := []byte("---\ntitle: X\n---\nbody\n")

	_, _, _, err := Parse(input)
	require.True(t, errors.Is(err, ErrMissingRequiredField))
	require.Contains(t, err.Error(), "status")
}

func TestParse_UnknownStatus_NormalizedToPlannedWithWarning(t *testing.T) {
	input := []byte("---\ntitle: X\nstatus: finnished\n---\nbody\n")

	meta, _, warnings, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, StatusPlanned, meta.Status)
	require.Len(t, warnings, 1)
	require.Equal(t, "status", warnings[0].Field)
	require.Contains(t, warnings[0].Message, "finnished")
}

func TestParse_UnknownKeys_PreservedInExtra(t *testing.T) {
	input := []byte("---\ntitle: X\nstatus: draft\ncustomWeight: 3\ntags: [kernel, boot]\n---\n")

	meta, _, _, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, 3, meta.Extra["customWeight"])
	require.Contains(t, meta.Extra, "tags")
}

func TestParse_NegativeReadTime_Malformed(t *testing.T) {
	input := []byte("---\ntitle: X\nstatus: draft\nestimatedReadTime: -5\n---\n")

	_, _, _, err := Parse(input)
	require.True(t, errors.Is(err, ErrMalformedFrontmatter))
}

func TestParse_InvalidAppendixLetter_Malformed(t *testing.T) {
	input := []byte("---\ntitle: X\nstatus: draft\nappendix: AB\n---\n")

	_, _, _, err := Parse(input)
	require.True(t, errors.Is(err, ErrMalformedFrontmatter))
}

func TestNormalizeStatus_CaseInsensitive(t *testing.T) {
	status, known := NormalizeStatus("  Complete ")
	require.True(t, known)
	require.Equal(t, StatusComplete, status)
}

func TestCompletionWeight_OrderedByProgress(t *testing.T) {
	require.Equal(t, 0.0, StatusPlanned.CompletionWeight())
	require.Equal(t, 0.33, StatusDraft.CompletionWeight())
	require.Equal(t, 0.66, StatusRevised.CompletionWeight())
	require.Equal(t, 1.0, StatusComplete.CompletionWeight())
}

func TestFingerprint_SameInput_Deterministic(t *testing.T) {
	fm := []byte("title: X\nstatus: draft\n")
	body := []byte("# Heading\n\nbody\n")

	require.Equal(t, Fingerprint(fm, body), Fingerprint(fm, body))
	require.NotEqual(t, Fingerprint(fm, body), Fingerprint(fm, []byte("changed")))
}
