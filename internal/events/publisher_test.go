package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

func TestBuildEvent_PayloadShape(t *testing.T) {
	r := report.New()
	r.Documents = 7
	r.AddIssue(report.IssueChapterGap, report.SeverityWarning, "build_graph", "", "gap")
	r.Finish()

	event := BuildEvent{
		BuildID:   r.BuildID,
		Outcome:   r.Outcome,
		Errors:    r.ErrorCount(),
		Warnings:  r.WarningCount(),
		Documents: r.Documents,
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, r.BuildID, decoded["build_id"])
	require.Equal(t, "warning", decoded["outcome"])
	require.Equal(t, float64(1), decoded["warnings"])
	require.Equal(t, float64(7), decoded["documents"])
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "bookbuilder.builds", nil)
	require.Error(t, err)
}
