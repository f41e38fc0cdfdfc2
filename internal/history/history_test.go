package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

func finishedReport(t *testing.T, outcome report.Outcome) *report.BuildReport {
	t.Helper()
	r := report.New()
	if outcome == report.OutcomeFailed {
		r.AddIssue(report.IssueDuplicateChapter, report.SeverityError, "build_graph", "", "dup")
	}
	r.Finish()
	r.Outcome = outcome
	return r
}

func TestStore_RecordAndGetRoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	r := finishedReport(t, report.OutcomeSuccess)
	r.Documents = 12
	require.NoError(t, store.Record(context.Background(), r))

	got, err := store.Get(context.Background(), r.BuildID)
	require.NoError(t, err)
	require.Equal(t, r.BuildID, got.BuildID)
	require.Equal(t, 12, got.Documents)
	require.Equal(t, report.OutcomeSuccess, got.Outcome)
}

func TestStore_RecentNewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	old := finishedReport(t, report.OutcomeSuccess)
	old.Start = time.Now().Add(-time.Hour)
	recent := finishedReport(t, report.OutcomeFailed)

	require.NoError(t, store.Record(context.Background(), old))
	require.NoError(t, store.Record(context.Background(), recent))

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, recent.BuildID, entries[0].BuildID)
	require.Equal(t, report.OutcomeFailed, entries[0].Outcome)
	require.Equal(t, 1, entries[0].Errors)
	require.Equal(t, old.BuildID, entries[1].BuildID)
}

func TestStore_RecentRespectsLimit(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 5; i++ {
		r := finishedReport(t, report.OutcomeSuccess)
		r.Start = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Record(context.Background(), r))
	}

	entries, err := store.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestStore_GetUnknownBuild(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "nope")
	require.Error(t, err)
}

func TestStore_RecordTwiceReplaces(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	r := finishedReport(t, report.OutcomeSuccess)
	require.NoError(t, store.Record(context.Background(), r))
	r.Documents = 99
	require.NoError(t, store.Record(context.Background(), r))

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := store.Get(context.Background(), r.BuildID)
	require.NoError(t, err)
	require.Equal(t, 99, got.Documents)
}
