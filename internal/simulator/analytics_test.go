package simulator

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/peer-support-platform/internal/random"
)

var epoch = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

type countingRecorder struct {
	snapshots atomic.Int64
	replies   atomic.Int64
	last      atomic.Value
}

func (r *countingRecorder) SnapshotGenerated() { r.snapshots.Add(1) }
func (r *countingRecorder) ReplySent(category string) {
	r.replies.Add(1)
	r.last.Store(category)
}

func within(t *testing.T, v int, b bounds, field string) {
	t.Helper()
	assert.GreaterOrEqual(t, v, b.min, field)
	assert.LessOrEqual(t, v, b.max, field)
}

func TestGenerateSnapshotBounds(t *testing.T) {
	src := random.Seeded(17)
	for i := 0; i < 200; i++ {
		s := GenerateSnapshot(src, epoch, uint64(i))

		within(t, s.ActiveSessions, activeSessionsRange, "active sessions")
		within(t, s.TotalUsers, totalUsersRange, "total users")
		within(t, s.TotalSessions, totalSessionsRange, "total sessions")
		within(t, s.AverageSessionMinutes, avgMinutesRange, "average minutes")
		within(t, s.SatisfactionRate, satisfactionRange, "satisfaction")
		within(t, s.MonthlyGrowth, growthRange, "growth")

		for h, row := range s.PerHour {
			assert.Equal(t, h, row.Hour)
			within(t, row.Sessions, hourSessionsRange, "hour sessions")
			within(t, row.Users, hourUsersRange, "hour users")
		}

		require.Len(t, s.TopIssues, 4)
		total := 0
		for j, issue := range s.TopIssues {
			assert.Equal(t, issueTable[j].name, issue.Name)
			within(t, issue.Count, issueTable[j].count, issue.Name)
			total += issue.Percentage
		}
		assert.Equal(t, 100, total)
	}
}

func TestGenerateSnapshotDemographics(t *testing.T) {
	src := random.Seeded(23)
	for i := 0; i < 200; i++ {
		d := GenerateSnapshot(src, epoch, uint64(i)).Demographics

		require.Len(t, d.AgeGroups, 4)
		for j, share := range d.AgeGroups {
			assert.Equal(t, ageGroupTable[j].label, share.Label)
			within(t, share.Percentage, ageGroupTable[j].pct, share.Label)
		}
		require.Len(t, d.Gender, 3)
		for j, share := range d.Gender {
			assert.Equal(t, genderTable[j].label, share.Label)
			within(t, share.Percentage, genderTable[j].pct, share.Label)
		}
	}
	assert.Equal(t, bounds{30, 49}, ageGroupTable[0].pct)
	assert.Equal(t, bounds{15, 19}, genderTable[2].pct)
}

func TestAnalyticsHasInitialSnapshot(t *testing.T) {
	rec := &countingRecorder{}
	a := NewAnalytics(clockwork.NewFakeClockAt(epoch), random.Seeded(1), rec)

	s := a.Snapshot()
	assert.Equal(t, uint64(1), s.Sequence)
	assert.Equal(t, epoch, s.GeneratedAt)
	assert.False(t, a.Running())
	assert.EqualValues(t, 1, rec.snapshots.Load())
}

func TestAnalyticsReplacesSnapshotEachTick(t *testing.T) {
	clk := clockwork.NewFakeClockAt(epoch)
	a := NewAnalytics(clk, random.Seeded(1), nil)

	h, err := a.Start(30 * time.Second)
	require.NoError(t, err)
	defer a.Stop(h)

	for want := uint64(2); want <= 4; want++ {
		clk.Advance(30 * time.Second)
		require.Eventually(t, func() bool {
			return a.Snapshot().Sequence == want
		}, time.Second, time.Millisecond)
	}
	assert.Equal(t, epoch.Add(90*time.Second), a.Snapshot().GeneratedAt)
}

func TestAnalyticsDoubleStartKeepsOneTimer(t *testing.T) {
	clk := clockwork.NewFakeClockAt(epoch)
	a := NewAnalytics(clk, random.Seeded(1), nil)

	h1, err := a.Start(time.Second)
	require.NoError(t, err)
	h2, err := a.Start(time.Second)
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	waitForTimers(t, clk, 1)

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return a.Snapshot().Sequence == 2 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, uint64(2), a.Snapshot().Sequence)

	a.Stop(h1)
	waitForTimers(t, clk, 0)

	h3, err := a.Start(time.Second)
	require.NoError(t, err)
	assert.NotSame(t, h1, h3)
	a.Close()
	assert.False(t, a.Running())
}

func TestAnalyticsNoReplacementAfterStop(t *testing.T) {
	clk := clockwork.NewFakeClockAt(epoch)
	rec := &countingRecorder{}
	a := NewAnalytics(clk, random.Seeded(1), rec)

	h, err := a.Start(time.Second)
	require.NoError(t, err)

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return a.Snapshot().Sequence == 2 }, time.Second, time.Millisecond)

	a.Stop(h)
	a.Stop(h)
	before := a.Snapshot()

	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
	}
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, before.Sequence, a.Snapshot().Sequence)
	assert.EqualValues(t, 2, rec.snapshots.Load())
	assert.False(t, h.Active())
}

func TestAnalyticsRejectsBadInterval(t *testing.T) {
	a := NewAnalytics(clockwork.NewFakeClockAt(epoch), random.Seeded(1), nil)
	_, err := a.Start(0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestSnapshotCopyIsIndependent(t *testing.T) {
	a := NewAnalytics(clockwork.NewFakeClockAt(epoch), random.Seeded(1), nil)
	s := a.Snapshot()
	s.TopIssues[0].Count = -1
	s.Demographics.Gender[0].Percentage = -1
	assert.NotEqual(t, -1, a.Snapshot().TopIssues[0].Count)
	assert.NotEqual(t, -1, a.Snapshot().Demographics.Gender[0].Percentage)
}
