package simulator

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hackgods/peer-support-platform/internal/random"
)

var ErrInvalidInterval = errors.New("interval must be positive")

// Recorder receives simulator activity. A nil Recorder is ignored.
type Recorder interface {
	SnapshotGenerated()
	ReplySent(category string)
}

// HourlyActivity is one hour of simulated traffic.
type HourlyActivity struct {
	Hour     int
	Sessions int
	Users    int
}

// Issue is one row of the top reported issues.
type Issue struct {
	Name       string
	Count      int
	Percentage int
}

// Share is one labelled bar of a demographic breakdown, in percent.
type Share struct {
	Label      string
	Percentage int
}

// Demographics breaks the user base down by age and gender. The shares are
// drawn independently and need not sum to 100.
type Demographics struct {
	AgeGroups []Share
	Gender    []Share
}

// Snapshot is one generated set of live metrics. Each tick replaces it
// wholesale.
type Snapshot struct {
	Sequence              uint64
	GeneratedAt           time.Time
	ActiveSessions        int
	PerHour               [24]HourlyActivity
	TotalUsers            int
	TotalSessions         int
	AverageSessionMinutes int
	SatisfactionRate      int
	MonthlyGrowth         int
	TopIssues             []Issue
	Demographics          Demographics
}

type bounds struct{ min, max int }

func (b bounds) draw(src random.Source) int { return src.Number(b.min, b.max) }

var (
	activeSessionsRange = bounds{5, 24}
	hourSessionsRange   = bounds{2, 11}
	hourUsersRange      = bounds{5, 24}
	totalUsersRange     = bounds{1247, 1296}
	totalSessionsRange  = bounds{89, 98}
	avgMinutesRange     = bounds{45, 74}
	satisfactionRange   = bounds{80, 99}
	growthRange         = bounds{8, 22}
)

var issueTable = []struct {
	name       string
	count      bounds
	percentage int
}{
	{"Anxiety", bounds{150, 249}, 35},
	{"Depression", bounds{120, 199}, 28},
	{"Stress", bounds{90, 149}, 22},
	{"Grief", bounds{60, 99}, 15},
}

type shareRange struct {
	label string
	pct   bounds
}

var (
	ageGroupTable = []shareRange{
		{"18-25", bounds{30, 49}},
		{"26-35", bounds{35, 59}},
		{"36-45", bounds{20, 34}},
		{"46+", bounds{15, 24}},
	}
	genderTable = []shareRange{
		{"Female", bounds{60, 79}},
		{"Male", bounds{25, 39}},
		{"Other", bounds{15, 19}},
	}
)

func drawShares(src random.Source, table []shareRange) []Share {
	out := make([]Share, 0, len(table))
	for _, r := range table {
		out = append(out, Share{Label: r.label, Percentage: r.pct.draw(src)})
	}
	return out
}

// GenerateSnapshot draws a fresh snapshot from src.
func GenerateSnapshot(src random.Source, now time.Time, seq uint64) Snapshot {
	s := Snapshot{
		Sequence:              seq,
		GeneratedAt:           now,
		ActiveSessions:        activeSessionsRange.draw(src),
		TotalUsers:            totalUsersRange.draw(src),
		TotalSessions:         totalSessionsRange.draw(src),
		AverageSessionMinutes: avgMinutesRange.draw(src),
		SatisfactionRate:      satisfactionRange.draw(src),
		MonthlyGrowth:         growthRange.draw(src),
		TopIssues:             make([]Issue, 0, len(issueTable)),
	}
	for h := range s.PerHour {
		s.PerHour[h] = HourlyActivity{
			Hour:     h,
			Sessions: hourSessionsRange.draw(src),
			Users:    hourUsersRange.draw(src),
		}
	}
	for _, it := range issueTable {
		s.TopIssues = append(s.TopIssues, Issue{
			Name:       it.name,
			Count:      it.count.draw(src),
			Percentage: it.percentage,
		})
	}
	s.Demographics = Demographics{
		AgeGroups: drawShares(src, ageGroupTable),
		Gender:    drawShares(src, genderTable),
	}
	return s
}

// Analytics keeps the live dashboard snapshot for one mounted view.
type Analytics struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	rand     random.Source
	recorder Recorder
	snapshot Snapshot
	seq      uint64
	handle   *Handle
}

// NewAnalytics returns a simulator holding an initial snapshot.
func NewAnalytics(clk clockwork.Clock, src random.Source, recorder Recorder) *Analytics {
	a := &Analytics{clock: clk, rand: src, recorder: recorder}
	a.regenerate(clk.Now())
	return a
}

// Start begins replacing the snapshot every interval. Calling Start while a
// task is running returns the running handle instead of starting another.
func (a *Analytics) Start(interval time.Duration) (*Handle, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handle.Active() {
		return a.handle, nil
	}
	a.handle = every(a.clock, interval, a.regenerate)
	return a.handle, nil
}

// Stop cancels h. No snapshot replacement happens after Stop returns.
func (a *Analytics) Stop(h *Handle) {
	a.mu.Lock()
	if a.handle == h {
		a.handle = nil
	}
	a.mu.Unlock()

	// Outside the lock: the task goroutine may be waiting on it.
	h.Dispose()
}

// Close stops whatever task is running.
func (a *Analytics) Close() {
	a.mu.Lock()
	h := a.handle
	a.mu.Unlock()
	a.Stop(h)
}

// Running reports whether a periodic task is active.
func (a *Analytics) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle.Active()
}

// Snapshot returns the current snapshot.
func (a *Analytics) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.snapshot
	s.TopIssues = append([]Issue(nil), s.TopIssues...)
	s.Demographics.AgeGroups = append([]Share(nil), s.Demographics.AgeGroups...)
	s.Demographics.Gender = append([]Share(nil), s.Demographics.Gender...)
	return s
}

func (a *Analytics) regenerate(now time.Time) {
	a.mu.Lock()
	a.seq++
	a.snapshot = GenerateSnapshot(a.rand, now, a.seq)
	a.mu.Unlock()

	if a.recorder != nil {
		a.recorder.SnapshotGenerated()
	}
}
