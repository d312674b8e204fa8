package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrUnknownDate         = errors.New("date is not in the loaded catalog")
	ErrUnknownTimeSlot     = errors.New("time slot is not in the catalog")
	ErrNoDateSelected      = errors.New("no date selected")
	ErrIncompleteSelection = errors.New("date and time slot must both be selected")
	ErrCatalogNotLoaded    = errors.New("date catalog not loaded")
)

// DateProvider supplies the selectable dates.
type DateProvider interface {
	ListAvailableDates(ctx context.Context) ([]DateOption, error)
}

// TimeSlotProvider supplies the selectable slots for a date.
type TimeSlotProvider interface {
	ListSlotsFor(ctx context.Context, date DateOption) ([]TimeSlotOption, error)
}

// GenerateDates lists the weekdays in the horizon calendar days following
// today. IDs are assigned 1.. in chronological order.
func GenerateDates(today time.Time, horizon int) []DateOption {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	var out []DateOption
	for i := 1; i <= horizon; i++ {
		day := start.AddDate(0, 0, i)
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		out = append(out, DateOption{
			ID:        len(out) + 1,
			Date:      day,
			Weekday:   day.Weekday(),
			DayNumber: day.Day(),
			Month:     day.Month().String(),
		})
	}
	return out
}

// WeekdayDateProvider generates a fresh catalog relative to the clock on
// every call.
type WeekdayDateProvider struct {
	clock   clockwork.Clock
	horizon int
}

func NewWeekdayDateProvider(clk clockwork.Clock, horizonDays int) *WeekdayDateProvider {
	return &WeekdayDateProvider{clock: clk, horizon: horizonDays}
}

func (p *WeekdayDateProvider) ListAvailableDates(ctx context.Context) ([]DateOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return GenerateDates(p.clock.Now(), p.horizon), nil
}

// LatentDateProvider delays another provider to mimic network latency.
type LatentDateProvider struct {
	next  DateProvider
	clock clockwork.Clock
	delay time.Duration
}

func NewLatentDateProvider(next DateProvider, clk clockwork.Clock, delay time.Duration) *LatentDateProvider {
	return &LatentDateProvider{next: next, clock: clk, delay: delay}
}

func (p *LatentDateProvider) ListAvailableDates(ctx context.Context) ([]DateOption, error) {
	if p.delay > 0 {
		timer := p.clock.NewTimer(p.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, ctx.Err())
		case <-timer.Chan():
		}
	}
	return p.next.ListAvailableDates(ctx)
}

// DefaultTimeSlots is the fixed daily schedule of group sessions.
func DefaultTimeSlots() []TimeSlotOption {
	return []TimeSlotOption{
		{ID: 1, Start: TimeOfDay{10, 0}, End: TimeOfDay{11, 30}},
		{ID: 2, Start: TimeOfDay{12, 0}, End: TimeOfDay{13, 30}},
		{ID: 3, Start: TimeOfDay{15, 0}, End: TimeOfDay{16, 30}},
	}
}

// StaticTimeSlotProvider returns the same catalog for every date.
type StaticTimeSlotProvider struct {
	slots []TimeSlotOption
}

func NewStaticTimeSlotProvider(slots []TimeSlotOption) (*StaticTimeSlotProvider, error) {
	seen := make(map[int]bool, len(slots))
	for i, s := range slots {
		if !s.Start.Before(s.End) {
			return nil, fmt.Errorf("slot %d: start %s is not before end %s", s.ID, s.Start, s.End)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("slot %d: duplicate id", s.ID)
		}
		seen[s.ID] = true
		for _, o := range slots[:i] {
			if s.overlaps(o) {
				return nil, fmt.Errorf("slot %d overlaps slot %d", s.ID, o.ID)
			}
		}
	}
	out := make([]TimeSlotOption, len(slots))
	copy(out, slots)
	return &StaticTimeSlotProvider{slots: out}, nil
}

func (p *StaticTimeSlotProvider) ListSlotsFor(ctx context.Context, _ DateOption) ([]TimeSlotOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	out := make([]TimeSlotOption, len(p.slots))
	copy(out, p.slots)
	return out, nil
}
