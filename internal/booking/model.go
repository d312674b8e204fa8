package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateOption is one selectable day in the date catalog.
type DateOption struct {
	ID        int
	Date      time.Time // midnight, in the catalog clock's location
	Weekday   time.Weekday
	DayNumber int
	Month     string
}

// Same reports whether o refers to the same catalog entry as d.
func (d DateOption) Same(o DateOption) bool {
	return d.ID == o.ID && d.Date.Equal(o.Date)
}

// Label renders the date the way the booking page lists it.
func (d DateOption) Label() string {
	return d.Date.Format("2006-01-02")
}

// TimeOfDay is a wall clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.minutes() < o.minutes()
}

func (t TimeOfDay) String() string {
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h, t.Minute, suffix)
}

// On returns the instant t falls at on the given day.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

type TimeSlotOption struct {
	ID    int
	Start TimeOfDay
	End   TimeOfDay
}

func (s TimeSlotOption) Label() string {
	return s.Start.String() + " - " + s.End.String()
}

func (s TimeSlotOption) overlaps(o TimeSlotOption) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

type Phase string

const (
	PhaseEmpty       Phase = "empty"
	PhaseDateChosen  Phase = "date_chosen"
	PhaseFullyChosen Phase = "fully_chosen"
)

// Selection is the wizard state. It is one of Empty, DateChosen or
// FullyChosen, so a time slot can never be held without a date.
type Selection interface {
	Phase() Phase
	selection()
}

type Empty struct{}

type DateChosen struct {
	Date DateOption
}

type FullyChosen struct {
	Date DateOption
	Slot TimeSlotOption
}

func (Empty) Phase() Phase       { return PhaseEmpty }
func (DateChosen) Phase() Phase  { return PhaseDateChosen }
func (FullyChosen) Phase() Phase { return PhaseFullyChosen }

func (Empty) selection()       {}
func (DateChosen) selection()  {}
func (FullyChosen) selection() {}

// SelectedDate returns the date held by sel, if any.
func SelectedDate(sel Selection) (DateOption, bool) {
	switch s := sel.(type) {
	case DateChosen:
		return s.Date, true
	case FullyChosen:
		return s.Date, true
	}
	return DateOption{}, false
}

// SelectedSlot returns the time slot held by sel, if any.
func SelectedSlot(sel Selection) (TimeSlotOption, bool) {
	if s, ok := sel.(FullyChosen); ok {
		return s.Slot, true
	}
	return TimeSlotOption{}, false
}

// Confirmation is handed to the video embed and navigation collaborators.
type Confirmation struct {
	Token       uuid.UUID
	RoomID      string
	Date        DateOption
	Slot        TimeSlotOption
	StartsAt    time.Time
	EndsAt      time.Time
	ConfirmedAt time.Time
}
