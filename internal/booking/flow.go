package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/hackgods/peer-support-platform/pkg/logging"
)

// Metrics receives booking outcomes. A nil Metrics is ignored.
type Metrics interface {
	BookingConfirmed()
	BookingFailed(reason string)
}

// Controller drives the date -> time slot -> confirm wizard for one view.
type Controller struct {
	mu sync.Mutex

	dates   DateProvider
	slots   TimeSlotProvider
	rooms   *RoomIssuer
	clock   clockwork.Clock
	log     *logging.Logger
	metrics Metrics

	catalog   []DateOption
	loaded    bool
	slotsFor  *DateOption
	slotCache []TimeSlotOption
	sel       Selection
}

func NewController(dates DateProvider, slots TimeSlotProvider, rooms *RoomIssuer, clk clockwork.Clock, logger *logging.Logger, metrics Metrics) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		dates:   dates,
		slots:   slots,
		rooms:   rooms,
		clock:   clk,
		log:     logger.With("component", "booking"),
		metrics: metrics,
		sel:     Empty{},
	}
}

// Load fetches the date catalog and clears any selection. It does not retry;
// on ErrCatalogUnavailable the caller may call Load again.
func (c *Controller) Load(ctx context.Context) ([]DateOption, error) {
	dates, err := c.dates.ListAvailableDates(ctx)
	if err != nil {
		c.fail("catalog_unavailable")
		c.log.Warn("date catalog load failed", "error", err)
		if errors.Is(err, ErrCatalogUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalog = dates
	c.loaded = true
	c.sel = Empty{}
	c.slotsFor = nil
	c.slotCache = nil

	c.log.Debug("date catalog loaded", "dates", len(dates))
	return copyDates(dates), nil
}

// Dates returns the loaded catalog.
func (c *Controller) Dates() ([]DateOption, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyDates(c.catalog), c.loaded
}

// State returns the current selection.
func (c *Controller) State() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// DateByID looks up a catalog entry.
func (c *Controller) DateByID(id int) (DateOption, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return DateOption{}, ErrCatalogNotLoaded
	}
	for _, d := range c.catalog {
		if d.ID == id {
			return d, nil
		}
	}
	return DateOption{}, ErrUnknownDate
}

// SelectDate chooses a date from the loaded catalog. Choosing a different
// date than the current one drops a chosen time slot.
func (c *Controller) SelectDate(option DateOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return ErrCatalogNotLoaded
	}
	if !containsDate(c.catalog, option) {
		return ErrUnknownDate
	}

	if current, ok := SelectedDate(c.sel); ok && current.Same(option) {
		return nil
	}
	c.sel = DateChosen{Date: option}
	c.slotsFor = nil
	c.slotCache = nil
	return nil
}

// TimeSlots lists the slots offered for the selected date.
func (c *Controller) TimeSlots(ctx context.Context) ([]TimeSlotOption, error) {
	c.mu.Lock()
	date, ok := SelectedDate(c.sel)
	if ok && c.slotsFor != nil && c.slotsFor.Same(date) {
		out := copySlots(c.slotCache)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	if !ok {
		return nil, ErrNoDateSelected
	}

	slots, err := c.slots.ListSlotsFor(ctx, date)
	if err != nil {
		c.fail("catalog_unavailable")
		c.log.Warn("time slot catalog load failed", "date", date.Label(), "error", err)
		if errors.Is(err, ErrCatalogUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The date may have changed while the provider ran.
	if current, ok := SelectedDate(c.sel); ok && current.Same(date) {
		d := date
		c.slotsFor = &d
		c.slotCache = slots
	}
	return copySlots(slots), nil
}

// SelectTimeSlot chooses a slot for the selected date. The slot must be one
// returned by TimeSlots for that date.
func (c *Controller) SelectTimeSlot(slot TimeSlotOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	date, ok := SelectedDate(c.sel)
	if !ok {
		return ErrNoDateSelected
	}
	if c.slotsFor == nil || !c.slotsFor.Same(date) || !containsSlot(c.slotCache, slot) {
		return ErrUnknownTimeSlot
	}
	c.sel = FullyChosen{Date: date, Slot: slot}
	return nil
}

// Reset returns the wizard to Empty.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = Empty{}
	c.slotsFor = nil
	c.slotCache = nil
}

// Confirm books the fully chosen selection and issues a room for it. On
// success the selection is discarded.
func (c *Controller) Confirm(ctx context.Context) (*Confirmation, error) {
	c.mu.Lock()
	chosen, ok := c.sel.(FullyChosen)
	c.mu.Unlock()
	if !ok {
		c.fail("incomplete_selection")
		return nil, ErrIncompleteSelection
	}

	res, err := c.rooms.Issue(ctx)
	if err != nil {
		c.fail("room_unavailable")
		return nil, fmt.Errorf("issue room: %w", err)
	}

	c.mu.Lock()
	if current, ok := c.sel.(FullyChosen); !ok || !current.Date.Same(chosen.Date) || current.Slot != chosen.Slot {
		// Selection moved while the room was being issued.
		c.mu.Unlock()
		c.fail("selection_changed")
		if err := c.rooms.Release(context.WithoutCancel(ctx), res); err != nil {
			c.log.Warn("could not release room", "room_id", res.RoomID, "error", err)
		}
		return nil, ErrIncompleteSelection
	}
	defer c.mu.Unlock()

	conf := &Confirmation{
		Token:       uuid.New(),
		RoomID:      res.RoomID,
		Date:        chosen.Date,
		Slot:        chosen.Slot,
		StartsAt:    chosen.Slot.Start.On(chosen.Date.Date),
		EndsAt:      chosen.Slot.End.On(chosen.Date.Date),
		ConfirmedAt: c.clock.Now(),
	}
	c.sel = Empty{}
	c.slotsFor = nil
	c.slotCache = nil

	if c.metrics != nil {
		c.metrics.BookingConfirmed()
	}
	c.log.Info("booking confirmed",
		"token", conf.Token.String(),
		"room_id", res.RoomID,
		"date", chosen.Date.Label(),
		"slot", chosen.Slot.Label(),
	)
	return conf, nil
}

func (c *Controller) fail(reason string) {
	if c.metrics != nil {
		c.metrics.BookingFailed(reason)
	}
}

func containsDate(catalog []DateOption, d DateOption) bool {
	for _, o := range catalog {
		if o.Same(d) {
			return true
		}
	}
	return false
}

func containsSlot(catalog []TimeSlotOption, s TimeSlotOption) bool {
	for _, o := range catalog {
		if o == s {
			return true
		}
	}
	return false
}

func copyDates(in []DateOption) []DateOption {
	if in == nil {
		return nil
	}
	out := make([]DateOption, len(in))
	copy(out, in)
	return out
}

func copySlots(in []TimeSlotOption) []TimeSlotOption {
	out := make([]TimeSlotOption, len(in))
	copy(out, in)
	return out
}
