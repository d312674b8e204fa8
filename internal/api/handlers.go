package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/peer-support-platform/internal/booking"
	"github.com/hackgods/peer-support-platform/internal/video"
)

func bookingState(id uuid.UUID, c *booking.Controller) BookingStateResponse {
	dates, loaded := c.Dates()
	sel := c.State()

	resp := BookingStateResponse{
		SessionID: id,
		Phase:     sel.Phase(),
		Loaded:    loaded,
		Dates:     toDateResponses(dates),
	}
	if d, ok := booking.SelectedDate(sel); ok {
		dr := toDateResponse(d)
		resp.SelectedDate = &dr
	}
	if s, ok := booking.SelectedSlot(sel); ok {
		sr := toSlotResponse(s)
		resp.SelectedSlot = &sr
	}
	return resp
}

// createBookingHandler mounts a booking wizard and loads its catalog. When
// the catalog fails the session is kept so the client can retry the load.
func createBookingHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := cfg.NewBooking()
		id := cfg.Bookings.Create(c)

		if _, err := c.Load(r.Context()); err != nil {
			w.Header().Set("Location", "/booking/sessions/"+id.String())
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, bookingState(id, c))
	}
}

func getBookingHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, bookingState(id, c))
	}
}

func loadCatalogHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}
		if _, err := c.Load(r.Context()); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bookingState(id, c))
	}
}

func listSlotsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}
		slots, err := c.TimeSlots(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		date, ok := booking.SelectedDate(c.State())
		if !ok {
			// Reset raced the listing.
			handleError(w, booking.ErrNoDateSelected)
			return
		}

		resp := SlotsResponse{Date: toDateResponse(date), Slots: make([]SlotResponse, 0, len(slots))}
		for _, s := range slots {
			resp.Slots = append(resp.Slots, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func selectDateHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}
		var req SelectDateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := c.DateByID(req.DateID)
		if err == nil {
			err = c.SelectDate(date)
		}
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bookingState(id, c))
	}
}

func selectSlotHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}
		var req SelectSlotRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		slots, err := c.TimeSlots(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		// An id outside the catalog is passed through so the controller
		// rejects it.
		slot := booking.TimeSlotOption{ID: req.SlotID}
		for _, s := range slots {
			if s.ID == req.SlotID {
				slot = s
				break
			}
		}
		if err := c.SelectTimeSlot(slot); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bookingState(id, c))
	}
}

func resetBookingHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}
		c.Reset()
		writeJSON(w, http.StatusOK, bookingState(id, c))
	}
}

func confirmBookingHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, c, ok := lookupBooking(w, r, cfg)
		if !ok {
			return
		}

		conf, err := c.Confirm(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		embed, err := video.NewEmbed(cfg.Video, conf.RoomID)
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ConfirmationResponse{
			Token:       conf.Token,
			RoomID:      conf.RoomID,
			Date:        toDateResponse(conf.Date),
			Slot:        toSlotResponse(conf.Slot),
			StartsAt:    conf.StartsAt,
			EndsAt:      conf.EndsAt,
			ConfirmedAt: conf.ConfirmedAt,
			Path:        video.ConfirmationPath(conf.RoomID),
			Embed:       embed,
		})
	}
}

func lookupBooking(w http.ResponseWriter, r *http.Request, cfg RouterConfig) (uuid.UUID, *booking.Controller, bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	c, err := cfg.Bookings.Get(id)
	if err != nil {
		handleError(w, err)
		return uuid.Nil, nil, false
	}
	return id, c, true
}
