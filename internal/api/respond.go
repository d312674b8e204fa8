package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/peer-support-platform/internal/booking"
	"github.com/hackgods/peer-support-platform/internal/session"
	"github.com/hackgods/peer-support-platform/internal/simulator"
	"github.com/hackgods/peer-support-platform/internal/video"
)

const retryNotice = "something went wrong, please try again"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps domain errors to status codes and error codes.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, booking.ErrCatalogUnavailable):
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "the catalog could not be loaded, please retry")
	case errors.Is(err, booking.ErrCatalogNotLoaded):
		writeError(w, http.StatusConflict, "catalog_not_loaded", err.Error())
	case errors.Is(err, booking.ErrIncompleteSelection):
		writeError(w, http.StatusConflict, "incomplete_selection", err.Error())
	case errors.Is(err, booking.ErrNoDateSelected):
		writeError(w, http.StatusConflict, "no_date_selected", err.Error())
	case errors.Is(err, booking.ErrUnknownDate):
		writeError(w, http.StatusUnprocessableEntity, "unknown_date", err.Error())
	case errors.Is(err, booking.ErrUnknownTimeSlot):
		writeError(w, http.StatusUnprocessableEntity, "unknown_time_slot", err.Error())
	case errors.Is(err, booking.ErrRoomUnavailable):
		writeError(w, http.StatusServiceUnavailable, "room_unavailable", "no meeting room could be reserved, please retry")
	case errors.Is(err, video.ErrInvalidRoom):
		writeError(w, http.StatusUnprocessableEntity, "invalid_room", "this meeting link is not valid, please check it and try again")
	case errors.Is(err, simulator.ErrReplyInFlight):
		writeError(w, http.StatusConflict, "reply_in_flight", err.Error())
	case errors.Is(err, simulator.ErrEmptyMessage):
		writeError(w, http.StatusUnprocessableEntity, "empty_message", err.Error())
	case errors.Is(err, simulator.ErrChatClosed):
		writeError(w, http.StatusGone, "chat_closed", err.Error())
	case errors.Is(err, simulator.ErrInvalidInterval):
		writeError(w, http.StatusInternalServerError, "invalid_interval", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", retryNotice)
	}
}
