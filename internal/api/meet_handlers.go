package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/peer-support-platform/internal/video"
)

func listRoomsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := make([]RoomLink, 0, len(video.CommunityRooms))
		for _, name := range video.CommunityRooms {
			rooms = append(rooms, RoomLink{Name: name, Path: video.MeetPath(name)})
		}
		writeJSON(w, http.StatusOK, RoomsResponse{Rooms: rooms})
	}
}

// issueRoomHandler hands out a fresh private room outside the booking flow.
func issueRoomHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := cfg.Rooms.Issue(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		writeMeet(w, http.StatusCreated, cfg, res.RoomID)
	}
}

func meetHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMeet(w, http.StatusOK, cfg, chi.URLParam(r, "room"))
	}
}

func writeMeet(w http.ResponseWriter, status int, cfg RouterConfig, roomID string) {
	embed, err := video.NewEmbed(cfg.Video, roomID)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, status, MeetResponse{Embed: embed, HomePath: video.HomePath()})
}
