package video

import "net/url"

// ConfirmationPath is where the page shell goes after a booking is confirmed.
func ConfirmationPath(roomID string) string {
	return "/confirmation?" + url.Values{"room": {roomID}}.Encode()
}

// MeetPath addresses a room on the join page.
func MeetPath(roomID string) string {
	return "/meet/" + url.PathEscape(roomID)
}

// HomePath is where the page shell returns once the embed closes.
func HomePath() string {
	return "/"
}
